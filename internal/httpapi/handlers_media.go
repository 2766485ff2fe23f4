package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/metaneutrons/snapdog2-sub015/internal/model"
)

func (h *Handlers) listPlaylists(w http.ResponseWriter, r *http.Request) {
	count, err := h.media.PlaylistCount(r.Context())
	if err != nil {
		writeAppError(w, model.UpstreamUnavailable(err.Error()))
		return
	}
	playlists := make([]model.Playlist, 0, count)
	for i := 1; i <= count; i++ {
		pl, err := h.media.GetPlaylist(r.Context(), i)
		if err != nil {
			writeAppError(w, model.UpstreamUnavailable(err.Error()))
			return
		}
		playlists = append(playlists, pl)
	}
	writeData(w, http.StatusOK, playlists)
}

func (h *Handlers) getPlaylist(w http.ResponseWriter, r *http.Request) {
	idx, aerr := intParam(r, "idx")
	if aerr != nil {
		writeAppError(w, aerr)
		return
	}
	pl, err := h.media.GetPlaylist(r.Context(), idx)
	if err != nil {
		writeAppError(w, model.NotFound(err.Error()))
		return
	}
	writeData(w, http.StatusOK, pl)
}

func (h *Handlers) getPlaylistTracks(w http.ResponseWriter, r *http.Request) {
	idx, aerr := intParam(r, "idx")
	if aerr != nil {
		writeAppError(w, aerr)
		return
	}
	pl, err := h.media.GetPlaylist(r.Context(), idx)
	if err != nil {
		writeAppError(w, model.NotFound(err.Error()))
		return
	}
	writeData(w, http.StatusOK, pl.Tracks)
}

func (h *Handlers) getCoverArt(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if h.cover == nil {
		writeAppError(w, model.NotFound("cover art not available"))
		return
	}
	data, contentType, err := h.cover.FetchCoverArt(r.Context(), id)
	if err != nil {
		writeAppError(w, model.UpstreamUnavailable(err.Error()))
		return
	}
	if contentType != "" {
		w.Header().Set("Content-Type", contentType)
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
