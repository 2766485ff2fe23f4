package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/metaneutrons/snapdog2-sub015/internal/model"
)

func (h *Handlers) listZones(w http.ResponseWriter, r *http.Request) {
	writeData(w, http.StatusOK, h.zones.GetAll())
}

func (h *Handlers) getZone(w http.ResponseWriter, r *http.Request) {
	idx, err := intParam(r, "idx")
	if err != nil {
		writeAppError(w, err)
		return
	}
	z, ok := h.zones.Get(idx)
	if !ok {
		writeAppError(w, model.NotFound("zone not found"))
		return
	}
	writeData(w, http.StatusOK, z)
}

func (h *Handlers) getZoneField(field func(model.Zone) interface{}) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		idx, err := intParam(r, "idx")
		if err != nil {
			writeAppError(w, err)
			return
		}
		z, ok := h.zones.Get(idx)
		if !ok {
			writeAppError(w, model.NotFound("zone not found"))
			return
		}
		writeData(w, http.StatusOK, field(z))
	}
}

func (h *Handlers) zoneControl(action model.ControlAction) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		idx, err := intParam(r, "idx")
		if err != nil {
			writeAppError(w, err)
			return
		}
		h.dispatchZone(w, r, model.Command{Kind: model.CmdControl, ZoneIndex: idx, Control: action})
	}
}

func (h *Handlers) setZoneVolume(w http.ResponseWriter, r *http.Request) {
	idx, err := intParam(r, "idx")
	if err != nil {
		writeAppError(w, err)
		return
	}
	var volume int
	if jerr := json.NewDecoder(r.Body).Decode(&volume); jerr != nil {
		writeAppError(w, model.Validation("invalid JSON body: "+jerr.Error()))
		return
	}
	h.dispatchZone(w, r, model.Command{Kind: model.CmdSetZoneVolume, ZoneIndex: idx, Volume: volume})
}

func (h *Handlers) setZonePlaylist(w http.ResponseWriter, r *http.Request) {
	idx, err := intParam(r, "idx")
	if err != nil {
		writeAppError(w, err)
		return
	}
	var playlistIndex int
	if jerr := json.NewDecoder(r.Body).Decode(&playlistIndex); jerr != nil {
		writeAppError(w, model.Validation("invalid JSON body: "+jerr.Error()))
		return
	}
	h.dispatchZone(w, r, model.Command{Kind: model.CmdSetPlaylist, ZoneIndex: idx, Index: playlistIndex})
}

func (h *Handlers) setZoneTrack(w http.ResponseWriter, r *http.Request) {
	idx, err := intParam(r, "idx")
	if err != nil {
		writeAppError(w, err)
		return
	}
	var trackIndex int
	if jerr := json.NewDecoder(r.Body).Decode(&trackIndex); jerr != nil {
		writeAppError(w, model.Validation("invalid JSON body: "+jerr.Error()))
		return
	}
	h.dispatchZone(w, r, model.Command{Kind: model.CmdSetTrack, ZoneIndex: idx, Index: trackIndex})
}

func (h *Handlers) playTrackFromPlaylist(w http.ResponseWriter, r *http.Request) {
	idx, err := intParam(r, "idx")
	if err != nil {
		writeAppError(w, err)
		return
	}
	pl, err := intParam(r, "pl")
	if err != nil {
		writeAppError(w, err)
		return
	}
	var trackIndex int
	if jerr := json.NewDecoder(r.Body).Decode(&trackIndex); jerr != nil {
		writeAppError(w, model.Validation("invalid JSON body: "+jerr.Error()))
		return
	}
	h.dispatchZone(w, r, model.Command{
		Kind: model.CmdPlayTrackFromPlaylist, ZoneIndex: idx,
		PlayPlaylistIndex: pl, PlayTrackIndex: trackIndex,
	})
}

func (h *Handlers) dispatchZone(w http.ResponseWriter, r *http.Request, cmd model.Command) {
	cmd.Source = model.SourceAPI
	if aerr := h.dispatch.Dispatch(r.Context(), cmd); aerr != nil {
		writeAppError(w, aerr)
		return
	}
	z, _ := h.zones.Get(cmd.ZoneIndex)
	writeData(w, http.StatusOK, z)
}

func intParam(r *http.Request, name string) (int, *model.AppError) {
	s := chi.URLParam(r, name)
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, model.Validation("invalid " + name + " parameter: " + s)
	}
	return n, nil
}
