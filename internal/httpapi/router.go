package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/metaneutrons/snapdog2-sub015/internal/model"
)

// Handlers holds the dependencies every v1 endpoint reads from.
type Handlers struct {
	zones    ZoneReader
	clients  ClientReader
	media    MediaReader
	dispatch Dispatcher
	cover    CoverArtFetcher
}

// NewRouter assembles the full v1 HTTP surface (spec §6). When authEnabled
// is false the API-key middleware is not installed and every request passes
// through; apiKeys is only consulted when authEnabled is true.
func NewRouter(zones ZoneReader, clients ClientReader, media MediaReader, dispatch Dispatcher, cover CoverArtFetcher, authEnabled bool, apiKeys []string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.CleanPath)

	h := &Handlers{zones: zones, clients: clients, media: media, dispatch: dispatch, cover: cover}

	r.Get("/health", h.healthSummary)
	r.Get("/health/ready", h.healthReady)
	r.Get("/health/live", h.healthLive)

	r.Group(func(r chi.Router) {
		if authEnabled {
			r.Use(apiKeyAuth(apiKeys))
		}

		r.Route("/v1/zones", func(r chi.Router) {
			r.Get("/", h.listZones)
			r.Get("/{idx}", h.getZone)
			r.Get("/{idx}/track", h.getZoneField(func(z model.Zone) interface{} { return z.CurrentTrack }))
			r.Get("/{idx}/track/position", h.getZoneField(func(z model.Zone) interface{} { return z.PositionMs }))
			r.Get("/{idx}/track/progress", h.getZoneField(func(z model.Zone) interface{} { return z.PositionMs }))
			r.Get("/{idx}/volume", h.getZoneField(func(z model.Zone) interface{} { return z.Volume }))
			r.Get("/{idx}/mute", h.getZoneField(func(z model.Zone) interface{} { return z.Mute }))
			r.Get("/{idx}/playlist", h.getZoneField(func(z model.Zone) interface{} { return z.PlaylistIndex }))

			r.Post("/{idx}/play", h.zoneControl(model.ActionPlay))
			r.Post("/{idx}/pause", h.zoneControl(model.ActionPause))
			r.Post("/{idx}/stop", h.zoneControl(model.ActionStop))
			r.Post("/{idx}/next", h.zoneControl(model.ActionNext))
			r.Post("/{idx}/previous", h.zoneControl(model.ActionPrev))

			r.Put("/{idx}/volume", h.setZoneVolume)
			r.Put("/{idx}/playlist", h.setZonePlaylist)
			r.Put("/{idx}/track", h.setZoneTrack)

			r.Post("/{idx}/play/playlist/{pl}/track", h.playTrackFromPlaylist)
		})

		r.Route("/v1/clients", func(r chi.Router) {
			r.Get("/", h.listClients)
			r.Get("/{idx}", h.getClient)
			r.Get("/{idx}/volume", h.getClientField(func(c model.Client) interface{} { return c.Volume }))
			r.Get("/{idx}/mute", h.getClientField(func(c model.Client) interface{} { return c.Mute }))

			r.Put("/{idx}/volume", h.setClientVolume)
			r.Put("/{idx}/latency", h.setClientLatency)
			r.Put("/{idx}/zone", h.setClientZone)

			r.Post("/{idx}/mute/toggle", h.toggleClientMute)
		})

		r.Route("/v1/media/playlists", func(r chi.Router) {
			r.Get("/", h.listPlaylists)
			r.Get("/{idx}", h.getPlaylist)
			r.Get("/{idx}/tracks", h.getPlaylistTracks)
		})

		r.Get("/api/v1/cover/{id}", h.getCoverArt)
	})

	return r
}
