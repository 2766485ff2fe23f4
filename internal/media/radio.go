// Package media implements the media resolver of spec §4.8: playlist 1 is
// the synthetic radio station list built from RADIO_N_* configuration,
// playlists 2+ are fetched from a Subsonic-compatible server. SnapDog never
// creates a Snapcast stream at runtime — it only selects among the ones
// already declared in snapserver.conf, so a resolved track's stream id is a
// static, source-derived name rather than anything computed per track.
package media

import (
	"context"
	"fmt"

	"github.com/metaneutrons/snapdog2-sub015/internal/config"
	"github.com/metaneutrons/snapdog2-sub015/internal/model"
)

// radioStreamIDPrefix namespaces the preconfigured Snapcast stream id for
// each radio station, one snapserver pipe per station.
const radioStreamIDPrefix = "radio-"

// RadioResolver exposes the configured radio stations as playlist 1.
type RadioResolver struct {
	stations []config.RadioConfig
}

// NewRadioResolver builds a resolver over the enabled radio stations, in
// configured order.
func NewRadioResolver(stations []config.RadioConfig) *RadioResolver {
	enabled := make([]config.RadioConfig, 0, len(stations))
	for _, s := range stations {
		if s.Enabled {
			enabled = append(enabled, s)
		}
	}
	return &RadioResolver{stations: enabled}
}

// Playlist returns the synthetic radio playlist (spec: "Playlist 1 is
// always the radio station list; it has no total duration").
func (r *RadioResolver) Playlist(ctx context.Context) (model.Playlist, error) {
	tracks := make([]model.Track, 0, len(r.stations))
	for _, s := range r.stations {
		tracks = append(tracks, r.track(s))
	}
	return model.Playlist{
		PlaylistIndex: model.RadioPlaylistIndex,
		Name:          "Radio",
		Source:        model.SourceRadio,
		Tracks:        tracks,
	}, nil
}

// Track resolves one 1-based radio station index to its track.
func (r *RadioResolver) Track(ctx context.Context, trackIndex int) (model.Track, error) {
	if trackIndex < 1 || trackIndex > len(r.stations) {
		return model.Track{}, fmt.Errorf("radio station index %d out of range [1..%d]", trackIndex, len(r.stations))
	}
	return r.track(r.stations[trackIndex-1]), nil
}

func (r *RadioResolver) track(s config.RadioConfig) model.Track {
	return model.Track{
		ID:        fmt.Sprintf("radio-%d", s.Index),
		Title:     s.Name,
		Artist:    s.Description,
		StreamURL: s.URL,
		Source:    model.SourceRadio,
		// Duration left nil: a live stream has no known length (spec §4.2:
		// "SeekPosition is rejected on a track with no duration").
	}
}

// StreamID returns the preconfigured Snapcast stream id for a radio track.
func (r *RadioResolver) StreamID(t model.Track) string {
	return radioStreamIDPrefix + t.ID[len("radio-"):]
}
