// Package zone implements the per-zone playback state machine of spec
// §4.2: Stopped/Playing/Paused/Buffering, the playlist cursor, the
// wall-clock position timer, and the shuffle permutation.
//
// Grounded on the teacher's internal/controller (the Controller.apply
// mutate-then-publish shape, generalized away in favor of store.ZoneStore)
// and internal/streams (the per-stream background-goroutine + callback
// shape of internetradio.go's pollVLCMetadata, generalized into the
// position ticker).
package zone

import (
	"context"

	"github.com/metaneutrons/snapdog2-sub015/internal/model"
)

// SnapcastPort is the subset of Snapcast control operations a zone's
// playback state machine needs. Implemented by internal/snapcast.Adapter.
type SnapcastPort interface {
	SelectStream(ctx context.Context, groupID, streamID string) error
	SetGroupMute(ctx context.Context, groupID string, mute bool) error
	SetZoneVolume(ctx context.Context, memberClientIDs []string, volume int) error
}

// MediaPort resolves playlists and tracks to playable stream URLs and maps
// those URLs to a preconfigured Snapcast stream id (spec §4.8: "SnapDog
// does not create streams at runtime — it only selects among preconfigured
// ones").
type MediaPort interface {
	GetPlaylist(ctx context.Context, playlistIndex int) (model.Playlist, error)
	GetTrack(ctx context.Context, playlistIndex, trackIndex int) (model.Track, error)
	StreamIDForTrack(ctx context.Context, t model.Track) (string, error)
}

// ErrorReporter records a component error to GlobalState.LastError and
// emits a SYSTEM_ERROR fan-out event (spec §7). Implemented by whatever
// owns the GlobalStore at wiring time.
type ErrorReporter interface {
	ReportError(component string, err *model.AppError)
}
