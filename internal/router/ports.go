// Package router implements the uniform command dispatch of spec §4.4: one
// normalized Command type regardless of origin (HTTP/MQTT/KNX), validated
// before any state mutation, dispatched to exactly one handler per
// CommandKind.
//
// Grounded on the teacher's internal/controller.Controller, whose exported
// Set* methods are themselves a flat, one-method-per-operation command
// surface over a single state mutex; here that surface is reified as data
// (model.Command) so every adapter can share one dispatch path.
package router

import (
	"context"

	"github.com/metaneutrons/snapdog2-sub015/internal/model"
)

// ZonePlayer is the subset of zone.Manager the router drives. Declared
// locally (rather than importing internal/zone) to keep the dependency
// direction adapter → router → zone, not router ↔ zone.
type ZonePlayer interface {
	Play(ctx context.Context, url string, hasTarget bool, playlistIndex, trackIndex int) *model.AppError
	Pause(ctx context.Context) *model.AppError
	Stop(ctx context.Context) *model.AppError
	NextTrack(ctx context.Context) *model.AppError
	PreviousTrack(ctx context.Context) *model.AppError
	SetTrack(ctx context.Context, trackIndex int) *model.AppError
	PlayTrackFromPlaylist(ctx context.Context, playlistIndex, trackIndex int) *model.AppError
	SetTrackRepeat(bool) *model.AppError
	ToggleTrackRepeat() *model.AppError
	SeekPosition(ctx context.Context, ms int64) *model.AppError
	SetPlaylist(ctx context.Context, playlistIndex int) *model.AppError
	NextPlaylist(ctx context.Context, playlistCount int) *model.AppError
	PreviousPlaylist(ctx context.Context, playlistCount int) *model.AppError
	SetPlaylistRepeat(bool) *model.AppError
	TogglePlaylistRepeat() *model.AppError
	SetPlaylistShuffle(bool) *model.AppError
	TogglePlaylistShuffle() *model.AppError
	SetVolume(ctx context.Context, volume int) *model.AppError
	VolumeUp(ctx context.Context, step int) *model.AppError
	VolumeDown(ctx context.Context, step int) *model.AppError
	SetMute(ctx context.Context, mute bool) *model.AppError
	ToggleMute(ctx context.Context) *model.AppError
}

// ClientPort is the Snapcast client-scoped RPC surface the router needs for
// client commands (distinct from zone-wide operations).
type ClientPort interface {
	SetClientVolume(ctx context.Context, snapcastClientID string, volume int, muted bool) error
	SetClientLatency(ctx context.Context, snapcastClientID string, latencyMs int) error
	SetClientName(ctx context.Context, snapcastClientID, name string) error
}

// MediaLister resolves how many playlists exist, for NextPlaylist/
// PreviousPlaylist wraparound.
type MediaLister interface {
	PlaylistCount(ctx context.Context) (int, error)
}
