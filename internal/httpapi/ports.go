package httpapi

import (
	"context"

	"github.com/metaneutrons/snapdog2-sub015/internal/model"
)

// Dispatcher is the router surface every control endpoint submits commands
// to.
type Dispatcher interface {
	Dispatch(ctx context.Context, cmd model.Command) *model.AppError
}

// ZoneReader exposes read-only zone snapshots.
type ZoneReader interface {
	Get(zoneIndex int) (model.Zone, bool)
	GetAll() []model.Zone
}

// ClientReader exposes read-only client snapshots.
type ClientReader interface {
	Get(clientIndex int) (model.Client, bool)
	GetAll() []model.Client
}

// MediaReader exposes playlist/track listings.
type MediaReader interface {
	GetPlaylist(ctx context.Context, playlistIndex int) (model.Playlist, error)
	GetTrack(ctx context.Context, playlistIndex, trackIndex int) (model.Track, error)
	PlaylistCount(ctx context.Context) (int, error)
}

// CoverArtFetcher proxies a cover-art id to the upstream media server
// without exposing its credentials to the caller (spec §4.8, §6).
type CoverArtFetcher interface {
	FetchCoverArt(ctx context.Context, id string) (data []byte, contentType string, err error)
}
