package media

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/metaneutrons/snapdog2-sub015/internal/model"
)

// subsonicStreamID is the single preconfigured snapserver pipe stream every
// Subsonic-sourced track plays through (spec §4.8 — SnapDog never creates
// streams at runtime, so all library audio is routed through one static
// upstream pipe regardless of which track is selected).
const subsonicStreamID = "subsonic"

// coverProxyFormat rewrites an upstream cover-art id into our own proxied
// URL so clients never see the Subsonic server's credentials (spec §4.8,
// §6: "/api/v1/cover/{id}").
const coverProxyFormat = "/api/v1/cover/%s"

// Resolver implements zone.MediaPort and router.MediaLister by combining the
// synthetic radio playlist (index 1) with the Subsonic server's playlists
// (index 2+), cached for cacheTTL to avoid a round trip on every lookup.
type Resolver struct {
	radio    *RadioResolver
	subsonic *SubsonicClient
	cacheTTL time.Duration

	mu         sync.Mutex
	playlists  []model.Playlist // index 0 unused; [1]=radio, [2..]=subsonic
	playlistAt time.Time
}

// NewResolver builds a combined resolver. subsonic may be nil when no
// Subsonic server is configured, leaving only the radio playlist available.
func NewResolver(radio *RadioResolver, subsonic *SubsonicClient) *Resolver {
	return &Resolver{radio: radio, subsonic: subsonic, cacheTTL: 30 * time.Second}
}

// PlaylistCount reports how many playlists currently exist (radio + every
// Subsonic playlist), for the router's Next/PreviousPlaylist wraparound.
func (r *Resolver) PlaylistCount(ctx context.Context) (int, error) {
	if err := r.refresh(ctx); err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.playlists) - 1, nil
}

// GetPlaylist resolves a 1-based playlist index to its full track list.
func (r *Resolver) GetPlaylist(ctx context.Context, playlistIndex int) (model.Playlist, error) {
	if playlistIndex == model.RadioPlaylistIndex {
		return r.radio.Playlist(ctx)
	}
	if err := r.refresh(ctx); err != nil {
		return model.Playlist{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if playlistIndex < 1 || playlistIndex >= len(r.playlists) {
		return model.Playlist{}, fmt.Errorf("playlist index %d out of range", playlistIndex)
	}
	return r.playlists[playlistIndex], nil
}

// GetTrack resolves a 1-based (playlistIndex, trackIndex) pair to a track.
func (r *Resolver) GetTrack(ctx context.Context, playlistIndex, trackIndex int) (model.Track, error) {
	if playlistIndex == model.RadioPlaylistIndex {
		return r.radio.Track(ctx, trackIndex)
	}
	pl, err := r.GetPlaylist(ctx, playlistIndex)
	if err != nil {
		return model.Track{}, err
	}
	if trackIndex < 1 || trackIndex > len(pl.Tracks) {
		return model.Track{}, fmt.Errorf("track index %d out of range [1..%d]", trackIndex, len(pl.Tracks))
	}
	return pl.Tracks[trackIndex-1], nil
}

// StreamIDForTrack maps a resolved track to its preconfigured Snapcast
// stream id.
func (r *Resolver) StreamIDForTrack(ctx context.Context, t model.Track) (string, error) {
	switch t.Source {
	case model.SourceRadio:
		return r.radio.StreamID(t), nil
	case model.SourceSubsonic:
		return subsonicStreamID, nil
	}
	return "", fmt.Errorf("unknown track source %q", t.Source)
}

// FetchCoverArt proxies a cover-art id to the Subsonic server, implementing
// httpapi.CoverArtFetcher. Returns an error if no Subsonic server is
// configured.
func (r *Resolver) FetchCoverArt(ctx context.Context, id string) ([]byte, string, error) {
	if r.subsonic == nil {
		return nil, "", fmt.Errorf("media: no subsonic server configured")
	}
	return r.subsonic.FetchCoverArt(ctx, id)
}

// refresh re-fetches the Subsonic playlist list if the cache is stale or
// empty. A nil subsonic client leaves the cache as radio-only.
func (r *Resolver) refresh(ctx context.Context) error {
	r.mu.Lock()
	fresh := time.Since(r.playlistAt) < r.cacheTTL && r.playlists != nil
	r.mu.Unlock()
	if fresh || r.subsonic == nil {
		r.ensureRadioSlot()
		return nil
	}

	summaries, err := r.subsonic.GetPlaylists(ctx)
	if err != nil {
		return fmt.Errorf("media: refresh playlists: %w", err)
	}

	playlists := make([]model.Playlist, len(summaries)+2)
	for i, s := range summaries {
		index := i + 2
		full, err := r.subsonic.GetPlaylist(ctx, s.ID)
		if err != nil {
			return fmt.Errorf("media: fetch playlist %s: %w", s.ID, err)
		}
		tracks := make([]model.Track, 0, len(full.Entry))
		for _, e := range full.Entry {
			ms := e.Duration * 1000
			tracks = append(tracks, model.Track{
				ID:        e.ID,
				Title:     e.Title,
				Artist:    e.Artist,
				Album:     e.Album,
				Duration:  &ms,
				StreamURL: r.subsonic.StreamURL(e.ID),
				CoverURL:  coverURL(e.CoverArt),
				Source:    model.SourceSubsonic,
			})
		}
		totalMs := s.Duration * 1000
		playlists[index] = model.Playlist{
			PlaylistIndex: index,
			Name:          s.Name,
			Source:        model.SourceSubsonic,
			Tracks:        tracks,
			TotalDuration: &totalMs,
			CoverURL:      coverURL(s.CoverArt),
		}
	}

	r.mu.Lock()
	r.playlists = playlists
	r.playlistAt = time.Now()
	r.mu.Unlock()
	r.ensureRadioSlot()
	return nil
}

// ensureRadioSlot keeps index 1 addressable even before the first Subsonic
// refresh (e.g. PlaylistCount called with no Subsonic server configured).
func (r *Resolver) ensureRadioSlot() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.playlists) == 0 {
		r.playlists = make([]model.Playlist, 2)
	}
}

func coverURL(coverArtID string) string {
	if coverArtID == "" {
		return ""
	}
	return fmt.Sprintf(coverProxyFormat, coverArtID)
}
