package zone

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/metaneutrons/snapdog2-sub015/internal/clock"
	"github.com/metaneutrons/snapdog2-sub015/internal/model"
	"github.com/metaneutrons/snapdog2-sub015/internal/store"
)

// Manager is the single writer for one zone's playback state. Spec §5
// models each zone's playback loop as "a logically independent task"; here
// that task is realized as mutual exclusion around the handler body (decide
// + outbound Snapcast RPC + store commit), which is allowed to suspend
// across I/O, unlike the store's own short, non-suspending entity lock.
type Manager struct {
	zoneIndex int

	zones   *store.ZoneStore
	clients *store.ClientStore
	snap    SnapcastPort
	media   MediaPort
	errs    ErrorReporter
	clk     clock.Clock

	mu       sync.Mutex
	pos      *positionTimer
	shuffle  *shufflePermutation
	rng      *rand.Rand
	duration *int64 // current track's known duration, nil for radio/live
}

// NewManager constructs the playback state machine for one zone.
func NewManager(zoneIndex int, zones *store.ZoneStore, clients *store.ClientStore, snap SnapcastPort, media MediaPort, errs ErrorReporter, clk clock.Clock) *Manager {
	return &Manager{
		zoneIndex: zoneIndex,
		zones:     zones,
		clients:   clients,
		snap:      snap,
		media:     media,
		errs:      errs,
		clk:       clk,
		pos:       newPositionTimer(clk),
		rng:       rand.New(rand.NewSource(int64(zoneIndex) + 1)),
	}
}

func (m *Manager) zone() (model.Zone, *model.AppError) {
	z, ok := m.zones.Get(m.zoneIndex)
	if !ok {
		return model.Zone{}, model.NotFound("zone not found")
	}
	return z, nil
}

func (m *Manager) memberSnapcastIDs() []string {
	var ids []string
	for _, cl := range m.clients.GetAll() {
		if cl.ZoneIndex == m.zoneIndex && cl.SnapcastClientID != "" {
			ids = append(ids, cl.SnapcastClientID)
		}
	}
	return ids
}

func (m *Manager) reportf(kind model.ErrorKind, format string, args ...interface{}) *model.AppError {
	err := model.NewErrorf(kind, format, args...)
	if m.errs != nil {
		m.errs.ReportError("zone", err)
	}
	return err
}

// --- Playback transitions (spec §4.2) ---------------------------------

// Play starts playback. If hasTarget is set, (playlistIndex, trackIndex) is
// the target; otherwise Play resumes/continues current playback from the
// current cursor. url is not played: a non-empty url only bypasses the
// already-playing and resume-from-pause shortcuts, so the track at the
// current cursor is (re)started.
func (m *Manager) Play(ctx context.Context, url string, hasTarget bool, playlistIndex, trackIndex int) *model.AppError {
	m.mu.Lock()
	defer m.mu.Unlock()

	z, aerr := m.zone()
	if aerr != nil {
		return aerr
	}

	if z.State == model.Playing && !hasTarget && url == "" {
		return nil // already playing — no-op
	}

	if z.State == model.Paused && !hasTarget && url == "" {
		// Only undo the mute Pause itself applied. A zone the user muted
		// before pausing must stay muted across the resume (spec §4.2).
		if !z.Mute {
			if err := m.snap.SetGroupMute(ctx, z.SnapcastGroupID, false); err != nil {
				return m.reportf(model.ErrUpstreamTimeout, "zone %d: unmute on play: %v", m.zoneIndex, err)
			}
		}
		m.pos.Start(m.pos.Position())
		_, _, mErr := m.zones.Mutate(m.zoneIndex, func(z *model.Zone) error {
			z.State = model.Playing
			return nil
		})
		return toAppError(mErr)
	}

	// Stopped (or redirected target while playing/paused): select track.
	plIdx, trIdx := z.PlaylistIndex, z.TrackIndex
	if hasTarget {
		plIdx, trIdx = playlistIndex, trackIndex
	} else if plIdx == 0 {
		plIdx, trIdx = model.RadioPlaylistIndex, 1
	} else if trIdx == 0 {
		trIdx = 1
	}

	return m.startTrack(ctx, z, plIdx, trIdx)
}

// startTrack resolves (playlistIndex, trackIndex), transitions through
// Buffering, assigns the Snapcast stream, and marks Playing.
func (m *Manager) startTrack(ctx context.Context, z model.Zone, playlistIndex, trackIndex int) *model.AppError {
	if _, _, err := m.zones.Mutate(m.zoneIndex, func(z *model.Zone) error {
		z.State = model.Buffering
		z.PlaylistIndex = playlistIndex
		z.TrackIndex = trackIndex
		z.PositionMs = 0
		return nil
	}); err != nil {
		return toAppError(err)
	}

	track, err := m.media.GetTrack(ctx, playlistIndex, trackIndex)
	if err != nil {
		m.zones.Mutate(m.zoneIndex, func(z *model.Zone) error { z.State = model.Stopped; return nil })
		return m.reportf(model.ErrUpstreamUnavailable, "zone %d: resolve track: %v", m.zoneIndex, err)
	}

	streamID, err := m.media.StreamIDForTrack(ctx, track)
	if err != nil {
		m.zones.Mutate(m.zoneIndex, func(z *model.Zone) error { z.State = model.Stopped; return nil })
		return m.reportf(model.ErrUpstreamUnavailable, "zone %d: resolve stream id: %v", m.zoneIndex, err)
	}

	if err := m.snap.SelectStream(ctx, z.SnapcastGroupID, streamID); err != nil {
		m.zones.Mutate(m.zoneIndex, func(z *model.Zone) error { z.State = model.Stopped; return nil })
		return m.reportf(model.ErrUpstreamTimeout, "zone %d: select stream: %v", m.zoneIndex, err)
	}

	m.duration = track.Duration
	m.pos.Start(0)

	pl, _ := m.media.GetPlaylist(ctx, playlistIndex)
	if z.Shuffle && len(pl.Tracks) > 0 {
		m.shuffle = newShufflePermutation(len(pl.Tracks), m.rng)
		m.shuffle.SetCurrent(trackIndex)
	}

	_, _, mErr := m.zones.Mutate(m.zoneIndex, func(z *model.Zone) error {
		z.State = model.Playing
		z.StreamID = streamID
		z.CurrentTrack = track
		return nil
	})
	return toAppError(mErr)
}

// Pause is only valid from Playing/Buffering (spec §4.2).
func (m *Manager) Pause(ctx context.Context) *model.AppError {
	m.mu.Lock()
	defer m.mu.Unlock()

	z, aerr := m.zone()
	if aerr != nil {
		return aerr
	}
	if z.State != model.Playing && z.State != model.Buffering {
		return model.InvalidOperation("pause is only valid while playing or buffering")
	}

	// A zone the user already muted is already silent at the Snapcast
	// group; only mute here if Pause itself is the one causing it, so
	// Play's resume can tell whether it's safe to undo.
	if !z.Mute {
		if err := m.snap.SetGroupMute(ctx, z.SnapcastGroupID, true); err != nil {
			return m.reportf(model.ErrUpstreamTimeout, "zone %d: mute on pause: %v", m.zoneIndex, err)
		}
	}
	m.pos.Freeze()

	_, _, mErr := m.zones.Mutate(m.zoneIndex, func(z *model.Zone) error {
		z.State = model.Paused
		return nil
	})
	return toAppError(mErr)
}

// Stop is valid from any non-Stopped state (spec §4.2).
func (m *Manager) Stop(ctx context.Context) *model.AppError {
	m.mu.Lock()
	defer m.mu.Unlock()

	z, aerr := m.zone()
	if aerr != nil {
		return aerr
	}
	if z.State == model.Stopped {
		return nil
	}

	if err := m.snap.SetGroupMute(ctx, z.SnapcastGroupID, false); err != nil {
		m.reportf(model.ErrUpstreamTimeout, "zone %d: unmute on stop: %v", m.zoneIndex, err)
	}
	m.pos.Reset()
	m.duration = nil

	_, _, mErr := m.zones.Mutate(m.zoneIndex, func(z *model.Zone) error {
		z.State = model.Stopped
		z.PositionMs = 0
		return nil
	})
	return toAppError(mErr)
}

// NextTrack / PreviousTrack advance or retreat the playlist cursor.
func (m *Manager) NextTrack(ctx context.Context) *model.AppError { return m.advance(ctx, true) }
func (m *Manager) PreviousTrack(ctx context.Context) *model.AppError { return m.advance(ctx, false) }

func (m *Manager) advance(ctx context.Context, forward bool) *model.AppError {
	m.mu.Lock()
	defer m.mu.Unlock()
	z, aerr := m.zone()
	if aerr != nil {
		return aerr
	}
	return m.advanceLocked(ctx, z, forward)
}

// advanceLocked must be called with m.mu held.
func (m *Manager) advanceLocked(ctx context.Context, z model.Zone, forward bool) *model.AppError {
	pl, err := m.media.GetPlaylist(ctx, z.PlaylistIndex)
	if err != nil {
		return m.reportf(model.ErrUpstreamUnavailable, "zone %d: load playlist: %v", m.zoneIndex, err)
	}
	n := len(pl.Tracks)
	if n == 0 {
		return m.stopLocked(ctx)
	}

	var next int
	var wrapped bool
	if z.Shuffle {
		if m.shuffle == nil {
			m.shuffle = newShufflePermutation(n, m.rng)
			m.shuffle.SetCurrent(z.TrackIndex)
		}
		if forward {
			next, wrapped = m.shuffle.Next(m.rng)
		} else {
			next, wrapped = m.shuffle.Previous()
		}
	} else if forward {
		next = z.TrackIndex + 1
		wrapped = next > n
		if wrapped {
			next = 1
		}
	} else {
		next = z.TrackIndex - 1
		wrapped = next < 1
		if wrapped {
			next = n
		}
	}

	if wrapped && !z.PlaylistRepeat && forward {
		return m.stopLocked(ctx)
	}

	wasPlaying := z.State == model.Playing || z.State == model.Buffering
	if !wasPlaying {
		_, _, mErr := m.zones.Mutate(m.zoneIndex, func(z *model.Zone) error {
			z.TrackIndex = next
			z.PositionMs = 0
			return nil
		})
		return toAppError(mErr)
	}
	return m.startTrack(ctx, z, z.PlaylistIndex, next)
}

func (m *Manager) stopLocked(ctx context.Context) *model.AppError {
	z, aerr := m.zone()
	if aerr != nil {
		return aerr
	}
	if z.State == model.Stopped {
		return nil
	}
	if err := m.snap.SetGroupMute(ctx, z.SnapcastGroupID, false); err != nil {
		m.reportf(model.ErrUpstreamTimeout, "zone %d: unmute on stop: %v", m.zoneIndex, err)
	}
	m.pos.Reset()
	m.duration = nil
	_, _, mErr := m.zones.Mutate(m.zoneIndex, func(z *model.Zone) error {
		z.State = model.Stopped
		z.PositionMs = 0
		return nil
	})
	return toAppError(mErr)
}

// SetTrack jumps directly to a 1-based track index in the current playlist.
func (m *Manager) SetTrack(ctx context.Context, trackIndex int) *model.AppError {
	m.mu.Lock()
	defer m.mu.Unlock()
	z, aerr := m.zone()
	if aerr != nil {
		return aerr
	}
	pl, err := m.media.GetPlaylist(ctx, z.PlaylistIndex)
	if err != nil {
		return m.reportf(model.ErrUpstreamUnavailable, "zone %d: load playlist: %v", m.zoneIndex, err)
	}
	if trackIndex < 1 || trackIndex > len(pl.Tracks) {
		return model.NotFound("track index out of range")
	}
	if z.State == model.Playing || z.State == model.Buffering {
		return m.startTrack(ctx, z, z.PlaylistIndex, trackIndex)
	}
	_, _, mErr := m.zones.Mutate(m.zoneIndex, func(z *model.Zone) error {
		z.TrackIndex = trackIndex
		z.PositionMs = 0
		return nil
	})
	return toAppError(mErr)
}

// PlayTrackFromPlaylist sets the cursor to (playlistIndex, trackIndex) and
// starts streaming immediately.
func (m *Manager) PlayTrackFromPlaylist(ctx context.Context, playlistIndex, trackIndex int) *model.AppError {
	m.mu.Lock()
	defer m.mu.Unlock()
	z, aerr := m.zone()
	if aerr != nil {
		return aerr
	}
	return m.startTrack(ctx, z, playlistIndex, trackIndex)
}

// SetPlaylist stops current playback and sets the cursor to (playlist, 1,
// 0) without auto-playing (spec §4.2).
func (m *Manager) SetPlaylist(ctx context.Context, playlistIndex int) *model.AppError {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, err := m.media.GetPlaylist(ctx, playlistIndex); err != nil {
		return m.reportf(model.ErrUpstreamUnavailable, "zone %d: load playlist %d: %v", m.zoneIndex, playlistIndex, err)
	}
	z, aerr := m.zone()
	if aerr != nil {
		return aerr
	}
	if z.State != model.Stopped {
		if err := m.snap.SetGroupMute(ctx, z.SnapcastGroupID, false); err != nil {
			m.reportf(model.ErrUpstreamTimeout, "zone %d: unmute on playlist change: %v", m.zoneIndex, err)
		}
	}
	m.pos.Reset()
	m.duration = nil
	m.shuffle = nil
	_, _, mErr := m.zones.Mutate(m.zoneIndex, func(z *model.Zone) error {
		z.State = model.Stopped
		z.PlaylistIndex = playlistIndex
		z.TrackIndex = 1
		z.PositionMs = 0
		return nil
	})
	return toAppError(mErr)
}

func (m *Manager) NextPlaylist(ctx context.Context, playlistCount int) *model.AppError {
	return m.shiftPlaylist(ctx, playlistCount, 1)
}
func (m *Manager) PreviousPlaylist(ctx context.Context, playlistCount int) *model.AppError {
	return m.shiftPlaylist(ctx, playlistCount, -1)
}

func (m *Manager) shiftPlaylist(ctx context.Context, playlistCount, delta int) *model.AppError {
	z, aerr := m.zone()
	if aerr != nil {
		return aerr
	}
	if playlistCount == 0 {
		return model.NotFound("no playlists available")
	}
	next := z.PlaylistIndex + delta
	if next < model.RadioPlaylistIndex {
		next = playlistCount
	} else if next > playlistCount {
		next = model.RadioPlaylistIndex
	}
	return m.SetPlaylist(ctx, next)
}

// SeekPosition clamps to [0, duration]; rejects with INVALID_OPERATION when
// duration is unknown (live radio) (spec §4.2).
func (m *Manager) SeekPosition(ctx context.Context, ms int64) *model.AppError {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.duration == nil {
		return model.InvalidOperation("cannot seek a live stream with unknown duration")
	}
	clamped := ms
	if clamped < 0 {
		clamped = 0
	}
	if clamped > *m.duration {
		clamped = *m.duration
	}
	m.pos.Start(clamped)
	_, _, mErr := m.zones.Mutate(m.zoneIndex, func(z *model.Zone) error {
		z.PositionMs = clamped
		return nil
	})
	return toAppError(mErr)
}

// --- Volume / mute / toggles (delegated to Snapcast group ops) --------

func (m *Manager) SetVolume(ctx context.Context, volume int) *model.AppError {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.setVolumeLocked(ctx, model.ClampVolume(volume))
}

func (m *Manager) VolumeUp(ctx context.Context, step int) *model.AppError {
	return m.stepVolume(ctx, step, true)
}
func (m *Manager) VolumeDown(ctx context.Context, step int) *model.AppError {
	return m.stepVolume(ctx, step, false)
}

func (m *Manager) stepVolume(ctx context.Context, step int, up bool) *model.AppError {
	if step <= 0 {
		step = model.VolumeStep
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	z, aerr := m.zone()
	if aerr != nil {
		return aerr
	}
	delta := step
	if !up {
		delta = -step
	}
	return m.setVolumeLocked(ctx, model.ClampVolume(z.Volume+delta))
}

func (m *Manager) setVolumeLocked(ctx context.Context, volume int) *model.AppError {
	ids := m.memberSnapcastIDs()
	if err := m.snap.SetZoneVolume(ctx, ids, volume); err != nil {
		return m.reportf(model.ErrUpstreamTimeout, "zone %d: set volume: %v", m.zoneIndex, err)
	}
	_, _, mErr := m.zones.Mutate(m.zoneIndex, func(z *model.Zone) error {
		z.Volume = volume
		return nil
	})
	return toAppError(mErr)
}

func (m *Manager) SetMute(ctx context.Context, mute bool) *model.AppError {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.setMuteLocked(ctx, mute)
}

func (m *Manager) ToggleMute(ctx context.Context) *model.AppError {
	m.mu.Lock()
	defer m.mu.Unlock()
	z, aerr := m.zone()
	if aerr != nil {
		return aerr
	}
	return m.setMuteLocked(ctx, !z.Mute)
}

func (m *Manager) setMuteLocked(ctx context.Context, mute bool) *model.AppError {
	z, aerr := m.zone()
	if aerr != nil {
		return aerr
	}
	if err := m.snap.SetGroupMute(ctx, z.SnapcastGroupID, mute); err != nil {
		return m.reportf(model.ErrUpstreamTimeout, "zone %d: set mute: %v", m.zoneIndex, err)
	}
	_, _, mErr := m.zones.Mutate(m.zoneIndex, func(z *model.Zone) error {
		z.Mute = mute
		return nil
	})
	return toAppError(mErr)
}

// --- Repeat / shuffle toggles -------------------------------------------

func (m *Manager) SetTrackRepeat(b bool) *model.AppError    { return m.setFlag(func(z *model.Zone) { z.TrackRepeat = b }) }
func (m *Manager) ToggleTrackRepeat() *model.AppError {
	return m.setFlag(func(z *model.Zone) { z.TrackRepeat = !z.TrackRepeat })
}
func (m *Manager) SetPlaylistRepeat(b bool) *model.AppError {
	return m.setFlag(func(z *model.Zone) { z.PlaylistRepeat = b })
}
func (m *Manager) TogglePlaylistRepeat() *model.AppError {
	return m.setFlag(func(z *model.Zone) { z.PlaylistRepeat = !z.PlaylistRepeat })
}
func (m *Manager) SetPlaylistShuffle(b bool) *model.AppError {
	return m.setFlag(func(z *model.Zone) { z.Shuffle = b })
}
func (m *Manager) TogglePlaylistShuffle() *model.AppError {
	return m.setFlag(func(z *model.Zone) { z.Shuffle = !z.Shuffle })
}

func (m *Manager) setFlag(fn func(*model.Zone)) *model.AppError {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, _, err := m.zones.Mutate(m.zoneIndex, func(z *model.Zone) error {
		fn(z)
		return nil
	})
	return toAppError(err)
}

// --- Position ticker (spec §4.2: 1000ms tick, track-ended detection) --

// Tick is invoked every 1000ms by the owning runtime. It advances the
// stored position while Playing and synthesizes a track-ended transition
// when the computed position exceeds the known duration.
func (m *Manager) Tick(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()

	z, aerr := m.zone()
	if aerr != nil {
		return
	}
	if z.State != model.Playing {
		return
	}

	current := m.pos.Position()
	if m.duration != nil && current >= *m.duration {
		if z.TrackRepeat {
			m.startTrack(ctx, z, z.PlaylistIndex, z.TrackIndex)
			return
		}
		m.advanceLocked(ctx, z, true)
		return
	}

	m.zones.Mutate(m.zoneIndex, func(z *model.Zone) error {
		z.PositionMs = current
		return nil
	})
}

// Run drives the position ticker until ctx is cancelled.
func (m *Manager) Run(ctx context.Context) {
	t := m.clk.NewTicker(1000 * time.Millisecond)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C():
			m.Tick(ctx)
		}
	}
}

func toAppError(err error) *model.AppError {
	if err == nil {
		return nil
	}
	if ae, ok := err.(*model.AppError); ok {
		return ae
	}
	return model.Internal(err.Error())
}
