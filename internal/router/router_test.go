package router_test

import (
	"context"
	"testing"

	"github.com/metaneutrons/snapdog2-sub015/internal/model"
	"github.com/metaneutrons/snapdog2-sub015/internal/router"
	"github.com/metaneutrons/snapdog2-sub015/internal/store"
)

type fakeZonePlayer struct {
	played      bool
	paused      bool
	stopped     bool
	volume      int
	nextCount   int
}

func (f *fakeZonePlayer) Play(ctx context.Context, url string, hasTarget bool, pl, tr int) *model.AppError {
	f.played = true
	return nil
}
func (f *fakeZonePlayer) Pause(ctx context.Context) *model.AppError { f.paused = true; return nil }
func (f *fakeZonePlayer) Stop(ctx context.Context) *model.AppError  { f.stopped = true; return nil }
func (f *fakeZonePlayer) NextTrack(ctx context.Context) *model.AppError { return nil }
func (f *fakeZonePlayer) PreviousTrack(ctx context.Context) *model.AppError { return nil }
func (f *fakeZonePlayer) SetTrack(ctx context.Context, trackIndex int) *model.AppError { return nil }
func (f *fakeZonePlayer) PlayTrackFromPlaylist(ctx context.Context, pl, tr int) *model.AppError {
	return nil
}
func (f *fakeZonePlayer) SetTrackRepeat(bool) *model.AppError    { return nil }
func (f *fakeZonePlayer) ToggleTrackRepeat() *model.AppError     { return nil }
func (f *fakeZonePlayer) SeekPosition(ctx context.Context, ms int64) *model.AppError { return nil }
func (f *fakeZonePlayer) SetPlaylist(ctx context.Context, idx int) *model.AppError   { return nil }
func (f *fakeZonePlayer) NextPlaylist(ctx context.Context, count int) *model.AppError {
	f.nextCount = count
	return nil
}
func (f *fakeZonePlayer) PreviousPlaylist(ctx context.Context, count int) *model.AppError { return nil }
func (f *fakeZonePlayer) SetPlaylistRepeat(bool) *model.AppError    { return nil }
func (f *fakeZonePlayer) TogglePlaylistRepeat() *model.AppError     { return nil }
func (f *fakeZonePlayer) SetPlaylistShuffle(bool) *model.AppError   { return nil }
func (f *fakeZonePlayer) TogglePlaylistShuffle() *model.AppError    { return nil }
func (f *fakeZonePlayer) SetVolume(ctx context.Context, volume int) *model.AppError {
	f.volume = volume
	return nil
}
func (f *fakeZonePlayer) VolumeUp(ctx context.Context, step int) *model.AppError   { return nil }
func (f *fakeZonePlayer) VolumeDown(ctx context.Context, step int) *model.AppError { return nil }
func (f *fakeZonePlayer) SetMute(ctx context.Context, mute bool) *model.AppError   { return nil }
func (f *fakeZonePlayer) ToggleMute(ctx context.Context) *model.AppError           { return nil }

type fakeClientPort struct {
	lastVolume  int
	lastMuted   bool
	lastLatency int
}

func (f *fakeClientPort) SetClientVolume(ctx context.Context, id string, volume int, muted bool) error {
	f.lastVolume = volume
	f.lastMuted = muted
	return nil
}
func (f *fakeClientPort) SetClientLatency(ctx context.Context, id string, latencyMs int) error {
	f.lastLatency = latencyMs
	return nil
}
func (f *fakeClientPort) SetClientName(ctx context.Context, id, name string) error { return nil }

type fakeMediaLister struct{ count int }

func (f *fakeMediaLister) PlaylistCount(ctx context.Context) (int, error) { return f.count, nil }

func newTestRouter() (*router.Router, *fakeZonePlayer, *fakeClientPort, *store.ZoneStore, *store.ClientStore) {
	zones := store.NewZoneStore([]model.Zone{{ZoneIndex: 1, Name: "Living Room"}})
	clients := store.NewClientStore([]model.Client{{ClientIndex: 1, ZoneIndex: 1, Volume: 50}})
	zp := &fakeZonePlayer{}
	cp := &fakeClientPort{}
	r := router.New(zones, clients, map[int]router.ZonePlayer{1: zp}, cp, &fakeMediaLister{count: 3}, nil)
	return r, zp, cp, zones, clients
}

func TestDispatchPlayCallsZoneManager(t *testing.T) {
	r, zp, _, _, _ := newTestRouter()
	cmd := model.Command{Kind: model.CmdPlay, ZoneIndex: 1}
	if aerr := r.Dispatch(context.Background(), cmd); aerr != nil {
		t.Fatalf("Dispatch: %v", aerr)
	}
	if !zp.played {
		t.Error("expected Play to be called on the zone manager")
	}
}

func TestDispatchUnknownZoneReturnsNotFound(t *testing.T) {
	r, _, _, _, _ := newTestRouter()
	cmd := model.Command{Kind: model.CmdPlay, ZoneIndex: 99}
	aerr := r.Dispatch(context.Background(), cmd)
	if aerr == nil || aerr.Kind != model.ErrNotFound {
		t.Fatalf("expected NOT_FOUND, got %v", aerr)
	}
}

func TestDispatchOutOfRangeVolumeIsClampedNotRejected(t *testing.T) {
	r, zp, _, _, _ := newTestRouter()
	cmd := model.Command{Kind: model.CmdSetZoneVolume, ZoneIndex: 1, Volume: 150}
	if aerr := r.Dispatch(context.Background(), cmd); aerr != nil {
		t.Fatalf("expected volume to be clamped, not rejected, got %v", aerr)
	}
	if zp.volume != 150 {
		t.Errorf("expected the raw volume to reach the zone manager for it to clamp, got %d", zp.volume)
	}
}

func TestDispatchOutOfRangeClientVolumeIsClampedAtTheRouter(t *testing.T) {
	r, _, cp, _, _ := newTestRouter()
	cmd := model.Command{Kind: model.CmdSetClientVolume, ClientIndex: 1, Volume: 150}
	if aerr := r.Dispatch(context.Background(), cmd); aerr != nil {
		t.Fatalf("expected volume to be clamped, not rejected, got %v", aerr)
	}
	if cp.lastVolume != 100 {
		t.Errorf("lastVolume = %d, want 100 (clamped)", cp.lastVolume)
	}
}

func TestDispatchOutOfRangeClientLatencyIsClampedAtTheRouter(t *testing.T) {
	r, _, cp, _, _ := newTestRouter()
	cmd := model.Command{Kind: model.CmdSetClientLatency, ClientIndex: 1, Ms: 5000}
	if aerr := r.Dispatch(context.Background(), cmd); aerr != nil {
		t.Fatalf("expected latency to be clamped, not rejected, got %v", aerr)
	}
	if cp.lastLatency != 2000 {
		t.Errorf("lastLatency = %d, want 2000 (clamped)", cp.lastLatency)
	}
}

func TestDispatchControlMapsActionToHandler(t *testing.T) {
	r, zp, _, _, _ := newTestRouter()
	cmd := model.Command{Kind: model.CmdControl, ZoneIndex: 1, Control: model.ActionPause}
	if aerr := r.Dispatch(context.Background(), cmd); aerr != nil {
		t.Fatalf("Dispatch: %v", aerr)
	}
	if !zp.paused {
		t.Error("expected Control(pause) to call Pause")
	}
}

func TestDispatchNextPlaylistPassesPlaylistCount(t *testing.T) {
	r, zp, _, _, _ := newTestRouter()
	cmd := model.Command{Kind: model.CmdNextPlaylist, ZoneIndex: 1}
	if aerr := r.Dispatch(context.Background(), cmd); aerr != nil {
		t.Fatalf("Dispatch: %v", aerr)
	}
	if zp.nextCount != 3 {
		t.Errorf("playlist count = %d, want 3", zp.nextCount)
	}
}

func TestDispatchSetClientVolumeUpdatesStoreAndPort(t *testing.T) {
	r, _, cp, _, clients := newTestRouter()
	cmd := model.Command{Kind: model.CmdSetClientVolume, ClientIndex: 1, Volume: 80}
	if aerr := r.Dispatch(context.Background(), cmd); aerr != nil {
		t.Fatalf("Dispatch: %v", aerr)
	}
	if cp.lastVolume != 80 {
		t.Errorf("client port volume = %d, want 80", cp.lastVolume)
	}
	cl, _ := clients.Get(1)
	if cl.Volume != 80 {
		t.Errorf("store volume = %d, want 80", cl.Volume)
	}
}

func TestDispatchAssignClientToZoneMovesMembership(t *testing.T) {
	zones := store.NewZoneStore([]model.Zone{{ZoneIndex: 1, Name: "Living Room"}, {ZoneIndex: 2, Name: "Kitchen"}})
	clients := store.NewClientStore([]model.Client{{ClientIndex: 1, ZoneIndex: 1, Volume: 50}})
	r := router.New(zones, clients, map[int]router.ZonePlayer{1: &fakeZonePlayer{}, 2: &fakeZonePlayer{}}, &fakeClientPort{}, &fakeMediaLister{count: 3}, nil)

	cmd := model.Command{Kind: model.CmdAssignClientToZone, ClientIndex: 1, Index: 2}
	if aerr := r.Dispatch(context.Background(), cmd); aerr != nil {
		t.Fatalf("Dispatch: %v", aerr)
	}

	cl, _ := clients.Get(1)
	if cl.ZoneIndex != 2 {
		t.Errorf("client zone = %d, want 2", cl.ZoneIndex)
	}
	z2, _ := zones.Get(2)
	if len(z2.ClientIndices) != 1 || z2.ClientIndices[0] != 1 {
		t.Errorf("zone 2 members = %v, want [1]", z2.ClientIndices)
	}
}
