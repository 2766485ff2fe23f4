package router

import (
	"context"

	"github.com/metaneutrons/snapdog2-sub015/internal/model"
	"github.com/metaneutrons/snapdog2-sub015/internal/store"
)

// GroupRebinder is notified after a client's zone assignment changes so the
// Snapcast reconciler can move the client's Snapcast group membership to
// match (spec §4.3). Optional — nil in tests that don't care.
type GroupRebinder interface {
	RebindClientZone(ctx context.Context, clientIndex, oldZoneIndex, newZoneIndex int)
}

// Router is the single dispatch point for every Command regardless of
// origin surface.
type Router struct {
	zones       *store.ZoneStore
	clients     *store.ClientStore
	zoneManagers map[int]ZonePlayer
	clientPort  ClientPort
	media       MediaLister
	rebinder    GroupRebinder
}

// New builds a Router. zoneManagers must contain one entry per configured
// zone, keyed by ZoneIndex.
func New(zones *store.ZoneStore, clients *store.ClientStore, zoneManagers map[int]ZonePlayer, clientPort ClientPort, media MediaLister, rebinder GroupRebinder) *Router {
	return &Router{
		zones:        zones,
		clients:      clients,
		zoneManagers: zoneManagers,
		clientPort:   clientPort,
		media:        media,
		rebinder:     rebinder,
	}
}

// Dispatch validates cmd against current state, then executes exactly one
// handler for its Kind. Non-suspending validation always runs before any
// suspending I/O or store mutation (spec §4.4).
func (r *Router) Dispatch(ctx context.Context, cmd model.Command) *model.AppError {
	if aerr := validate(cmd); aerr != nil {
		return aerr
	}

	if isZoneCommand(cmd.Kind) {
		zm, ok := r.zoneManagers[cmd.ZoneIndex]
		if !ok {
			return model.NotFound("zone not found")
		}
		return r.dispatchZone(ctx, zm, cmd)
	}
	if isClientCommand(cmd.Kind) {
		if _, ok := r.clients.Get(cmd.ClientIndex); !ok {
			return model.NotFound("client not found")
		}
		return r.dispatchClient(ctx, cmd)
	}
	return model.Validation("unknown command kind")
}

func isZoneCommand(k model.CommandKind) bool {
	switch k {
	case model.CmdPlay, model.CmdPause, model.CmdStop, model.CmdControl,
		model.CmdSetZoneVolume, model.CmdZoneVolumeUp, model.CmdZoneVolumeDown,
		model.CmdSetZoneMute, model.CmdToggleZoneMute,
		model.CmdSetTrack, model.CmdNextTrack, model.CmdPreviousTrack,
		model.CmdSetTrackRepeat, model.CmdToggleTrackRepeat, model.CmdSeekPosition,
		model.CmdPlayTrackFromPlaylist,
		model.CmdSetPlaylist, model.CmdNextPlaylist, model.CmdPreviousPlaylist,
		model.CmdSetPlaylistRepeat, model.CmdTogglePlaylistRepeat,
		model.CmdSetPlaylistShuffle, model.CmdTogglePlaylistShuffle:
		return true
	}
	return false
}

func isClientCommand(k model.CommandKind) bool {
	switch k {
	case model.CmdSetClientVolume, model.CmdClientVolumeUp, model.CmdClientVolumeDown,
		model.CmdSetClientMute, model.CmdToggleClientMute,
		model.CmdSetClientLatency, model.CmdAssignClientToZone, model.CmdSetClientName:
		return true
	}
	return false
}

func (r *Router) dispatchZone(ctx context.Context, zm ZonePlayer, cmd model.Command) *model.AppError {
	switch cmd.Kind {
	case model.CmdPlay:
		return zm.Play(ctx, cmd.PlayURL, cmd.HasPlayTarget, cmd.PlayPlaylistIndex, cmd.PlayTrackIndex)
	case model.CmdPause:
		return zm.Pause(ctx)
	case model.CmdStop:
		return zm.Stop(ctx)
	case model.CmdControl:
		return r.dispatchControl(ctx, zm, cmd.Control)

	case model.CmdSetZoneVolume:
		return zm.SetVolume(ctx, cmd.Volume)
	case model.CmdZoneVolumeUp:
		return zm.VolumeUp(ctx, cmd.Step)
	case model.CmdZoneVolumeDown:
		return zm.VolumeDown(ctx, cmd.Step)
	case model.CmdSetZoneMute:
		return zm.SetMute(ctx, cmd.Bool)
	case model.CmdToggleZoneMute:
		return zm.ToggleMute(ctx)

	case model.CmdSetTrack:
		return zm.SetTrack(ctx, cmd.Index)
	case model.CmdNextTrack:
		return zm.NextTrack(ctx)
	case model.CmdPreviousTrack:
		return zm.PreviousTrack(ctx)
	case model.CmdSetTrackRepeat:
		return zm.SetTrackRepeat(cmd.Bool)
	case model.CmdToggleTrackRepeat:
		return zm.ToggleTrackRepeat()
	case model.CmdSeekPosition:
		return zm.SeekPosition(ctx, int64(cmd.Ms))
	case model.CmdPlayTrackFromPlaylist:
		return zm.PlayTrackFromPlaylist(ctx, cmd.PlayPlaylistIndex, cmd.PlayTrackIndex)

	case model.CmdSetPlaylist:
		return zm.SetPlaylist(ctx, cmd.Index)
	case model.CmdNextPlaylist:
		return r.shiftPlaylist(ctx, zm, true)
	case model.CmdPreviousPlaylist:
		return r.shiftPlaylist(ctx, zm, false)
	case model.CmdSetPlaylistRepeat:
		return zm.SetPlaylistRepeat(cmd.Bool)
	case model.CmdTogglePlaylistRepeat:
		return zm.TogglePlaylistRepeat()
	case model.CmdSetPlaylistShuffle:
		return zm.SetPlaylistShuffle(cmd.Bool)
	case model.CmdTogglePlaylistShuffle:
		return zm.TogglePlaylistShuffle()
	}
	return model.Validation("unhandled zone command kind")
}

func (r *Router) shiftPlaylist(ctx context.Context, zm ZonePlayer, forward bool) *model.AppError {
	count := 1
	if r.media != nil {
		n, err := r.media.PlaylistCount(ctx)
		if err != nil {
			return model.UpstreamUnavailable("failed to resolve playlist count: " + err.Error())
		}
		count = n
	}
	if forward {
		return zm.NextPlaylist(ctx, count)
	}
	return zm.PreviousPlaylist(ctx, count)
}

// dispatchControl maps the Control command's composite action onto the
// corresponding single-purpose handler (spec §4.4 table).
func (r *Router) dispatchControl(ctx context.Context, zm ZonePlayer, action model.ControlAction) *model.AppError {
	switch action {
	case model.ActionPlay:
		return zm.Play(ctx, "", false, 0, 0)
	case model.ActionPause:
		return zm.Pause(ctx)
	case model.ActionStop:
		return zm.Stop(ctx)
	case model.ActionNext:
		return zm.NextTrack(ctx)
	case model.ActionPrev:
		return zm.PreviousTrack(ctx)
	case model.ActionShuffleOn:
		return zm.SetPlaylistShuffle(true)
	case model.ActionShuffleOff:
		return zm.SetPlaylistShuffle(false)
	case model.ActionRepeatOn:
		return zm.SetPlaylistRepeat(true)
	case model.ActionRepeatOff:
		return zm.SetPlaylistRepeat(false)
	case model.ActionMuteOn:
		return zm.SetMute(ctx, true)
	case model.ActionMuteOff:
		return zm.SetMute(ctx, false)
	}
	return model.Validation("unknown control action")
}

func (r *Router) dispatchClient(ctx context.Context, cmd model.Command) *model.AppError {
	cl, _ := r.clients.Get(cmd.ClientIndex)

	switch cmd.Kind {
	case model.CmdSetClientVolume:
		return r.setClientVolume(ctx, cl, model.ClampVolume(cmd.Volume), cl.Mute)
	case model.CmdClientVolumeUp:
		step := cmd.Step
		if step <= 0 {
			step = model.VolumeStep
		}
		return r.setClientVolume(ctx, cl, model.ClampVolume(cl.Volume+step), cl.Mute)
	case model.CmdClientVolumeDown:
		step := cmd.Step
		if step <= 0 {
			step = model.VolumeStep
		}
		return r.setClientVolume(ctx, cl, model.ClampVolume(cl.Volume-step), cl.Mute)
	case model.CmdSetClientMute:
		return r.setClientVolume(ctx, cl, cl.Volume, cmd.Bool)
	case model.CmdToggleClientMute:
		return r.setClientVolume(ctx, cl, cl.Volume, !cl.Mute)

	case model.CmdSetClientLatency:
		latency := model.ClampLatency(cmd.Ms)
		if err := r.clientPort.SetClientLatency(ctx, cl.SnapcastClientID, latency); err != nil {
			return model.UpstreamTimeout("set client latency: " + err.Error())
		}
		_, _, err := r.clients.Mutate(cmd.ClientIndex, func(c *model.Client) error {
			c.LatencyMs = latency
			return nil
		})
		return toAppError(err)

	case model.CmdSetClientName:
		if err := r.clientPort.SetClientName(ctx, cl.SnapcastClientID, cmd.Name); err != nil {
			return model.UpstreamTimeout("set client name: " + err.Error())
		}
		_, _, err := r.clients.Mutate(cmd.ClientIndex, func(c *model.Client) error {
			c.Name = cmd.Name
			return nil
		})
		return toAppError(err)

	case model.CmdAssignClientToZone:
		return r.assignClientToZone(ctx, cl, cmd.Index)
	}
	return model.Validation("unhandled client command kind")
}

func (r *Router) setClientVolume(ctx context.Context, cl model.Client, volume int, mute bool) *model.AppError {
	if err := r.clientPort.SetClientVolume(ctx, cl.SnapcastClientID, volume, mute); err != nil {
		return model.UpstreamTimeout("set client volume: " + err.Error())
	}
	_, _, err := r.clients.Mutate(cl.ClientIndex, func(c *model.Client) error {
		c.Volume = volume
		c.Mute = mute
		return nil
	})
	return toAppError(err)
}

func (r *Router) assignClientToZone(ctx context.Context, cl model.Client, newZoneIndex int) *model.AppError {
	if _, ok := r.zones.Get(newZoneIndex); !ok {
		return model.NotFound("target zone not found")
	}
	oldZoneIndex := cl.ZoneIndex
	if oldZoneIndex == newZoneIndex {
		return nil
	}

	_, _, err := r.clients.Mutate(cl.ClientIndex, func(c *model.Client) error {
		c.ZoneIndex = newZoneIndex
		return nil
	})
	if err != nil {
		return toAppError(err)
	}

	r.zones.Mutate(oldZoneIndex, func(z *model.Zone) error {
		z.ClientIndices = removeInt(z.ClientIndices, cl.ClientIndex)
		return nil
	})
	r.zones.Mutate(newZoneIndex, func(z *model.Zone) error {
		z.ClientIndices = append(z.ClientIndices, cl.ClientIndex)
		return nil
	})

	if r.rebinder != nil {
		r.rebinder.RebindClientZone(ctx, cl.ClientIndex, oldZoneIndex, newZoneIndex)
	}
	return nil
}

func removeInt(s []int, v int) []int {
	out := s[:0]
	for _, x := range s {
		if x != v {
			out = append(out, x)
		}
	}
	return out
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
