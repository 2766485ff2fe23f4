package router

import "github.com/metaneutrons/snapdog2-sub015/internal/model"

// validate checks a Command's shape before any suspending I/O or store
// mutation runs (spec §4.4: "validation ... returns VALIDATION_ERROR before
// any state mutation"). Index existence (zone/client/track/playlist not
// found) is NOT_FOUND and is checked by Dispatch/the handler once the
// target's existence can be resolved against current state; validate only
// rejects structurally malformed commands. Volume and latency are
// deliberately not range-checked here: spec §4.2/§8 clamp out-of-range
// volume/latency rather than reject it, so out-of-range values pass
// validation and are clamped by the zone manager/adapter handlers.
func validate(cmd model.Command) *model.AppError {
	if cmd.Kind == "" {
		return model.Validation("command kind is required")
	}

	if isZoneCommand(cmd.Kind) && cmd.ZoneIndex < 1 {
		return model.Validation("zoneIndex must be >= 1")
	}
	if isClientCommand(cmd.Kind) && cmd.ClientIndex < 1 {
		return model.Validation("clientIndex must be >= 1")
	}

	switch cmd.Kind {
	case model.CmdControl:
		switch cmd.Control {
		case model.ActionPlay, model.ActionPause, model.ActionStop, model.ActionNext, model.ActionPrev,
			model.ActionShuffleOn, model.ActionShuffleOff, model.ActionRepeatOn, model.ActionRepeatOff,
			model.ActionMuteOn, model.ActionMuteOff:
		default:
			return model.Validation("invalid control action")
		}

	case model.CmdPlayTrackFromPlaylist:
		if cmd.PlayPlaylistIndex < 1 {
			return model.Validation("playlistIndex must be >= 1")
		}
		if cmd.PlayTrackIndex < 1 {
			return model.Validation("trackIndex must be >= 1")
		}

	case model.CmdSetTrack:
		if cmd.Index < 1 {
			return model.Validation("track index must be >= 1")
		}

	case model.CmdSetPlaylist:
		if cmd.Index < 1 {
			return model.Validation("playlist index must be >= 1")
		}

	case model.CmdSeekPosition:
		if cmd.Ms < 0 {
			return model.Validation("seek position must be >= 0")
		}

	case model.CmdAssignClientToZone:
		if cmd.Index < 1 {
			return model.Validation("target zoneIndex must be >= 1")
		}

	case model.CmdSetClientName:
		if cmd.Name == "" {
			return model.Validation("name must not be empty")
		}
	}

	return nil
}
