package mqtt

import (
	"fmt"
	"strings"

	"github.com/metaneutrons/snapdog2-sub015/internal/model"
)

// zoneCommandFromTopic translates one inbound zone control payload into a
// dispatchable command. key is the topic template key ("play", "volume",
// "repeat", ...), not the full topic path.
func zoneCommandFromTopic(zoneIndex int, key, payload string) (model.Command, error) {
	base := model.Command{Source: model.SourceMqtt, ZoneIndex: zoneIndex}

	switch key {
	case "play":
		base.Kind = model.CmdControl
		base.Control = model.ActionPlay
		return base, nil
	case "pause":
		base.Kind = model.CmdControl
		base.Control = model.ActionPause
		return base, nil
	case "stop":
		base.Kind = model.CmdControl
		base.Control = model.ActionStop
		return base, nil
	case "next":
		base.Kind = model.CmdControl
		base.Control = model.ActionNext
		return base, nil
	case "previous":
		base.Kind = model.CmdControl
		base.Control = model.ActionPrev
		return base, nil
	case "repeat":
		on, err := parseBool(payload)
		if err != nil {
			return base, err
		}
		base.Kind = model.CmdSetPlaylistRepeat
		base.Bool = on
		return base, nil
	case "shuffle":
		on, err := parseBool(payload)
		if err != nil {
			return base, err
		}
		base.Kind = model.CmdSetPlaylistShuffle
		base.Bool = on
		return base, nil
	case "playlist":
		idx, err := parseInt(payload)
		if err != nil {
			return base, err
		}
		base.Kind = model.CmdSetPlaylist
		base.Index = idx
		return base, nil
	case "track":
		idx, err := parseInt(payload)
		if err != nil {
			return base, err
		}
		base.Kind = model.CmdSetTrack
		base.Index = idx
		return base, nil
	case "volume":
		vol, err := parseInt(payload)
		if err != nil {
			return base, err
		}
		base.Kind = model.CmdSetZoneVolume
		base.Volume = vol
		return base, nil
	case "mute":
		on, err := parseBool(payload)
		if err != nil {
			return base, err
		}
		base.Kind = model.CmdSetZoneMute
		base.Bool = on
		return base, nil
	}
	return base, fmt.Errorf("unknown zone control key %q", key)
}

// clientCommandFromTopic translates one inbound client control payload.
func clientCommandFromTopic(clientIndex int, key, payload string) (model.Command, error) {
	base := model.Command{Source: model.SourceMqtt, ClientIndex: clientIndex}

	switch key {
	case "volume":
		vol, err := parseInt(payload)
		if err != nil {
			return base, err
		}
		base.Kind = model.CmdSetClientVolume
		base.Volume = vol
		return base, nil
	case "mute":
		on, err := parseBool(payload)
		if err != nil {
			return base, err
		}
		base.Kind = model.CmdSetClientMute
		base.Bool = on
		return base, nil
	case "latency":
		ms, err := parseInt(payload)
		if err != nil {
			return base, err
		}
		base.Kind = model.CmdSetClientLatency
		base.Ms = ms
		return base, nil
	case "zone":
		idx, err := parseInt(strings.TrimSpace(payload))
		if err != nil {
			return base, err
		}
		base.Kind = model.CmdAssignClientToZone
		base.Index = idx
		return base, nil
	}
	return base, fmt.Errorf("unknown client control key %q", key)
}
