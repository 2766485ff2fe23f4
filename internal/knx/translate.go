package knx

import (
	"encoding/json"
	"fmt"

	"github.com/metaneutrons/snapdog2-sub015/internal/model"
)

// commandFromControlPoint decodes one inbound group event's raw payload
// according to the control point it targets and produces a dispatchable
// command.
func commandFromControlPoint(cp controlPoint, data []byte) (model.Command, error) {
	base := model.Command{Source: model.SourceKnx}
	if cp.entity == model.EntityZone {
		base.ZoneIndex = cp.index
	} else {
		base.ClientIndex = cp.index
	}

	switch cp.entity {
	case model.EntityZone:
		return zoneCommandFromControlPoint(base, cp.key, data)
	case model.EntityClient:
		return clientCommandFromControlPoint(base, cp.key, data)
	}
	return base, fmt.Errorf("unsupported entity kind %q", cp.entity)
}

func zoneCommandFromControlPoint(base model.Command, key string, data []byte) (model.Command, error) {
	switch key {
	case "play":
		on, err := decodeBool(data)
		if err != nil {
			return base, err
		}
		base.Kind = model.CmdControl
		if on {
			base.Control = model.ActionPlay
		} else {
			base.Control = model.ActionPause
		}
		return base, nil
	case "next":
		if _, err := decodeBool(data); err != nil {
			return base, err
		}
		base.Kind = model.CmdControl
		base.Control = model.ActionNext
		return base, nil
	case "previous":
		if _, err := decodeBool(data); err != nil {
			return base, err
		}
		base.Kind = model.CmdControl
		base.Control = model.ActionPrev
		return base, nil
	case "repeat":
		on, err := decodeBool(data)
		if err != nil {
			return base, err
		}
		base.Kind = model.CmdSetPlaylistRepeat
		base.Bool = on
		return base, nil
	case "shuffle":
		on, err := decodeBool(data)
		if err != nil {
			return base, err
		}
		base.Kind = model.CmdSetPlaylistShuffle
		base.Bool = on
		return base, nil
	case "playlist":
		idx, err := decodeCount(data)
		if err != nil {
			return base, err
		}
		base.Kind = model.CmdSetPlaylist
		base.Index = idx
		return base, nil
	case "track":
		idx, err := decodeCount(data)
		if err != nil {
			return base, err
		}
		base.Kind = model.CmdSetTrack
		base.Index = idx
		return base, nil
	case "volume":
		vol, err := decodePercent(data)
		if err != nil {
			return base, err
		}
		base.Kind = model.CmdSetZoneVolume
		base.Volume = vol
		return base, nil
	case "mute":
		on, err := decodeBool(data)
		if err != nil {
			return base, err
		}
		base.Kind = model.CmdSetZoneMute
		base.Bool = on
		return base, nil
	}
	return base, fmt.Errorf("unknown zone control point %q", key)
}

func clientCommandFromControlPoint(base model.Command, key string, data []byte) (model.Command, error) {
	switch key {
	case "volume":
		vol, err := decodePercent(data)
		if err != nil {
			return base, err
		}
		base.Kind = model.CmdSetClientVolume
		base.Volume = vol
		return base, nil
	case "mute":
		on, err := decodeBool(data)
		if err != nil {
			return base, err
		}
		base.Kind = model.CmdSetClientMute
		base.Bool = on
		return base, nil
	case "latency":
		ms, err := decodeLatency(data)
		if err != nil {
			return base, err
		}
		base.Kind = model.CmdSetClientLatency
		base.Ms = ms
		return base, nil
	case "zone":
		idx, err := decodeCount(data)
		if err != nil {
			return base, err
		}
		base.Kind = model.CmdAssignClientToZone
		base.Index = idx
		return base, nil
	}
	return base, fmt.Errorf("unknown client control point %q", key)
}

// encodeStatusPayload re-encodes a fan-out event's payload as the DPT the
// target status control point uses.
func encodeStatusPayload(kind model.StatusKind, payload interface{}) ([]byte, error) {
	switch kind {
	case model.StatusVolume, model.StatusClientVolume:
		v, ok := payload.(int)
		if !ok {
			return nil, fmt.Errorf("expected int volume payload, got %T", payload)
		}
		return encodePercent(v), nil
	case model.StatusMute, model.StatusClientMute:
		v, ok := payload.(bool)
		if !ok {
			return nil, fmt.Errorf("expected bool mute payload, got %T", payload)
		}
		return encodeBool(v), nil
	case model.StatusClientLatency:
		v, ok := payload.(int)
		if !ok {
			return nil, fmt.Errorf("expected int latency payload, got %T", payload)
		}
		return encodeLatency(v), nil
	case model.StatusClientZone:
		v, ok := payload.(int)
		if !ok {
			return nil, fmt.Errorf("expected int zone payload, got %T", payload)
		}
		return encodeCount(v), nil
	case model.StatusPlaylist:
		// The fan-out layer's playlist payload is an unexported struct; round
		// trip through JSON to read the field this control point encodes.
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		var pl struct {
			PlaylistIndex int `json:"playlistIndex"`
		}
		if err := json.Unmarshal(raw, &pl); err != nil {
			return nil, err
		}
		return encodeCount(pl.PlaylistIndex), nil
	}
	return nil, fmt.Errorf("no KNX encoding for status kind %q", kind)
}
