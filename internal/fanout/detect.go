package fanout

import "github.com/metaneutrons/snapdog2-sub015/internal/model"

// zoneEvents returns the StatusEvents a zone change produces, per the
// change-detection rules of spec §4.5: integer equality for volume/mute/
// flags, field-by-field equality for track metadata, integer-second
// equality for position.
func zoneEvents(old, next model.Zone, version uint64) []StatusEvent {
	var evs []StatusEvent
	add := func(kind model.StatusKind, payload interface{}) {
		evs = append(evs, StatusEvent{Kind: kind, Entity: model.EntityZone, TargetIndex: next.ZoneIndex, Payload: payload, Version: version})
	}

	if old.Volume != next.Volume {
		add(model.StatusVolume, next.Volume)
	}
	if old.Mute != next.Mute {
		add(model.StatusMute, next.Mute)
	}
	if old.State != next.State {
		add(model.StatusPlaybackState, next.State)
	}
	if !old.CurrentTrack.Equal(next.CurrentTrack) {
		add(model.StatusTrackMetadata, next.CurrentTrack)
	}
	if old.PlaylistIndex != next.PlaylistIndex || old.TrackIndex != next.TrackIndex ||
		old.PlaylistRepeat != next.PlaylistRepeat || old.TrackRepeat != next.TrackRepeat || old.Shuffle != next.Shuffle {
		add(model.StatusPlaylist, playlistStatePayload{
			PlaylistIndex:  next.PlaylistIndex,
			TrackIndex:     next.TrackIndex,
			PlaylistRepeat: next.PlaylistRepeat,
			TrackRepeat:    next.TrackRepeat,
			Shuffle:        next.Shuffle,
		})
	}
	if old.PositionMs/1000 != next.PositionMs/1000 {
		add(model.StatusTrackProgress, next.PositionMs)
	}
	return evs
}

type playlistStatePayload struct {
	PlaylistIndex  int  `json:"playlistIndex"`
	TrackIndex     int  `json:"trackIndex"`
	PlaylistRepeat bool `json:"playlistRepeat"`
	TrackRepeat    bool `json:"trackRepeat"`
	Shuffle        bool `json:"shuffle"`
}

// clientEvents returns the StatusEvents a client change produces.
func clientEvents(old, next model.Client, version uint64) []StatusEvent {
	var evs []StatusEvent
	add := func(kind model.StatusKind, payload interface{}) {
		evs = append(evs, StatusEvent{Kind: kind, Entity: model.EntityClient, TargetIndex: next.ClientIndex, Payload: payload, Version: version})
	}

	if old.Volume != next.Volume {
		add(model.StatusClientVolume, next.Volume)
	}
	if old.Mute != next.Mute {
		add(model.StatusClientMute, next.Mute)
	}
	if old.LatencyMs != next.LatencyMs {
		add(model.StatusClientLatency, next.LatencyMs)
	}
	if old.ZoneIndex != next.ZoneIndex {
		add(model.StatusClientZone, next.ZoneIndex)
	}
	if old.Connected != next.Connected {
		add(model.StatusClientConnected, next.Connected)
	}
	return evs
}

// globalEvents returns the StatusEvents a GlobalState change produces.
func globalEvents(old, next model.GlobalState, version uint64) []StatusEvent {
	var evs []StatusEvent
	add := func(kind model.StatusKind, payload interface{}) {
		evs = append(evs, StatusEvent{Kind: kind, Entity: model.EntityGlobal, Payload: payload, Version: version})
	}

	if old.Online != next.Online {
		add(model.StatusSystem, next.Online)
	}
	if !sameLastError(old.LastError, next.LastError) {
		add(model.StatusSystemError, next.LastError)
	}
	if old.ServerStats != next.ServerStats {
		add(model.StatusServerStats, next.ServerStats)
	}
	if old.Version != next.Version || old.BuildTimestamp != next.BuildTimestamp {
		add(model.StatusVersionInfo, struct {
			Version        string `json:"version"`
			BuildTimestamp string `json:"buildTimestamp"`
		}{next.Version, next.BuildTimestamp})
	}
	return evs
}

func sameLastError(a, b *model.LastError) bool {
	switch {
	case a == nil && b == nil:
		return true
	case a == nil || b == nil:
		return false
	default:
		return *a == *b
	}
}

// seedZone returns the full set of kinds for a zone unconditionally (spec
// §4.5 seed-emit after startup/reconnect).
func seedZone(z model.Zone, version uint64) []StatusEvent {
	return zoneEvents(model.Zone{}, z, version)
}

func seedClient(c model.Client, version uint64) []StatusEvent {
	return clientEvents(model.Client{}, c, version)
}

func seedGlobal(g model.GlobalState, version uint64) []StatusEvent {
	return globalEvents(model.GlobalState{}, g, version)
}
