package model

// StatusKind is the closed enumeration of fan-out status kinds (spec §4.5),
// mirroring the status IDs referenced across §6.
type StatusKind string

const (
	StatusVolume          StatusKind = "VOLUME_STATUS"
	StatusMute            StatusKind = "MUTE_STATUS"
	StatusPlaybackState   StatusKind = "PLAYBACK_STATE"
	StatusTrackMetadata   StatusKind = "TRACK_METADATA"
	StatusTrackProgress   StatusKind = "TRACK_PROGRESS_STATUS"
	StatusPlaylist        StatusKind = "PLAYLIST_STATUS"
	StatusClientVolume    StatusKind = "CLIENT_VOLUME_STATUS"
	StatusClientMute      StatusKind = "CLIENT_MUTE_STATUS"
	StatusClientLatency   StatusKind = "CLIENT_LATENCY_STATUS"
	StatusClientZone      StatusKind = "CLIENT_ZONE_STATUS"
	StatusClientConnected StatusKind = "CLIENT_CONNECTED"
	StatusSystem          StatusKind = "SYSTEM_STATUS"
	StatusServerStats     StatusKind = "SERVER_STATS"
	StatusSystemError     StatusKind = "SYSTEM_ERROR"
	StatusVersionInfo     StatusKind = "VERSION_INFO"
)

// EntityKind distinguishes which store a status event's TargetIndex refers to.
type EntityKind string

const (
	EntityZone   EntityKind = "zone"
	EntityClient EntityKind = "client"
	EntityGlobal EntityKind = "global"
)

// StatusEvent is what the fan-out bus produces and every adapter consumes.
type StatusEvent struct {
	Kind        StatusKind  `json:"kind"`
	Entity      EntityKind  `json:"entity"`
	TargetIndex int         `json:"targetIndex,omitempty"` // 0 for EntityGlobal
	Payload     interface{} `json:"payload"`
	Version     uint64      `json:"version"`
}
