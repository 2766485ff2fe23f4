package model

// Source identifies which control surface originated a command (spec
// GLOSSARY: "source tag"). Carried for audit and MQTT loop-prevention.
type Source string

const (
	SourceAPI      Source = "Api"
	SourceMqtt     Source = "Mqtt"
	SourceKnx      Source = "Knx"
	SourceInternal Source = "Internal"
)

// CommandKind is the closed, normative set of command types from spec §4.4.
// Names are identifiers, not wire strings.
type CommandKind string

const (
	CmdPlay    CommandKind = "Play"
	CmdPause   CommandKind = "Pause"
	CmdStop    CommandKind = "Stop"
	CmdControl CommandKind = "Control" // composite play/pause/stop/next/prev/shuffle/repeat/mute

	CmdSetZoneVolume  CommandKind = "SetZoneVolume"
	CmdZoneVolumeUp   CommandKind = "VolumeUp"
	CmdZoneVolumeDown CommandKind = "VolumeDown"
	CmdSetZoneMute    CommandKind = "SetZoneMute"
	CmdToggleZoneMute CommandKind = "ToggleZoneMute"

	CmdSetTrack             CommandKind = "SetTrack"
	CmdNextTrack             CommandKind = "NextTrack"
	CmdPreviousTrack         CommandKind = "PreviousTrack"
	CmdSetTrackRepeat        CommandKind = "SetTrackRepeat"
	CmdToggleTrackRepeat     CommandKind = "ToggleTrackRepeat"
	CmdSeekPosition          CommandKind = "SeekPosition"
	CmdPlayTrackFromPlaylist CommandKind = "PlayTrackFromPlaylist"

	CmdSetPlaylist          CommandKind = "SetPlaylist"
	CmdNextPlaylist         CommandKind = "NextPlaylist"
	CmdPreviousPlaylist     CommandKind = "PreviousPlaylist"
	CmdSetPlaylistRepeat    CommandKind = "SetPlaylistRepeat"
	CmdTogglePlaylistRepeat CommandKind = "TogglePlaylistRepeat"
	CmdSetPlaylistShuffle   CommandKind = "SetPlaylistShuffle"
	CmdTogglePlaylistShuffle CommandKind = "TogglePlaylistShuffle"

	CmdSetClientVolume     CommandKind = "SetClientVolume"
	CmdClientVolumeUp      CommandKind = "ClientVolumeUp"
	CmdClientVolumeDown    CommandKind = "ClientVolumeDown"
	CmdSetClientMute       CommandKind = "SetClientMute"
	CmdToggleClientMute    CommandKind = "ToggleClientMute"

	CmdSetClientLatency   CommandKind = "SetClientLatency"
	CmdAssignClientToZone CommandKind = "AssignClientToZone"
	CmdSetClientName      CommandKind = "SetClientName"
)

// ControlAction enumerates the Control command's composite actions.
type ControlAction string

const (
	ActionPlay       ControlAction = "play"
	ActionPause      ControlAction = "pause"
	ActionStop       ControlAction = "stop"
	ActionNext       ControlAction = "next"
	ActionPrev       ControlAction = "prev"
	ActionShuffleOn  ControlAction = "shuffle_on"
	ActionShuffleOff ControlAction = "shuffle_off"
	ActionRepeatOn   ControlAction = "repeat_on"
	ActionRepeatOff  ControlAction = "repeat_off"
	ActionMuteOn     ControlAction = "mute_on"
	ActionMuteOff    ControlAction = "mute_off"
)

// Command is the normalized, router-dispatchable representation of every
// inbound instruction regardless of entry surface. Only the fields relevant
// to Kind are populated; the router and handlers know which ones to read.
type Command struct {
	Kind   CommandKind
	Source Source

	ZoneIndex   int
	ClientIndex int

	// Play
	PlayURL          string
	PlayPlaylistIndex int
	PlayTrackIndex    int
	HasPlayTarget     bool

	Control ControlAction

	Volume int
	Step   int
	Bool   bool // generic on/off payload for Set*(bool) and ToggleX has none
	Ms     int

	Index int // generic 1-based index payload (track/playlist)
	Name  string
}
