// Package config loads SnapDog's configuration from environment variables
// under the SNAPDOG_ prefix (spec §6). Config is read once at process
// startup; there is no hot reload — the teacher's JSON-file Store (with its
// fsnotify watch and debounced writes) doesn't fit here because SnapDog has
// nothing to persist across restarts except what it re-reads from Snapcast.
package config

import "time"

// Config is the fully-loaded, validated configuration tree.
type Config struct {
	System   SystemConfig
	API      APIConfig
	Services ServicesConfig
	Zones    []ZoneConfig
	Clients  []ClientConfig
	Radio    []RadioConfig
	Telemetry TelemetryConfig
}

type SystemConfig struct {
	Environment     string // e.g. "Development", "Production"
	LogLevel        string // slog level name
	ApplicationName string
}

type APIConfig struct {
	Port         int
	HTTPSEnabled bool
	AuthEnabled  bool
	APIKeys      []string // union of API_APIKEY and API_APIKEY_1..10
}

type ServicesConfig struct {
	Snapcast SnapcastConfig
	MQTT     MQTTConfig
	KNX      KNXConfig
	Subsonic SubsonicConfig
}

type SnapcastConfig struct {
	Host           string
	Port           int
	TimeoutSeconds int
}

type MQTTConfig struct {
	Broker    string
	Port      int
	Username  string
	Password  string
	ClientID  string
	BaseTopic string
}

type KNXConfig struct {
	Enabled bool
	Gateway string
	Port    int
}

type SubsonicConfig struct {
	URL      string
	Username string
	Password string
}

// ZoneConfig describes one configured zone (ZONE_N_*).
type ZoneConfig struct {
	Index       int // 1-based
	Name        string
	Description string
	Enabled     bool

	MqttBaseTopic string
	MqttTopics    map[string]string // override-templates keyed by control/status name
	KNX           KnxZoneGAs
}

// KnxZoneGAs holds the group addresses a zone may expose (spec §4.7).
type KnxZoneGAs struct {
	Enabled  bool
	Volume   string
	Mute     string
	Play     string
	Next     string
	Previous string
	Repeat   string
	Shuffle  string
	Playlist string
	Track    string
}

// KnxClientGAs holds the group addresses a client may expose (spec §4.7,
// §6: "KNX_{VOLUME,MUTE,LATENCY,ZONE,...}" hold GA strings "a/b/c").
type KnxClientGAs struct {
	Enabled bool
	Volume  string
	Mute    string
	Latency string
	Zone    string
}

// ClientConfig describes one configured client (CLIENT_N_*).
type ClientConfig struct {
	Index          int // 1-based
	Name           string
	MAC            string
	DefaultZone    int
	MqttBaseTopic  string
	MqttTopics     map[string]string // override-templates keyed by control/status name
	KNX            KnxClientGAs
}

// RadioConfig describes one configured radio station (RADIO_N_*).
type RadioConfig struct {
	Index       int // 1-based
	Name        string
	URL         string
	Description string
	Enabled     bool
}

type TelemetryConfig struct {
	Enabled       bool
	OTLPEndpoint  string
	OTLPProtocol  string
	OTLPHeaders   string
	OTLPTimeout   time.Duration
}
