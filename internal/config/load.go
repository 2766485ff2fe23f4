package config

import (
	"fmt"
	"strconv"
	"strings"
)

const prefix = "SNAPDOG_"

// Load reads and validates the full SnapDog configuration from the process
// environment. Every missing required key for an *enabled* section is
// collected into the returned error rather than failing on the first one
// (spec §6: "Missing required keys for an enabled section fail startup with
// a CONFIG error naming the key").
func Load() (*Config, error) {
	errs := &LoadErrors{}

	cfg := &Config{
		System: SystemConfig{
			Environment:     envString(prefix+"SYSTEM_ENVIRONMENT", "Production"),
			LogLevel:        envString(prefix+"SYSTEM_LOG_LEVEL", "info"),
			ApplicationName: envString(prefix+"SYSTEM_APPLICATION_NAME", "SnapDog"),
		},
		API: APIConfig{
			Port:         envInt(prefix+"API_PORT", 5000),
			HTTPSEnabled: envBool(prefix+"API_HTTPS_ENABLED", false),
			AuthEnabled:  envBool(prefix+"API_AUTH_ENABLED", true),
		},
	}

	cfg.API.APIKeys = loadAPIKeys()
	if cfg.API.AuthEnabled && len(cfg.API.APIKeys) == 0 {
		errs.add("%s: API_AUTH_ENABLED is true but no API_APIKEY or API_APIKEY_1..10 is set", prefix)
	}

	cfg.Services.Snapcast = SnapcastConfig{
		Host:           envString(prefix+"SERVICES_SNAPCAST_HOST", "localhost"),
		Port:           envInt(prefix+"SERVICES_SNAPCAST_PORT", 1705),
		TimeoutSeconds: envInt(prefix+"SERVICES_SNAPCAST_TIMEOUT_SECONDS", 5),
	}

	cfg.Services.MQTT = MQTTConfig{
		Broker:    envString(prefix+"SERVICES_MQTT_BROKER", ""),
		Port:      envInt(prefix+"SERVICES_MQTT_PORT", 1883),
		Username:  envString(prefix+"SERVICES_MQTT_USERNAME", ""),
		Password:  envString(prefix+"SERVICES_MQTT_PASSWORD", ""),
		ClientID:  envString(prefix+"SERVICES_MQTT_CLIENT_ID", "snapdog"),
		BaseTopic: envString(prefix+"SERVICES_MQTT_BASE_TOPIC", "snapdog"),
	}
	if cfg.Services.MQTT.Broker == "" {
		errs.add("%sSERVICES_MQTT_BROKER is required", prefix)
	}

	cfg.Services.KNX = KNXConfig{
		Enabled: envBool(prefix+"SERVICES_KNX_ENABLED", false),
		Gateway: envString(prefix+"SERVICES_KNX_GATEWAY", ""),
		Port:    envInt(prefix+"SERVICES_KNX_PORT", 3671),
	}
	if cfg.Services.KNX.Enabled && cfg.Services.KNX.Gateway == "" {
		errs.add("%sSERVICES_KNX_GATEWAY is required when SERVICES_KNX_ENABLED=true", prefix)
	}

	cfg.Services.Subsonic = SubsonicConfig{
		URL:      envString(prefix+"SERVICES_SUBSONIC_URL", ""),
		Username: envString(prefix+"SERVICES_SUBSONIC_USERNAME", ""),
		Password: envString(prefix+"SERVICES_SUBSONIC_PASSWORD", ""),
	}

	cfg.Telemetry = TelemetryConfig{
		Enabled:      envBool(prefix+"TELEMETRY_ENABLED", false),
		OTLPEndpoint: envString(prefix+"TELEMETRY_OTLP_ENDPOINT", ""),
		OTLPProtocol: envString(prefix+"TELEMETRY_OTLP_PROTOCOL", "grpc"),
		OTLPHeaders:  envString(prefix+"TELEMETRY_OTLP_HEADERS", ""),
		OTLPTimeout:  envDuration(prefix+"TELEMETRY_OTLP_TIMEOUT", 10_000_000_000),
	}

	cfg.Zones = loadZones(errs)
	if len(cfg.Zones) == 0 {
		errs.add("%sZONE_1_NAME is required: at least one zone must be configured", prefix)
	}

	cfg.Clients = loadClients(errs, len(cfg.Zones))
	cfg.Radio = loadRadio()

	if err := errs.Err(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// enumerate calls probe(n) for n = 1, 2, 3, ... until probe returns false,
// implementing the "contiguous from 1; a gap terminates enumeration" rule
// (spec §6) shared by Zones, Clients, Radio and API_APIKEY_N.
func enumerate(probe func(n int) bool) {
	for n := 1; ; n++ {
		if !probe(n) {
			return
		}
	}
}

func loadAPIKeys() []string {
	var keys []string
	if v, ok := envRequired(prefix + "API_APIKEY"); ok {
		keys = append(keys, v)
	}
	enumerate(func(n int) bool {
		key := prefix + "API_APIKEY_" + strconv.Itoa(n)
		v, ok := envRequired(key)
		if !ok {
			return false
		}
		keys = append(keys, v)
		return n < 10 // API_APIKEY_1..10 per spec §6
	})
	return keys
}

func loadZones(errs *LoadErrors) []ZoneConfig {
	var zones []ZoneConfig
	enumerate(func(n int) bool {
		nameKey := fmt.Sprintf("%sZONE_%d_NAME", prefix, n)
		name, ok := envRequired(nameKey)
		if !ok {
			return false
		}
		enabled := envBool(fmt.Sprintf("%sZONE_%d_ENABLED", prefix, n), true)
		zones = append(zones, ZoneConfig{
			Index:         n,
			Name:          name,
			Description:   envString(fmt.Sprintf("%sZONE_%d_DESCRIPTION", prefix, n), ""),
			Enabled:       enabled,
			MqttBaseTopic: envString(fmt.Sprintf("%sZONE_%d_MQTT_BASETOPIC", prefix, n), ""),
			MqttTopics:    loadZoneMqttTopics(n),
			KNX: KnxZoneGAs{
				Enabled:  envBool(fmt.Sprintf("%sZONE_%d_KNX_ENABLED", prefix, n), false),
				Volume:   envString(fmt.Sprintf("%sZONE_%d_KNX_VOLUME", prefix, n), ""),
				Mute:     envString(fmt.Sprintf("%sZONE_%d_KNX_MUTE", prefix, n), ""),
				Play:     envString(fmt.Sprintf("%sZONE_%d_KNX_PLAY", prefix, n), ""),
				Next:     envString(fmt.Sprintf("%sZONE_%d_KNX_NEXT", prefix, n), ""),
				Previous: envString(fmt.Sprintf("%sZONE_%d_KNX_PREVIOUS", prefix, n), ""),
				Repeat:   envString(fmt.Sprintf("%sZONE_%d_KNX_REPEAT", prefix, n), ""),
				Shuffle:  envString(fmt.Sprintf("%sZONE_%d_KNX_SHUFFLE", prefix, n), ""),
				Playlist: envString(fmt.Sprintf("%sZONE_%d_KNX_PLAYLIST", prefix, n), ""),
				Track:    envString(fmt.Sprintf("%sZONE_%d_KNX_TRACK", prefix, n), ""),
			},
		})
		return true
	})
	return zones
}

func loadClients(errs *LoadErrors, zoneCount int) []ClientConfig {
	var clients []ClientConfig
	enumerate(func(n int) bool {
		nameKey := fmt.Sprintf("%sCLIENT_%d_NAME", prefix, n)
		name, ok := envRequired(nameKey)
		if !ok {
			return false
		}
		mac, ok := envRequired(fmt.Sprintf("%sCLIENT_%d_MAC", prefix, n))
		if !ok {
			errs.add("%sCLIENT_%d_MAC is required", prefix, n)
		}
		defaultZone := envInt(fmt.Sprintf("%sCLIENT_%d_DEFAULT_ZONE", prefix, n), 1)
		if zoneCount > 0 && (defaultZone < 1 || defaultZone > zoneCount) {
			errs.add("%sCLIENT_%d_DEFAULT_ZONE=%d is out of range [1..%d]", prefix, n, defaultZone, zoneCount)
		}

		cc := ClientConfig{
			Index:         n,
			Name:          name,
			MAC:           strings.ToUpper(mac),
			DefaultZone:   defaultZone,
			MqttBaseTopic: envString(fmt.Sprintf("%sCLIENT_%d_MQTT_BASETOPIC", prefix, n), ""),
			MqttTopics:    loadClientMqttTopics(n),
			KNX: KnxClientGAs{
				Enabled: envBool(fmt.Sprintf("%sCLIENT_%d_KNX_ENABLED", prefix, n), false),
				Volume:  envString(fmt.Sprintf("%sCLIENT_%d_KNX_VOLUME", prefix, n), ""),
				Mute:    envString(fmt.Sprintf("%sCLIENT_%d_KNX_MUTE", prefix, n), ""),
				Latency: envString(fmt.Sprintf("%sCLIENT_%d_KNX_LATENCY", prefix, n), ""),
				Zone:    envString(fmt.Sprintf("%sCLIENT_%d_KNX_ZONE", prefix, n), ""),
			},
		}
		clients = append(clients, cc)
		return true
	})
	return clients
}

// loadClientMqttTopics collects CLIENT_N_MQTT_<KEY>_TOPIC overrides into a
// map, keeping the exact template strings configuration-driven rather than
// hardcoded (spec §9 Open Questions).
func loadClientMqttTopics(n int) map[string]string {
	topics := make(map[string]string)
	for _, key := range []string{"VOLUME", "MUTE", "LATENCY", "ZONE", "CONNECTED"} {
		envKey := fmt.Sprintf("%sCLIENT_%d_MQTT_%s_TOPIC", prefix, n, key)
		if v, ok := envRequired(envKey); ok {
			topics[strings.ToLower(key)] = v
		}
	}
	return topics
}

// loadZoneMqttTopics collects ZONE_N_MQTT_<KEY>_TOPIC overrides, mirroring
// loadClientMqttTopics for zone-scoped control/status topics.
func loadZoneMqttTopics(n int) map[string]string {
	topics := make(map[string]string)
	for _, key := range []string{"VOLUME", "MUTE", "PLAY", "PAUSE", "STOP", "NEXT", "PREVIOUS",
		"REPEAT", "SHUFFLE", "PLAYLIST", "TRACK", "STATE", "PROGRESS"} {
		envKey := fmt.Sprintf("%sZONE_%d_MQTT_%s_TOPIC", prefix, n, key)
		if v, ok := envRequired(envKey); ok {
			topics[strings.ToLower(key)] = v
		}
	}
	return topics
}

func loadRadio() []RadioConfig {
	var stations []RadioConfig
	enumerate(func(n int) bool {
		nameKey := fmt.Sprintf("%sRADIO_%d_NAME", prefix, n)
		name, ok := envRequired(nameKey)
		if !ok {
			return false
		}
		url, _ := envRequired(fmt.Sprintf("%sRADIO_%d_URL", prefix, n))
		stations = append(stations, RadioConfig{
			Index:       n,
			Name:        name,
			URL:         url,
			Description: envString(fmt.Sprintf("%sRADIO_%d_DESCRIPTION", prefix, n), ""),
			Enabled:     envBool(fmt.Sprintf("%sRADIO_%d_ENABLED", prefix, n), true),
		})
		return true
	})
	return stations
}
