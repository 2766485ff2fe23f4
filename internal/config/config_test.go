package config_test

import (
	"os"
	"testing"

	"github.com/metaneutrons/snapdog2-sub015/internal/config"
)

func clearSnapdogEnv(t *testing.T) {
	t.Helper()
	for _, e := range os.Environ() {
		if len(e) > 8 && e[:8] == "SNAPDOG_" {
			key := e[:indexByte(e, '=')]
			os.Unsetenv(key)
		}
	}
}

func indexByte(s string, b byte) int {
	for i := 0; i < len(s); i++ {
		if s[i] == b {
			return i
		}
	}
	return len(s)
}

func TestLoadMissingZoneFails(t *testing.T) {
	clearSnapdogEnv(t)
	os.Setenv("SNAPDOG_SERVICES_MQTT_BROKER", "localhost")
	os.Setenv("SNAPDOG_API_AUTH_ENABLED", "false")
	defer clearSnapdogEnv(t)

	_, err := config.Load()
	if err == nil {
		t.Fatal("expected error when no zones are configured")
	}
}

func TestLoadMinimalSucceeds(t *testing.T) {
	clearSnapdogEnv(t)
	os.Setenv("SNAPDOG_API_AUTH_ENABLED", "false")
	os.Setenv("SNAPDOG_SERVICES_MQTT_BROKER", "mqtt.local")
	os.Setenv("SNAPDOG_ZONE_1_NAME", "Living Room")
	os.Setenv("SNAPDOG_CLIENT_1_NAME", "Living Room Speaker")
	os.Setenv("SNAPDOG_CLIENT_1_MAC", "aa:bb:cc:dd:ee:ff")
	defer clearSnapdogEnv(t)

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(cfg.Zones) != 1 || cfg.Zones[0].Name != "Living Room" {
		t.Errorf("unexpected zones: %+v", cfg.Zones)
	}
	if len(cfg.Clients) != 1 || cfg.Clients[0].MAC != "AA:BB:CC:DD:EE:FF" {
		t.Errorf("unexpected clients: %+v", cfg.Clients)
	}
}

func TestLoadZoneEnumerationStopsAtGap(t *testing.T) {
	clearSnapdogEnv(t)
	os.Setenv("SNAPDOG_API_AUTH_ENABLED", "false")
	os.Setenv("SNAPDOG_SERVICES_MQTT_BROKER", "mqtt.local")
	os.Setenv("SNAPDOG_ZONE_1_NAME", "Living Room")
	os.Setenv("SNAPDOG_ZONE_3_NAME", "Should Not Appear")
	defer clearSnapdogEnv(t)

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(cfg.Zones) != 1 {
		t.Errorf("expected enumeration to stop at the gap after zone 1, got %d zones", len(cfg.Zones))
	}
}

func TestLoadClientDefaultZoneOutOfRangeFails(t *testing.T) {
	clearSnapdogEnv(t)
	os.Setenv("SNAPDOG_API_AUTH_ENABLED", "false")
	os.Setenv("SNAPDOG_SERVICES_MQTT_BROKER", "mqtt.local")
	os.Setenv("SNAPDOG_ZONE_1_NAME", "Living Room")
	os.Setenv("SNAPDOG_CLIENT_1_NAME", "Speaker")
	os.Setenv("SNAPDOG_CLIENT_1_MAC", "AA:BB:CC:DD:EE:FF")
	os.Setenv("SNAPDOG_CLIENT_1_DEFAULT_ZONE", "5")
	defer clearSnapdogEnv(t)

	_, err := config.Load()
	if err == nil {
		t.Fatal("expected error for out-of-range default zone")
	}
}

func TestLoadAPIKeysUnionsSingleAndIndexed(t *testing.T) {
	clearSnapdogEnv(t)
	os.Setenv("SNAPDOG_ZONE_1_NAME", "Living Room")
	os.Setenv("SNAPDOG_SERVICES_MQTT_BROKER", "mqtt.local")
	os.Setenv("SNAPDOG_API_APIKEY", "key-0")
	os.Setenv("SNAPDOG_API_APIKEY_1", "key-1")
	os.Setenv("SNAPDOG_API_APIKEY_2", "key-2")
	defer clearSnapdogEnv(t)

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(cfg.API.APIKeys) != 3 {
		t.Errorf("expected 3 api keys, got %d: %v", len(cfg.API.APIKeys), cfg.API.APIKeys)
	}
}
