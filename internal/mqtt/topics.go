// Package mqtt implements the MQTT adapter of spec §4.6: topic expansion
// from configuration-driven templates, inbound command translation, and
// outbound status publication with retain=true.
//
// Grounded on the teacher's internal/streams (each Streamer is a small
// protocol adapter translating one external wire format into Controller
// commands); eclipse/paho.mqtt.golang is named only in other pack repos'
// go.mod manifests, not exercised by a full pack repo, but is the
// unambiguous idiomatic choice for an MQTT client in this ecosystem.
package mqtt

import (
	"fmt"
	"strconv"

	"github.com/metaneutrons/snapdog2-sub015/internal/config"
)

// ZoneTopics is the fully-expanded topic set for one zone.
type ZoneTopics struct {
	ZoneIndex int
	Control   map[string]string // key -> subscribe topic
	Status    map[string]string // key -> publish topic
}

// ClientTopics is the fully-expanded topic set for one client.
type ClientTopics struct {
	ClientIndex int
	Control     map[string]string
	Status      map[string]string
}

var zoneControlKeys = []string{"play", "pause", "stop", "next", "previous", "repeat", "shuffle", "playlist", "track", "volume", "mute"}
var zoneStatusKeys = []string{"state", "volume", "mute", "repeat", "shuffle", "playlist", "track", "metadata", "progress"}
var clientControlKeys = []string{"volume", "mute", "latency", "zone"}
var clientStatusKeys = []string{"volume", "mute", "latency", "zone", "connected"}

// buildTopics expands baseTopic/control|status/<entity>/<n>/<key> unless an
// override is present in overrides.
func buildTopics(base string, entityWord string, index int, keys []string, section string, overrides map[string]string) map[string]string {
	out := make(map[string]string, len(keys))
	for _, key := range keys {
		if v, ok := overrides[key]; ok && v != "" {
			out[key] = v
			continue
		}
		out[key] = fmt.Sprintf("%s/%s/%s/%d/%s", base, section, entityWord, index, key)
	}
	return out
}

// BuildZoneTopics expands the control/status topic set for one zone.
func BuildZoneTopics(baseTopic string, zc config.ZoneConfig) ZoneTopics {
	base := baseTopic
	if zc.MqttBaseTopic != "" {
		base = zc.MqttBaseTopic
	}
	return ZoneTopics{
		ZoneIndex: zc.Index,
		Control:   buildTopics(base, "zone", zc.Index, zoneControlKeys, "control", zc.MqttTopics),
		Status:    buildTopics(base, "zone", zc.Index, zoneStatusKeys, "status", zc.MqttTopics),
	}
}

// BuildClientTopics expands the control/status topic set for one client.
func BuildClientTopics(baseTopic string, cc config.ClientConfig) ClientTopics {
	base := baseTopic
	if cc.MqttBaseTopic != "" {
		base = cc.MqttBaseTopic
	}
	return ClientTopics{
		ClientIndex: cc.Index,
		Control:     buildTopics(base, "client", cc.Index, clientControlKeys, "control", cc.MqttTopics),
		Status:      buildTopics(base, "client", cc.Index, clientStatusKeys, "status", cc.MqttTopics),
	}
}

// SystemStatusTopic is the last-will / online-offline topic (spec §4.6).
func SystemStatusTopic(baseTopic string) string { return baseTopic + "/system/status" }

func parseBool(s string) (bool, error) {
	switch s {
	case "true", "on", "1", "ON", "On":
		return true, nil
	case "false", "off", "0", "OFF", "Off":
		return false, nil
	}
	return false, fmt.Errorf("not a boolean: %q", s)
}

func parseInt(s string) (int, error) { return strconv.Atoi(s) }
