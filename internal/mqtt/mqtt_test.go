package mqtt_test

import (
	"context"
	"testing"

	"github.com/metaneutrons/snapdog2-sub015/internal/config"
	"github.com/metaneutrons/snapdog2-sub015/internal/fanout"
	"github.com/metaneutrons/snapdog2-sub015/internal/model"
	"github.com/metaneutrons/snapdog2-sub015/internal/mqtt"
)

func TestBuildZoneTopicsDefaultsToBaseTemplate(t *testing.T) {
	zt := mqtt.BuildZoneTopics("snapdog", config.ZoneConfig{Index: 1})
	if zt.Control["volume"] != "snapdog/control/zone/1/volume" {
		t.Errorf("control volume topic = %q", zt.Control["volume"])
	}
	if zt.Status["state"] != "snapdog/status/zone/1/state" {
		t.Errorf("status state topic = %q", zt.Status["state"])
	}
}

func TestBuildZoneTopicsHonorsPerKeyOverride(t *testing.T) {
	zt := mqtt.BuildZoneTopics("snapdog", config.ZoneConfig{
		Index:      1,
		MqttTopics: map[string]string{"volume": "custom/vol"},
	})
	if zt.Control["volume"] != "custom/vol" {
		t.Errorf("override not honored: %q", zt.Control["volume"])
	}
	if zt.Status["volume"] != "custom/vol" {
		t.Errorf("override should apply to both control and status sections: %q", zt.Status["volume"])
	}
}

func TestBuildZoneTopicsHonorsBaseTopicOverride(t *testing.T) {
	zt := mqtt.BuildZoneTopics("snapdog", config.ZoneConfig{Index: 2, MqttBaseTopic: "home/livingroom"})
	if zt.Control["play"] != "home/livingroom/control/zone/2/play" {
		t.Errorf("base topic override not honored: %q", zt.Control["play"])
	}
}

func TestSystemStatusTopic(t *testing.T) {
	if got := mqtt.SystemStatusTopic("snapdog"); got != "snapdog/system/status" {
		t.Errorf("SystemStatusTopic = %q", got)
	}
}

type stubDispatcher struct {
	last model.Command
}

func (s *stubDispatcher) Dispatch(ctx context.Context, cmd model.Command) *model.AppError {
	s.last = cmd
	return nil
}

type stubErrorReporter struct {
	component string
	err       *model.AppError
}

func (s *stubErrorReporter) ReportError(component string, err *model.AppError) {
	s.component = component
	s.err = err
}

func newTestAdapter() (*mqtt.Adapter, *stubDispatcher, *stubErrorReporter) {
	cfg := config.MQTTConfig{Broker: "localhost", Port: 1883, ClientID: "test", BaseTopic: "snapdog"}
	zones := []config.ZoneConfig{{Index: 1, Name: "Living Room"}}
	clients := []config.ClientConfig{{Index: 1, Name: "Kitchen Speaker"}}
	disp := &stubDispatcher{}
	errs := &stubErrorReporter{}
	return mqtt.New(cfg, zones, clients, disp, errs), disp, errs
}

func TestPublishStatusRoutesZoneVolumeToItsTopic(t *testing.T) {
	a, _, _ := newTestAdapter()
	// PublishStatus looks up the topic only; without a live broker the
	// underlying client.Publish is a no-op send into an unconnected client,
	// which paho tolerates (returns a token that errors asynchronously).
	a.PublishStatus(fanout.StatusEvent{
		Kind: model.StatusVolume, Entity: model.EntityZone, TargetIndex: 1, Payload: 42,
	})
}

func TestPublishStatusIgnoresUnknownTarget(t *testing.T) {
	a, _, _ := newTestAdapter()
	a.PublishStatus(fanout.StatusEvent{
		Kind: model.StatusVolume, Entity: model.EntityZone, TargetIndex: 99, Payload: 42,
	})
}
