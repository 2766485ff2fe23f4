package mqtt

import (
	"testing"

	"github.com/metaneutrons/snapdog2-sub015/internal/model"
)

func TestZoneControlVolumeTranslatesToSetZoneVolume(t *testing.T) {
	cmd, err := zoneCommandFromTopic(1, "volume", "37")
	if err != nil {
		t.Fatalf("translate: %v", err)
	}
	if cmd.Kind != model.CmdSetZoneVolume || cmd.Volume != 37 || cmd.ZoneIndex != 1 {
		t.Errorf("unexpected command: %+v", cmd)
	}
}

func TestZoneControlPlayTranslatesToControlAction(t *testing.T) {
	cmd, err := zoneCommandFromTopic(2, "play", "")
	if err != nil {
		t.Fatalf("translate: %v", err)
	}
	if cmd.Kind != model.CmdControl || cmd.Control != model.ActionPlay {
		t.Errorf("unexpected command: %+v", cmd)
	}
}

func TestZoneControlUnknownKeyIsRejected(t *testing.T) {
	if _, err := zoneCommandFromTopic(1, "bogus", "1"); err == nil {
		t.Error("expected an error for an unknown control key")
	}
}

func TestZoneControlMuteRejectsUnparseableBool(t *testing.T) {
	if _, err := zoneCommandFromTopic(1, "mute", "maybe"); err == nil {
		t.Error("expected an error for a non-boolean mute payload")
	}
}

func TestZoneControlRepeatParsesOnOffSpelling(t *testing.T) {
	cmd, err := zoneCommandFromTopic(1, "repeat", "ON")
	if err != nil {
		t.Fatalf("translate: %v", err)
	}
	if !cmd.Bool {
		t.Error("expected Bool=true for \"ON\"")
	}
}

func TestClientControlZoneAssignmentParsesIndex(t *testing.T) {
	cmd, err := clientCommandFromTopic(3, "zone", " 2 ")
	if err != nil {
		t.Fatalf("translate: %v", err)
	}
	if cmd.Kind != model.CmdAssignClientToZone || cmd.Index != 2 || cmd.ClientIndex != 3 {
		t.Errorf("unexpected command: %+v", cmd)
	}
}

func TestClientControlLatencyTranslatesToSetClientLatency(t *testing.T) {
	cmd, err := clientCommandFromTopic(1, "latency", "150")
	if err != nil {
		t.Fatalf("translate: %v", err)
	}
	if cmd.Kind != model.CmdSetClientLatency || cmd.Ms != 150 {
		t.Errorf("unexpected command: %+v", cmd)
	}
}

func TestClientControlUnknownKeyIsRejected(t *testing.T) {
	if _, err := clientCommandFromTopic(1, "bogus", "1"); err == nil {
		t.Error("expected an error for an unknown control key")
	}
}
