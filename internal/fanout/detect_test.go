package fanout

import (
	"testing"

	"github.com/metaneutrons/snapdog2-sub015/internal/model"
)

func TestZoneEventsEmitsTrackMetadataOnChange(t *testing.T) {
	old := model.Zone{ZoneIndex: 1}
	next := model.Zone{ZoneIndex: 1, CurrentTrack: model.Track{ID: "t1", Title: "One", Artist: "A"}}

	evs := zoneEvents(old, next, 1)

	found := false
	for _, ev := range evs {
		if ev.Kind == model.StatusTrackMetadata {
			found = true
			track, ok := ev.Payload.(model.Track)
			if !ok || track.Title != "One" {
				t.Errorf("unexpected TRACK_METADATA payload: %+v", ev.Payload)
			}
		}
	}
	if !found {
		t.Fatal("expected a TRACK_METADATA event on track change")
	}
}

func TestZoneEventsOmitsTrackMetadataWhenUnchanged(t *testing.T) {
	track := model.Track{ID: "t1", Title: "One", Artist: "A", Album: "B", CoverURL: "u", Source: model.SourceRadio}
	old := model.Zone{ZoneIndex: 1, CurrentTrack: track, Volume: 10}
	next := model.Zone{ZoneIndex: 1, CurrentTrack: track, Volume: 20}

	evs := zoneEvents(old, next, 1)

	for _, ev := range evs {
		if ev.Kind == model.StatusTrackMetadata {
			t.Fatalf("expected no TRACK_METADATA event when track fields are unchanged, got %+v", ev)
		}
	}
}
