package fanout_test

import (
	"context"
	"testing"
	"time"

	"github.com/metaneutrons/snapdog2-sub015/internal/fanout"
	"github.com/metaneutrons/snapdog2-sub015/internal/model"
	"github.com/metaneutrons/snapdog2-sub015/internal/store"
)

func newTestFanout(t *testing.T) (*fanout.Fanout, *store.ZoneStore, *store.ClientStore, *store.GlobalStore) {
	t.Helper()
	zones := store.NewZoneStore([]model.Zone{{ZoneIndex: 1, Name: "Living Room"}})
	clients := store.NewClientStore([]model.Client{{ClientIndex: 1, ZoneIndex: 1}})
	global := store.NewGlobalStore(model.GlobalState{})
	f := fanout.New(zones, clients, global)
	return f, zones, clients, global
}

func TestSeedEmitsEventForEveryEntity(t *testing.T) {
	f, zones, _, _ := newTestFanout(t)
	zones.Mutate(1, func(z *model.Zone) error { z.Volume = 42; return nil })

	ch := f.Subscribe("test")
	defer f.Unsubscribe("test")

	f.Seed()

	seen := false
	deadline := time.After(time.Second)
	for !seen {
		select {
		case ev := <-ch:
			if ev.Kind == model.StatusVolume && ev.TargetIndex == 1 {
				seen = true
			}
		case <-deadline:
			t.Fatal("timed out waiting for seeded VOLUME_STATUS")
		}
	}
}

func TestVolumeChangeIsCoalescedWithinWindow(t *testing.T) {
	f, zones, _, _ := newTestFanout(t)
	ch := f.Subscribe("test")
	defer f.Unsubscribe("test")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go f.Run(ctx)

	zones.Mutate(1, func(z *model.Zone) error { z.Volume = 10; return nil })
	zones.Mutate(1, func(z *model.Zone) error { z.Volume = 20; return nil })
	zones.Mutate(1, func(z *model.Zone) error { z.Volume = 30; return nil })

	select {
	case ev := <-ch:
		if ev.Kind != model.StatusVolume {
			t.Fatalf("expected VOLUME_STATUS, got %s", ev.Kind)
		}
		if ev.Payload.(int) != 30 {
			t.Errorf("payload = %v, want 30 (only the latest value in the window)", ev.Payload)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for coalesced volume event")
	}

	select {
	case ev := <-ch:
		t.Fatalf("expected no second event, got %+v", ev)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestClientMuteChangeIsDetected(t *testing.T) {
	f, _, clients, _ := newTestFanout(t)
	ch := f.Subscribe("test")
	defer f.Unsubscribe("test")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go f.Run(ctx)

	clients.Mutate(1, func(c *model.Client) error { c.Mute = true; return nil })

	select {
	case ev := <-ch:
		if ev.Kind != model.StatusClientMute || ev.Payload.(bool) != true {
			t.Errorf("unexpected event: %+v", ev)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for CLIENT_MUTE_STATUS")
	}
}
