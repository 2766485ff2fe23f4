package snapcast_test

import (
	"context"
	"testing"

	"github.com/metaneutrons/snapdog2-sub015/internal/config"
	"github.com/metaneutrons/snapdog2-sub015/internal/model"
	"github.com/metaneutrons/snapdog2-sub015/internal/snapcast"
	"github.com/metaneutrons/snapdog2-sub015/internal/store"
)

func TestReconcilerSyncBindsKnownClientsByMAC(t *testing.T) {
	zones := store.NewZoneStore([]model.Zone{{ZoneIndex: 1, Name: "Living Room"}})
	clients := store.NewClientStore([]model.Client{{ClientIndex: 1, Name: "Speaker", MAC: "AA:BB:CC:DD:EE:FF", ZoneIndex: 1}})
	r := snapcast.NewReconciler(zones, clients, nil, []config.ClientConfig{{Index: 1, MAC: "AA:BB:CC:DD:EE:FF"}})

	st := snapcast.Status{Server: snapcast.ServerInfo{Groups: []snapcast.Group{
		{
			ID:       "g1",
			StreamID: "stream-radio",
			Clients: []snapcast.Client{
				{
					ID:        "sc-1",
					Connected: true,
					Config:    snapcast.ClientConfig{Volume: snapcast.Volume{Percent: 42}},
					Host:      snapcast.Host{MAC: "aa:bb:cc:dd:ee:ff"},
				},
			},
		},
	}}}

	r.Sync(context.Background(), st)

	cl, ok := clients.Get(1)
	if !ok {
		t.Fatal("client 1 not found")
	}
	if cl.SnapcastClientID != "sc-1" || cl.Volume != 42 || !cl.Connected {
		t.Errorf("unexpected client after sync: %+v", cl)
	}

	z, ok := zones.Get(1)
	if !ok {
		t.Fatal("zone 1 not found")
	}
	if z.SnapcastGroupID != "g1" || z.StreamID != "stream-radio" {
		t.Errorf("unexpected zone after sync: %+v", z)
	}
	if len(z.ClientIndices) != 1 || z.ClientIndices[0] != 1 {
		t.Errorf("unexpected zone member indices: %v", z.ClientIndices)
	}
}

func TestReconcilerSyncIgnoresUnknownMAC(t *testing.T) {
	zones := store.NewZoneStore([]model.Zone{{ZoneIndex: 1, Name: "Living Room"}})
	clients := store.NewClientStore(nil)
	r := snapcast.NewReconciler(zones, clients, nil, nil)

	st := snapcast.Status{Server: snapcast.ServerInfo{Groups: []snapcast.Group{
		{ID: "g1", Clients: []snapcast.Client{{ID: "sc-1", Host: snapcast.Host{MAC: "00:00:00:00:00:00"}}}},
	}}}

	// Should not panic and should leave the zone unbound (no known members).
	r.Sync(context.Background(), st)

	z, _ := zones.Get(1)
	if z.SnapcastGroupID != "" {
		t.Errorf("expected zone to remain unbound, got group id %q", z.SnapcastGroupID)
	}
}

func TestReconcilerHandleNotificationUpdatesClientVolume(t *testing.T) {
	zones := store.NewZoneStore([]model.Zone{{ZoneIndex: 1}})
	clients := store.NewClientStore([]model.Client{{ClientIndex: 1, MAC: "AA:BB:CC:DD:EE:FF", ZoneIndex: 1}})
	r := snapcast.NewReconciler(zones, clients, nil, []config.ClientConfig{{Index: 1, MAC: "AA:BB:CC:DD:EE:FF"}})

	r.Sync(context.Background(), snapcast.Status{Server: snapcast.ServerInfo{Groups: []snapcast.Group{
		{ID: "g1", Clients: []snapcast.Client{{ID: "sc-1", Host: snapcast.Host{MAC: "AA:BB:CC:DD:EE:FF"}}}},
	}}})

	r.HandleNotification(snapcast.Notification{
		Method: snapcast.NotifyClientVolumeChanged,
		Params: []byte(`{"id":"sc-1","volume":{"percent":77,"muted":true}}`),
	})

	cl, _ := clients.Get(1)
	if cl.Volume != 77 || !cl.Mute {
		t.Errorf("unexpected client after notification: %+v", cl)
	}
}
