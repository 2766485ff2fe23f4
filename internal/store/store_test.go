package store_test

import (
	"testing"

	"github.com/metaneutrons/snapdog2-sub015/internal/model"
	"github.com/metaneutrons/snapdog2-sub015/internal/store"
)

func newTestZone(idx int) model.Zone {
	return model.Zone{ZoneIndex: idx, Name: "Zone", State: model.Stopped, Volume: 50}
}

func TestZoneStoreMutatePublishesChangeWithIncreasingVersion(t *testing.T) {
	zs := store.NewZoneStore([]model.Zone{newTestZone(1)})
	ch := zs.Subscribe("test")
	defer zs.Unsubscribe("test")

	_, _, err := zs.Mutate(1, func(z *model.Zone) error {
		z.Volume = 80
		return nil
	})
	if err != nil {
		t.Fatalf("mutate: %v", err)
	}
	_, _, err = zs.Mutate(1, func(z *model.Zone) error {
		z.Volume = 90
		return nil
	})
	if err != nil {
		t.Fatalf("mutate: %v", err)
	}

	first := <-ch
	second := <-ch

	if first.Version >= second.Version {
		t.Errorf("expected strictly increasing versions, got %d then %d", first.Version, second.Version)
	}
	if first.New.Volume != 80 || second.New.Volume != 90 {
		t.Errorf("unexpected volumes: %d, %d", first.New.Volume, second.New.Volume)
	}
	if second.Old.Volume != 80 {
		t.Errorf("expected second.Old.Volume == 80, got %d", second.Old.Volume)
	}
}

func TestZoneStoreMutateUnknownIndexReturnsNotFound(t *testing.T) {
	zs := store.NewZoneStore([]model.Zone{newTestZone(1)})
	_, _, err := zs.Mutate(99, func(z *model.Zone) error { return nil })
	if err == nil {
		t.Fatal("expected error for unknown zone index")
	}
}

func TestZoneStoreGetAllReturnsSnapshotsNotReferences(t *testing.T) {
	zs := store.NewZoneStore([]model.Zone{newTestZone(1), newTestZone(2)})
	all := zs.GetAll()
	if len(all) != 2 {
		t.Fatalf("expected 2 zones, got %d", len(all))
	}
	all[0].Volume = 999
	again, _ := zs.Get(all[0].ZoneIndex)
	if again.Volume == 999 {
		t.Errorf("GetAll snapshot aliased store state")
	}
}

func TestGlobalStoreMutate(t *testing.T) {
	gs := store.NewGlobalStore(model.GlobalState{Version: "1.0.0"})
	_, new_, err := gs.Mutate(func(g *model.GlobalState) error {
		g.Online = true
		return nil
	})
	if err != nil {
		t.Fatalf("mutate: %v", err)
	}
	if !new_.Online {
		t.Errorf("expected Online true")
	}
	if gs.Version() != 1 {
		t.Errorf("expected version 1, got %d", gs.Version())
	}
}
