package sysstats_test

import (
	"context"
	"testing"
	"time"

	"github.com/metaneutrons/snapdog2-sub015/internal/model"
	"github.com/metaneutrons/snapdog2-sub015/internal/sysstats"
	"github.com/metaneutrons/snapdog2-sub015/internal/store"
)

func TestRunPopulatesServerStatsWithinOneTick(t *testing.T) {
	global := store.NewGlobalStore(model.GlobalState{})
	svc := sysstats.New(global, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go svc.Run(ctx)

	deadline := time.After(2 * time.Second)
	for global.Version() == 0 {
		select {
		case <-deadline:
			t.Fatal("timed out waiting for the first sample to land")
		case <-time.After(10 * time.Millisecond):
		}
	}

	if global.Get().ServerStats.UptimeMs < 0 {
		t.Errorf("uptime = %d, want >= 0", global.Get().ServerStats.UptimeMs)
	}
}

func TestOnlineIsFalseWhenEitherUpstreamIsDown(t *testing.T) {
	global := store.NewGlobalStore(model.GlobalState{})
	up := func() bool { return true }
	down := func() bool { return false }
	svc := sysstats.New(global, up, down)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go svc.Run(ctx)

	deadline := time.After(2 * time.Second)
	for global.Version() == 0 {
		select {
		case <-deadline:
			t.Fatal("timed out waiting for the first sample to land")
		case <-time.After(10 * time.Millisecond):
		}
	}

	if global.Get().Online {
		t.Error("Online = true, want false when mqttUp reports down")
	}
}
