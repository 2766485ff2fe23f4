package ws_test

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	gorillaws "github.com/gorilla/websocket"

	"github.com/metaneutrons/snapdog2-sub015/internal/fanout"
	"github.com/metaneutrons/snapdog2-sub015/internal/model"
	"github.com/metaneutrons/snapdog2-sub015/internal/store"
	"github.com/metaneutrons/snapdog2-sub015/internal/ws"
)

func newTestHub(t *testing.T) (*ws.Hub, *fanout.Fanout, *store.ZoneStore, func()) {
	t.Helper()
	zones := store.NewZoneStore([]model.Zone{{ZoneIndex: 1, Name: "Living Room"}})
	clients := store.NewClientStore([]model.Client{{ClientIndex: 1, ZoneIndex: 1}})
	global := store.NewGlobalStore(model.GlobalState{})
	f := fanout.New(zones, clients, global)
	hub := ws.NewHub(f)

	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	go f.Run(ctx)

	return hub, f, zones, cancel
}

func dial(t *testing.T, srv *httptest.Server) *gorillaws.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	c, _, err := gorillaws.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	return c
}

func TestConnectionOnlyReceivesSubscribedGroupEvents(t *testing.T) {
	hub, _, zones, cancel := newTestHub(t)
	defer cancel()

	srv := httptest.NewServer(hub.Handler())
	defer srv.Close()

	c := dial(t, srv)
	defer c.Close()

	sub, _ := json.Marshal(map[string]string{"action": "subscribe", "group": "zone_1"})
	if err := c.WriteMessage(gorillaws.TextMessage, sub); err != nil {
		t.Fatalf("write subscribe frame: %v", err)
	}
	time.Sleep(50 * time.Millisecond) // let readPump process the subscribe frame

	zones.Mutate(1, func(z *model.Zone) error { z.Volume = 77; return nil })

	_ = c.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := c.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	var msg struct {
		Kind        string `json:"kind"`
		TargetIndex int    `json:"targetIndex"`
	}
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if msg.Kind != string(model.StatusVolume) || msg.TargetIndex != 1 {
		t.Errorf("unexpected message: %+v", msg)
	}
}

func TestUnsubscribedConnectionReceivesNothing(t *testing.T) {
	hub, _, zones, cancel := newTestHub(t)
	defer cancel()

	srv := httptest.NewServer(hub.Handler())
	defer srv.Close()

	c := dial(t, srv)
	defer c.Close()

	zones.Mutate(1, func(z *model.Zone) error { z.Volume = 88; return nil })

	_ = c.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	_, _, err := c.ReadMessage()
	if err == nil {
		t.Fatal("expected read timeout, got a message on an unsubscribed connection")
	}
}
