package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"
	"sync"

	"github.com/metaneutrons/snapdog2-sub015/internal/fanout"
	"github.com/metaneutrons/snapdog2-sub015/internal/model"
)

const hubSubscriberID = "ws-hub"

const systemGroup = "system"

// outboundMessage is the JSON shape delivered to every matching WebSocket
// connection: the event kind doubles as the message name (spec §6).
type outboundMessage struct {
	Kind        model.StatusKind `json:"kind"`
	Entity      model.EntityKind `json:"entity"`
	TargetIndex int              `json:"targetIndex,omitempty"`
	Payload     interface{}      `json:"payload"`
	Version     uint64           `json:"version"`
}

// Hub fans fanout.StatusEvents out to every subscribed WebSocket connection,
// filtering per connection by group membership.
type Hub struct {
	fanout *fanout.Fanout

	mu    sync.Mutex
	conns map[*conn]struct{}
}

// NewHub creates a Hub reading from f. Call Run to start draining events.
func NewHub(f *fanout.Fanout) *Hub {
	return &Hub{fanout: f, conns: make(map[*conn]struct{})}
}

func (h *Hub) register(c *conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.conns[c] = struct{}{}
}

func (h *Hub) unregister(c *conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.conns[c]; ok {
		delete(h.conns, c)
		close(c.send)
	}
}

// Run subscribes to the fan-out and broadcasts until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	ch := h.fanout.Subscribe(hubSubscriberID)
	defer h.fanout.Unsubscribe(hubSubscriberID)

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-ch:
			if !ok {
				return
			}
			h.broadcast(ev)
		}
	}
}

func (h *Hub) broadcast(ev model.StatusEvent) {
	group := groupFor(ev)
	payload, err := json.Marshal(outboundMessage{
		Kind:        ev.Kind,
		Entity:      ev.Entity,
		TargetIndex: ev.TargetIndex,
		Payload:     ev.Payload,
		Version:     ev.Version,
	})
	if err != nil {
		slog.Error("ws: failed to marshal status event", "kind", ev.Kind, "error", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.conns {
		if c.subscribedTo(group) {
			c.enqueue(payload)
		}
	}
}

func groupFor(ev model.StatusEvent) string {
	switch ev.Entity {
	case model.EntityZone:
		return "zone_" + strconv.Itoa(ev.TargetIndex)
	case model.EntityClient:
		return "client_" + strconv.Itoa(ev.TargetIndex)
	default:
		return systemGroup
	}
}
