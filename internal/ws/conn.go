// Package ws implements the WebSocket push adapter (spec §6): clients connect
// to /hubs/snapdog, subscribe to one or more groups (zone_{idx}, client_{idx},
// system), and receive fan-out status events as they occur. Grounded on the
// teacher's bounded-queue-per-subscriber shape (internal/events.Bus, mirrored
// already in internal/fanout/bus.go) and its connect-loop/pump split
// (internal/snapcast/connect.go); gorilla/websocket itself is an out-of-pack
// dependency grounded only on rosschurchill-navidrome's go.mod.
package ws

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	sendQueueCapacity = 256
	writeWait         = 10 * time.Second
	pongWait          = 60 * time.Second
	pingPeriod        = (pongWait * 9) / 10
)

// conn wraps one upgraded WebSocket connection with its subscribed groups and
// a bounded outbound queue. The hub is the only writer into send; readPump
// and writePump are each conn's single reader/writer task.
type conn struct {
	id   string
	ws   *websocket.Conn
	send chan []byte

	mu     sync.Mutex
	groups map[string]struct{}
}

func newConn(id string, ws *websocket.Conn) *conn {
	return &conn{
		id:     id,
		ws:     ws,
		send:   make(chan []byte, sendQueueCapacity),
		groups: make(map[string]struct{}),
	}
}

func (c *conn) subscribe(group string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.groups[group] = struct{}{}
}

func (c *conn) unsubscribe(group string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.groups, group)
}

func (c *conn) subscribedTo(group string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.groups[group]
	return ok
}

// enqueue delivers a message non-blockingly, dropping it if the connection's
// queue is full rather than stalling the hub's broadcast loop.
func (c *conn) enqueue(payload []byte) bool {
	select {
	case c.send <- payload:
		return true
	default:
		slog.Warn("ws: connection queue full, dropping message", "conn", c.id)
		return false
	}
}

type subscribeFrame struct {
	Action string `json:"action"`
	Group  string `json:"group"`
}

func (c *conn) readPump(h *Hub) {
	defer h.unregister(c)
	c.ws.SetReadLimit(4096)
	_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			return
		}
		var frame subscribeFrame
		if err := json.Unmarshal(data, &frame); err != nil {
			continue
		}
		switch frame.Action {
		case "subscribe":
			c.subscribe(frame.Group)
		case "unsubscribe":
			c.unsubscribe(frame.Group)
		}
	}
}

func (c *conn) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	defer c.ws.Close()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.ws.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.ws.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
