package ws

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	// SnapDog is consumed by first-party web/mobile clients behind the same
	// reverse proxy as the REST API; origin checking is left to that proxy.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Handler upgrades /hubs/snapdog connections and spawns their read/write
// pumps against h.
func (h *Hub) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		wsConn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		c := newConn(uuid.NewString(), wsConn)
		h.register(c)

		go c.writePump()
		c.readPump(h)
	}
}
