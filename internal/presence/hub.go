package presence

import (
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// changeSignal is the coarse "something changed, re-fetch" message pushed
// to subscribers. It carries no record data.
type changeSignal struct {
	Type string `json:"type"`
}

// Hub fans a change signal out to websocket subscribers after every
// heartbeat, so clients can re-query the online list without waiting for
// their next poll.
type Hub struct {
	mu    sync.Mutex
	conns map[*websocket.Conn]bool
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{conns: make(map[*websocket.Conn]bool)}
}

// Subscribers returns the number of connected clients.
func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.conns)
}

// Broadcast pushes a change signal to every subscriber, dropping
// connections that fail to write.
func (h *Hub) Broadcast() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for conn := range h.conns {
		if err := conn.WriteJSON(changeSignal{Type: "presence_changed"}); err != nil {
			conn.Close()
			delete(h.conns, conn)
		}
	}
}

// HandleWS upgrades the request and holds the connection open until the
// client goes away. Incoming messages are ignored; this is a one-way feed.
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("presence: websocket upgrade: %v", err)
		return
	}

	h.mu.Lock()
	h.conns[conn] = true
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		delete(h.conns, conn)
		h.mu.Unlock()
		conn.Close()
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("presence: websocket read: %v", err)
			}
			return
		}
	}
}
