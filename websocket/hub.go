package websocket

import (
	"log"
	"sync"

	"github.com/google/uuid"
)

// Conn is the slice of a live websocket connection the hub needs. The fiber
// contrib *websocket.Conn satisfies it.
type Conn interface {
	WriteJSON(v interface{}) error
	Close() error
}

// Event is the envelope pushed to live connections.
type Event struct {
	Event   string      `json:"event"`
	Payload interface{} `json:"payload"`
}

// Hub is the connection registry: one live connection per user, replaced on
// re-register. Notify is best-effort; offline users are silently skipped.
type Hub struct {
	mu      sync.RWMutex
	clients map[uuid.UUID]Conn
}

func NewHub() *Hub {
	return &Hub{clients: make(map[uuid.UUID]Conn)}
}

func (h *Hub) Register(userID uuid.UUID, conn Conn) {
	h.mu.Lock()
	if old, ok := h.clients[userID]; ok && old != conn {
		old.Close()
	}
	h.clients[userID] = conn
	h.mu.Unlock()
	log.Printf("Client registered: %s", userID)
}

// Remove drops the registration only if conn is still the registered one, so
// a reconnect racing a disconnect does not lose the fresh connection.
func (h *Hub) Remove(userID uuid.UUID, conn Conn) {
	h.mu.Lock()
	if cur, ok := h.clients[userID]; ok && cur == conn {
		delete(h.clients, userID)
	}
	h.mu.Unlock()
	log.Printf("Client unregistered: %s", userID)
}

func (h *Hub) Lookup(userID uuid.UUID) (Conn, bool) {
	h.mu.RLock()
	conn, ok := h.clients[userID]
	h.mu.RUnlock()
	return conn, ok
}

// Notify pushes an event to userID's live connection, if any. A write
// failure evicts the dead connection.
func (h *Hub) Notify(userID uuid.UUID, event string, payload interface{}) {
	conn, ok := h.Lookup(userID)
	if !ok {
		return
	}
	if err := conn.WriteJSON(Event{Event: event, Payload: payload}); err != nil {
		log.Printf("Error sending %s to client %s: %v", event, userID, err)
		conn.Close()
		h.Remove(userID, conn)
	}
}

// MainHub is the registry the HTTP handlers notify through. It is swapped
// out in tests.
var MainHub = NewHub()
