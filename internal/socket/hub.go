// server/internal/socket/hub.go
package socket

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/gorilla/websocket"
)

// Event is one push to a dashboard, e.g. a new delivery or a correction
// request changing state.
type Event struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
}

// Event types pushed over the hub.
const (
	EventDeliveryRecorded    = "delivery_recorded"
	EventCorrectionRequested = "correction_requested"
	EventCorrectionReviewed  = "correction_reviewed"
)

type client struct {
	conn *websocket.Conn
	role string
	// Serializes writes: gorilla/websocket allows one concurrent
	// writer per connection, and two handlers can push to the same
	// dashboard at once.
	mu sync.Mutex
}

func (c *client) write(message []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteMessage(websocket.TextMessage, message)
}

// Hub tracks connected WebSocket clients by user id and keeps the role
// alongside each connection so events can be pushed to every admin and
// commissioner dashboard at once.
type Hub struct {
	clients map[string]*client
	mu      sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]*client),
	}
}

// Register adds a client to the Hub, replacing any previous connection
// for the same user.
func (h *Hub) Register(userID, role string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[userID] = &client{conn: conn, role: role}
	log.Printf("WebSocket client registered: %s (%s)", userID, role)
}

// Unregister removes a client from the Hub.
func (h *Hub) Unregister(userID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[userID]; ok {
		delete(h.clients, userID)
		log.Printf("WebSocket client unregistered: %s", userID)
	}
}

// Send pushes an event to one user. An offline user is not an error.
func (h *Hub) Send(userID string, event Event) error {
	h.mu.RLock()
	defer h.mu.RUnlock()

	cl, ok := h.clients[userID]
	if !ok {
		return nil
	}

	message, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return cl.write(message)
}

// BroadcastToRoles pushes an event to every connected client holding one
// of the given roles. Write failures are logged and skipped; the dead
// connection is reaped by its own read loop.
func (h *Hub) BroadcastToRoles(event Event, roles ...string) {
	message, err := json.Marshal(event)
	if err != nil {
		log.Printf("Failed to marshal WebSocket event: %v", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for userID, cl := range h.clients {
		for _, role := range roles {
			if cl.role == role {
				if err := cl.write(message); err != nil {
					log.Printf("Failed to push event to %s: %v", userID, err)
				}
				break
			}
		}
	}
}
