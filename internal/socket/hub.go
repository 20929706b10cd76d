// internal/socket/hub.go
package socket

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Event types pushed to clients.
const (
	EventInvitationReceived  = "INVITATION_RECEIVED"
	EventInvitationResponded = "INVITATION_RESPONDED"
	EventRemovedFromFleet    = "REMOVED_FROM_FLEET"
	EventFleetDeleted        = "FLEET_DELETED"
)

type Event struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// Conn is the subset of *websocket.Conn the hub writes to.
type Conn interface {
	WriteMessage(messageType int, data []byte) error
	Close() error
}

type client struct {
	conn Conn
	mu   sync.Mutex // one writer at a time per connection
}

// Hub keeps one connection per user email.
type Hub struct {
	clients map[string]*client
	mu      sync.RWMutex
	log     *zap.Logger
}

func NewHub(log *zap.Logger) *Hub {
	if log == nil {
		log = zap.NewNop()
	}
	return &Hub{
		clients: make(map[string]*client),
		log:     log.With(zap.String("component", "socket")),
	}
}

// Register replaces and closes any earlier connection for email.
func (h *Hub) Register(email string, conn Conn) {
	h.mu.Lock()
	old, ok := h.clients[email]
	h.clients[email] = &client{conn: conn}
	h.mu.Unlock()

	if ok && old.conn != conn {
		_ = old.conn.Close()
	}
	h.log.Info("websocket client registered", zap.String("email", email))
}

// Unregister removes conn if it is still the registered connection for email.
func (h *Hub) Unregister(email string, conn Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if c, ok := h.clients[email]; ok && c.conn == conn {
		delete(h.clients, email)
		h.log.Info("websocket client unregistered", zap.String("email", email))
	}
}

func (h *Hub) Connected(email string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.clients[email]
	return ok
}

// Send writes a text message to email. An offline user is not an error.
func (h *Hub) Send(email string, message []byte) error {
	h.mu.RLock()
	c, ok := h.clients[email]
	h.mu.RUnlock()
	if !ok {
		h.log.Debug("websocket client not connected", zap.String("email", email))
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteMessage(websocket.TextMessage, message)
}

func (h *Hub) Notify(email string, event Event) error {
	msg, err := json.Marshal(event)
	if err != nil {
		return err
	}
	if err := h.Send(email, msg); err != nil {
		h.log.Warn("websocket push failed", zap.String("email", email), zap.String("event", event.Type), zap.Error(err))
		return err
	}
	return nil
}
