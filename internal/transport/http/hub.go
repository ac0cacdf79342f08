package http

import (
	"log"
	"sync"

	"github.com/gorilla/websocket"
)

type outboundMessage struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// client is one connected participant. All writes to the connection go
// through the send channel and a single writer goroutine.
type client struct {
	id   string
	conn *websocket.Conn

	mu     sync.Mutex
	send   chan outboundMessage
	closed bool
}

func newClient(id string, conn *websocket.Conn) *client {
	return &client{
		id:   id,
		conn: conn,
		send: make(chan outboundMessage, 32),
	}
}

func (c *client) writeLoop() {
	for msg := range c.send {
		if err := c.conn.WriteJSON(msg); err != nil {
			log.Printf("ws write error for %s: %v", c.id, err)
			return
		}
	}
}

func (c *client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// enqueue never blocks; when the buffer is full the oldest pending message
// is dropped so a slow client cannot stall a room's broadcast.
func (c *client) enqueue(msg outboundMessage) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.send <- msg:
	default:
		select {
		case <-c.send:
		default:
		}
		select {
		case c.send <- msg:
		default:
		}
	}
}

// Hub tracks connected participants by identifier and implements
// app.Notifier on top of their send queues.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*client
}

func NewHub() *Hub {
	return &Hub{clients: make(map[string]*client)}
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c.id] = c
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	if current, ok := h.clients[c.id]; ok && current == c {
		delete(h.clients, c.id)
	}
	h.mu.Unlock()
	c.close()
}

// Broadcast delivers an event to every listed participant that is still
// connected.
func (h *Hub) Broadcast(playerIDs []string, event string, payload any) {
	msg := outboundMessage{Type: event, Payload: payload}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, id := range playerIDs {
		if c, ok := h.clients[id]; ok {
			c.enqueue(msg)
		}
	}
}

// Send delivers an event to a single participant, if connected.
func (h *Hub) Send(playerID string, event string, payload any) {
	h.mu.RLock()
	c, ok := h.clients[playerID]
	h.mu.RUnlock()
	if ok {
		c.enqueue(outboundMessage{Type: event, Payload: payload})
	}
}
