package ws

import (
	"encoding/json"
	"sync"

	"taskboard/internal/domain"
	"taskboard/internal/logger"
)

// Hub fans task events out to every connected client. It implements
// service.Notifier.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
	closed  bool
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[*Client]struct{}),
	}
}

func (h *Hub) Register(c *Client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.clients[c] = struct{}{}
	logger.Debug("ws client registered", "client", c.ID, "clients", len(h.clients))
	return true
}

func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.Send)
		logger.Debug("ws client unregistered", "client", c.ID, "clients", len(h.clients))
	}
}

// Publish never blocks: a client whose send buffer is full is dropped.
func (h *Hub) Publish(ev domain.Event) {
	msg, err := json.Marshal(ev)
	if err != nil {
		logger.Error("ws: marshal event", "error", err, "type", ev.Type)
		return
	}
	h.Broadcast(msg)
}

func (h *Hub) Broadcast(msg []byte) {
	var slow []*Client

	h.mu.RLock()
	for c := range h.clients {
		select {
		case c.Send <- msg:
		default:
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range slow {
		logger.Warn("ws: dropping slow client", "client", c.ID)
		h.Unregister(c)
	}
}

// SendTo queues msg for one registered client without blocking.
func (h *Hub) SendTo(c *Client, msg []byte) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if _, ok := h.clients[c]; !ok {
		return false
	}
	select {
	case c.Send <- msg:
		return true
	default:
		return false
	}
}

func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close disconnects every client and refuses new registrations.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for c := range h.clients {
		delete(h.clients, c)
		close(c.Send)
	}
}
