// Package realtime pushes booking activity to connected admin dashboards over
// WebSocket.
package realtime

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"
)

const broadcastBuffer = 256

// Message is the frame sent to dashboard clients.
type Message struct {
	Type      string      `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data,omitempty"`
}

// Hub fans out messages to every registered client.
type Hub struct {
	clients    map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte
	done       chan struct{}

	mu     sync.RWMutex
	logger *zap.Logger
}

// NewHub creates a Hub. Call Run to start it.
func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, broadcastBuffer),
		done:       make(chan struct{}),
		logger:     logger.Named("realtime"),
	}
}

// Run processes registrations and broadcasts until ctx is cancelled, then
// closes every client.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for c := range h.clients {
				close(c.send)
				delete(h.clients, c)
			}
			h.mu.Unlock()
			return

		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = struct{}{}
			h.mu.Unlock()
			h.logger.Info("dashboard client connected", zap.String("user_id", c.userID))

		case c := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
			}
			h.mu.Unlock()
			h.logger.Info("dashboard client disconnected", zap.String("user_id", c.userID))

		case data := <-h.broadcast:
			h.mu.Lock()
			for c := range h.clients {
				select {
				case c.send <- data:
				default:
					// Slow consumer; drop it rather than stall everyone else.
					close(c.send)
					delete(h.clients, c)
				}
			}
			h.mu.Unlock()
		}
	}
}

// Broadcast queues a message for every client. It never blocks; when the
// queue is full the message is dropped.
func (h *Hub) Broadcast(eventType string, payload interface{}) {
	data, err := json.Marshal(Message{Type: eventType, Timestamp: time.Now().UTC(), Data: payload})
	if err != nil {
		h.logger.Error("failed to marshal realtime message", zap.String("type", eventType), zap.Error(err))
		return
	}
	select {
	case h.broadcast <- data:
	default:
		h.logger.Warn("realtime broadcast queue full, dropping message", zap.String("type", eventType))
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
