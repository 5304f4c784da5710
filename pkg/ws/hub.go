// Package ws provides a WebSocket hub that pushes block-list change
// events to connected extension clients so open pages re-evaluate
// without polling.
package ws

import (
	"fmt"
	"sync"
	"time"

	"github.com/VigiaStudios/VigiaGuardGo/pkg/logger"
	"github.com/goccy/go-json"
)

// Event is the payload broadcast to connected clients
type Event struct {
	Action    string    `json:"action"`
	UUID      string    `json:"uuid"`
	Timestamp time.Time `json:"timestamp"`
}

// Hub manages WebSocket connections and broadcasting
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex
}

// NewHub creates a new WebSocket hub
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Run starts the hub's main loop
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			total := len(h.clients)
			h.mu.Unlock()
			logger.Info(fmt.Sprintf("Cliente WS conectado. Total: %d", total), "WSHub")

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			total := len(h.clients)
			h.mu.Unlock()
			logger.Info(fmt.Sprintf("Cliente WS desconectado. Total: %d", total), "WSHub")

		case message := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					close(client.send)
					delete(h.clients, client)
				}
			}
			h.mu.Unlock()
		}
	}
}

// BlockListChanged broadcasts a block-list change to all clients.
// Implements the web.Notifier interface.
func (h *Hub) BlockListChanged(uuid, action string) {
	event := Event{
		Action:    action,
		UUID:      uuid,
		Timestamp: time.Now(),
	}

	data, err := json.Marshal(event)
	if err != nil {
		logger.Error(fmt.Sprintf("Error serializando evento WS: %v", err), "WSHub")
		return
	}

	h.broadcast <- data
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
