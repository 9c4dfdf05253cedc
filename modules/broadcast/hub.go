package broadcast

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/gofiber/contrib/websocket"
)

// Client represents one active bidirectional event channel with a client.
type Client struct {
	ID   string
	Conn *websocket.Conn

	// writeMu serializes frame writes; the hub run loop and the gateway's
	// per-connection goroutine may both write to the same connection.
	writeMu sync.Mutex
}

// Frame is the wire envelope for outbound events.
type Frame struct {
	Event string `json:"event"`
	Data  any    `json:"data,omitempty"`
}

// outbound is a queued broadcast. ExcludeID names the origin connection to
// skip; empty means deliver to every client.
type outbound struct {
	ExcludeID string
	Event     string
	Payload   any
}

// Hub manages WebSocket connections and event fan-out. Delivery is
// fire-and-forget, best-effort at-most-once: a failed write is logged and
// the remaining clients still receive the event.
type Hub struct {
	clients    map[string]*Client
	register   chan *Client
	unregister chan *Client
	broadcast  chan *outbound
	done       chan struct{}
	logger     *slog.Logger
	mu         sync.RWMutex
}

// NewHub creates a new Hub.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *outbound, 256),
		done:       make(chan struct{}),
		logger:     slog.Default().With("module", "broadcast"),
	}
}

// Run starts the hub's main loop. It accepts a context for graceful shutdown.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.logger.Info("Hub shutting down")
			h.closeAllClients()
			close(h.done)
			return
		case client := <-h.register:
			h.handleRegister(client)
		case client := <-h.unregister:
			h.handleUnregister(client)
		case msg := <-h.broadcast:
			h.handleBroadcast(msg)
		}
	}
}

// Wait blocks until the hub has stopped.
func (h *Hub) Wait() {
	<-h.done
}

// Register adds a client to the hub.
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// Unregister removes a client from the hub.
func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// Broadcast queues an event for every connected client except the one
// identified by excludeConnID. An empty excludeConnID reaches all clients.
func (h *Hub) Broadcast(excludeConnID, event string, payload any) {
	h.broadcast <- &outbound{
		ExcludeID: excludeConnID,
		Event:     event,
		Payload:   payload,
	}
}

// Send writes a single event frame to one client.
func (h *Hub) Send(client *Client, event string, payload any) error {
	data, err := json.Marshal(Frame{Event: event, Data: payload})
	if err != nil {
		return err
	}
	client.writeMu.Lock()
	defer client.writeMu.Unlock()
	return client.Conn.WriteMessage(websocket.TextMessage, data)
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) closeAllClients() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, client := range h.clients {
		_ = client.Conn.Close()
	}
	h.clients = make(map[string]*Client)
}

func (h *Hub) handleRegister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[client.ID] = client
	h.logger.Debug("Client registered", "connId", client.ID)
}

func (h *Hub) handleUnregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client.ID]; ok {
		delete(h.clients, client.ID)
		h.logger.Debug("Client unregistered", "connId", client.ID)
	}
}

func (h *Hub) handleBroadcast(msg *outbound) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	data, err := json.Marshal(Frame{Event: msg.Event, Data: msg.Payload})
	if err != nil {
		h.logger.Error("Failed to marshal broadcast frame", "error", err)
		return
	}

	for id, client := range h.clients {
		if id == msg.ExcludeID {
			continue
		}
		client.writeMu.Lock()
		err := client.Conn.WriteMessage(websocket.TextMessage, data)
		client.writeMu.Unlock()
		if err != nil {
			h.logger.Warn("Failed to send to client", "connId", id, "error", err)
		}
	}
}
