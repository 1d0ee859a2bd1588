// Package realtime distributes incident and alert events to connected
// WebSocket clients.
package realtime

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Event is the wire frame sent to subscribers.
type Event struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// Client is one connected WebSocket subscriber.
type Client struct {
	ID    string
	conn  *websocket.Conn
	send  chan []byte
	done  chan struct{}
	rooms map[string]bool
}

// Hub tracks connected clients and their room memberships. All state is
// guarded by a single mutex; the hub is a process-wide singleton.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]*Client),
	}
}

// register adds a client and starts its write pump.
func (h *Hub) register(conn *websocket.Conn) *Client {
	client := &Client{
		ID:    uuid.New().String(),
		conn:  conn,
		send:  make(chan []byte, 32),
		done:  make(chan struct{}),
		rooms: make(map[string]bool),
	}

	h.mu.Lock()
	h.clients[client.ID] = client
	h.mu.Unlock()

	go client.writePump()

	slog.Info("client connected", "client_id", client.ID)
	return client
}

// unregister removes a client and closes its connection.
func (h *Hub) unregister(client *Client) {
	h.mu.Lock()
	delete(h.clients, client.ID)
	h.mu.Unlock()

	close(client.done)
	_ = client.conn.Close()

	slog.Info("client disconnected", "client_id", client.ID)
}

// join adds a client to a named room.
func (h *Hub) join(client *Client, room string) {
	h.mu.Lock()
	client.rooms[room] = true
	h.mu.Unlock()

	slog.Info("client joined room", "client_id", client.ID, "room", room)
}

// Broadcast sends an event to every connected client regardless of room
// membership. Marshal or delivery failures are logged and never
// propagate to the caller.
func (h *Hub) Broadcast(event string, payload interface{}) {
	frame, err := json.Marshal(Event{Event: event, Data: payload})
	if err != nil {
		slog.Error("failed to marshal broadcast event", "event", event, "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, client := range h.clients {
		client.enqueue(frame)
	}
	recordBroadcast(event, len(h.clients))
}

// BroadcastRoom sends an event to clients that joined the given room.
func (h *Hub) BroadcastRoom(room, event string, payload interface{}) {
	frame, err := json.Marshal(Event{Event: event, Data: payload})
	if err != nil {
		slog.Error("failed to marshal broadcast event", "event", event, "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	delivered := 0
	for _, client := range h.clients {
		if client.rooms[room] {
			client.enqueue(frame)
			delivered++
		}
	}
	recordBroadcast(event, delivered)
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// OrgRoom returns the room name for an organization.
func OrgRoom(organizationID string) string {
	return fmt.Sprintf("org-%s", organizationID)
}

// IncidentRoom returns the room name for a single incident.
func IncidentRoom(incidentID string) string {
	return fmt.Sprintf("incident-%s", incidentID)
}

// AlertsRoom is the room for alert subscribers.
const AlertsRoom = "alerts"

// enqueue queues a frame for delivery, dropping it when the client's
// buffer is full. A slow subscriber must not block the broadcaster.
func (c *Client) enqueue(frame []byte) {
	select {
	case c.send <- frame:
	default:
		slog.Warn("dropping frame for slow client", "client_id", c.ID)
	}
}

func (c *Client) writePump() {
	for {
		select {
		case frame := <-c.send:
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		case <-c.done:
			return
		}
	}
}
