package realtime

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/opswatch/opswatch/internal/pkg/ctxlog"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// subscribeMessage is a client-to-server room subscription request.
type subscribeMessage struct {
	Action         string `json:"action"`
	OrganizationID string `json:"organization_id,omitempty"`
	IncidentID     string `json:"incident_id,omitempty"`
}

// ServeWS upgrades the connection and runs the client's read loop until
// disconnect. Clients may join rooms but receive unscoped broadcasts
// regardless.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		ctxlog.FromContext(r.Context()).Error("websocket upgrade failed", "error", err)
		return
	}

	client := h.register(conn)
	defer h.unregister(client)

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			return
		}
		h.handleMessage(client, message)
	}
}

func (h *Hub) handleMessage(client *Client, message []byte) {
	var msg subscribeMessage
	if err := json.Unmarshal(message, &msg); err != nil {
		return
	}

	switch msg.Action {
	case "join-organization":
		if msg.OrganizationID != "" {
			h.join(client, OrgRoom(msg.OrganizationID))
		}
	case "subscribe-incidents":
		if msg.IncidentID != "" {
			h.join(client, IncidentRoom(msg.IncidentID))
		}
	case "subscribe-alerts":
		h.join(client, AlertsRoom)
	}
}
