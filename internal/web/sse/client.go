package sse

import (
	"net/http"
	"time"

	"github.com/gamecenter/minesweeper/internal/model"
)

const (
	// Time between keepalive pings
	pingPeriod = 30 * time.Second

	// Buffer size for outgoing messages
	sendBufferSize = 256
)

// Transports a client can be attached with
const (
	TransportSSE       = "sse"
	TransportWebSocket = "websocket"
)

// Client is a subscriber to a lobby hub
type Client struct {
	hub         *Hub
	playerID    model.PlayerID
	transport   string
	send        chan Message
	connectedAt time.Time
}

// NewClient creates a new client for a hub
func NewClient(hub *Hub, playerID model.PlayerID, transport string) *Client {
	return &Client{
		hub:         hub,
		playerID:    playerID,
		transport:   transport,
		send:        make(chan Message, sendBufferSize),
		connectedAt: time.Now(),
	}
}

// Messages returns the channel of outgoing messages. It is closed when the
// client is unregistered or the hub shuts down.
func (c *Client) Messages() <-chan Message {
	return c.send
}

// PlayerID returns the player the client belongs to
func (c *Client) PlayerID() model.PlayerID {
	return c.playerID
}

// ServeSSE handles the SSE connection for a client
func ServeSSE(w http.ResponseWriter, r *http.Request, hub *Hub, playerID model.PlayerID) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // Disable nginx buffering

	client := NewClient(hub, playerID, TransportSSE)
	hub.Register(client)
	defer hub.Unregister(client)

	// Ask browsers to reconnect quickly after a dropped stream
	_, _ = w.Write([]byte("retry: 3000\n\nevent: connected\ndata: {\"status\":\"connected\"}\n\n"))
	flusher.Flush()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case message, ok := <-client.send:
			if !ok {
				// Hub closed the channel
				return
			}
			if _, err := w.Write(message.Bytes()); err != nil {
				return
			}
			flusher.Flush()

		case <-ticker.C:
			if _, err := w.Write([]byte(": keepalive\n\n")); err != nil {
				return
			}
			flusher.Flush()

		case <-r.Context().Done():
			return
		}
	}
}
