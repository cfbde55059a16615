package ws

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/gamecenter/minesweeper/internal/model"
	"github.com/gamecenter/minesweeper/internal/services/chat"
	"github.com/gamecenter/minesweeper/internal/web/sse"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 30 * time.Second
	pingPeriod     = 25 * time.Second
	maxMessageSize = 4096
)

// Inbound frame types
const (
	FrameMessage = "message"
)

// Frame is a message sent by the client
type Frame struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

type errorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Handler upgrades lobby subscribers to WebSocket connections. Outbound
// frames are hub messages encoded as {"event": ..., "data": ...}.
type Handler struct {
	hubManager *sse.HubManager
	chats      *chat.Service
	upgrader   websocket.Upgrader
	logger     *slog.Logger
}

// NewHandler creates a new WebSocket handler. An empty allowedOrigin
// accepts any origin, which the iframe embedding relies on; otherwise only
// same-host pages and allowedOrigin may connect.
func NewHandler(hubManager *sse.HubManager, chats *chat.Service, allowedOrigin string, logger *slog.Logger) *Handler {
	return &Handler{
		hubManager: hubManager,
		chats:      chats,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return checkOrigin(r, allowedOrigin)
			},
		},
		logger: logger.With(slog.String("component", "websocket")),
	}
}

func checkOrigin(r *http.Request, allowedOrigin string) bool {
	origin := r.Header.Get("Origin")
	if allowedOrigin == "" || origin == "" || origin == allowedOrigin {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	return strings.EqualFold(u.Host, r.Host)
}

// Serve upgrades the request and pumps lobby events until either side
// disconnects. Callers must have checked lobby membership.
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request, code model.LobbyCode, player model.Player) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("upgrade failed", slog.String("error", err.Error()))
		return
	}

	hub := h.hubManager.GetOrCreateHub(code)
	client := sse.NewClient(hub, player.ID, sse.TransportWebSocket)
	hub.Register(client)

	c := &connection{
		conn:    conn,
		client:  client,
		code:    code,
		player:  player,
		chats:   h.chats,
		logger:  h.logger.With(slog.String("lobby", string(code)), slog.String("player_id", string(player.ID))),
		replies: make(chan sse.Message, 8),
	}

	done := make(chan struct{})
	go func() {
		c.writePump(done)
	}()
	c.readPump(r.Context())
	hub.Unregister(client)
	close(done)
}

type connection struct {
	conn    *websocket.Conn
	client  *sse.Client
	code    model.LobbyCode
	player  model.Player
	chats   *chat.Service
	logger  *slog.Logger
	replies chan sse.Message // frames for this connection only
}

func (c *connection) readPump(ctx context.Context) {
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Warn("read error", slog.String("error", err.Error()))
			}
			return
		}

		var frame Frame
		if err := json.Unmarshal(data, &frame); err != nil {
			c.reply("invalid_frame", "frames must be JSON objects")
			continue
		}

		switch frame.Type {
		case FrameMessage:
			if _, err := c.chats.Post(ctx, c.code, c.player, frame.Text); err != nil {
				c.reply(errorCode(err), err.Error())
			}
		default:
			c.reply("unknown_type", "unsupported frame type")
		}
	}
}

func (c *connection) writePump(done <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.client.Messages():
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(msg); err != nil {
				c.logger.Warn("write error", slog.String("error", err.Error()))
				return
			}

		case msg := <-c.replies:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(msg); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-done:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}
	}
}

func (c *connection) reply(code, message string) {
	msg, err := sse.NewMessage("error", errorData{Code: code, Message: message})
	if err != nil {
		return
	}
	select {
	case c.replies <- msg:
	default:
	}
}

func errorCode(err error) string {
	switch {
	case errors.Is(err, model.ErrEmptyMessage):
		return "empty_message"
	case errors.Is(err, model.ErrMessageTooLong):
		return "message_too_long"
	case errors.Is(err, model.ErrNotInLobby):
		return "not_in_lobby"
	case errors.Is(err, model.ErrLobbyNotFound):
		return "lobby_not_found"
	default:
		return "internal_error"
	}
}
