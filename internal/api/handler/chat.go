package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/gamecenter/minesweeper/internal/api/middleware"
	"github.com/gamecenter/minesweeper/internal/api/request"
	"github.com/gamecenter/minesweeper/internal/api/response"
	"github.com/gamecenter/minesweeper/internal/model"
	"github.com/gamecenter/minesweeper/internal/services/chat"
	"github.com/gamecenter/minesweeper/internal/services/lobby"
	"github.com/gamecenter/minesweeper/internal/web/ws"
)

// ChatHandler handles lobby chat and the lobby WebSocket
type ChatHandler struct {
	chatService     *chat.Service
	lobbyController lobby.ControllerInterface
	wsHandler       *ws.Handler
}

// NewChatHandler creates a new chat handler. wsHandler may be nil, in which
// case the WebSocket route answers 404.
func NewChatHandler(chatService *chat.Service, lobbyController lobby.ControllerInterface, wsHandler *ws.Handler) *ChatHandler {
	return &ChatHandler{
		chatService:     chatService,
		lobbyController: lobbyController,
		wsHandler:       wsHandler,
	}
}

// Post handles POST /api/v1/lobbies/{code}/chat
func (h *ChatHandler) Post(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())
	code := model.LobbyCode(mux.Vars(r)["code"])

	var req request.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	msg, err := h.chatService.Post(r.Context(), code, *player, req.Text)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.ChatMessageFromModel(msg))
}

// History handles GET /api/v1/lobbies/{code}/chat
func (h *ChatHandler) History(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())
	code := model.LobbyCode(mux.Vars(r)["code"])

	messages, err := h.chatService.History(r.Context(), code, player.ID)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.ChatHistoryFromModel(messages))
}

// Socket handles GET /api/v1/lobbies/{code}/ws
func (h *ChatHandler) Socket(w http.ResponseWriter, r *http.Request) {
	if h.wsHandler == nil {
		http.NotFound(w, r)
		return
	}

	player := middleware.MustGetPlayer(r.Context())
	code := model.LobbyCode(mux.Vars(r)["code"])

	lobby, err := h.lobbyController.GetLobby(r.Context(), code)
	if err != nil {
		WriteError(w, err)
		return
	}
	if lobby.GetMember(player.ID) == nil {
		WriteError(w, model.ErrNotInLobby)
		return
	}

	h.wsHandler.Serve(w, r, code, *player)
}
