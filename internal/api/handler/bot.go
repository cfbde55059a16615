package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/gamecenter/minesweeper/internal/api/middleware"
	"github.com/gamecenter/minesweeper/internal/api/request"
	"github.com/gamecenter/minesweeper/internal/api/response"
	"github.com/gamecenter/minesweeper/internal/model"
	"github.com/gamecenter/minesweeper/internal/services/bot"
	"github.com/gamecenter/minesweeper/internal/services/game"
	"github.com/gamecenter/minesweeper/internal/services/lobby"
	"github.com/gamecenter/minesweeper/internal/web/sse"
)

// BotHandler handles the host's bot endpoints
type BotHandler struct {
	botService      *bot.Service
	lobbyController lobby.ControllerInterface
	gameController  game.ControllerInterface
	broadcaster     *sse.Broadcaster
}

// NewBotHandler creates a new bot handler. broadcaster may be nil.
func NewBotHandler(botService *bot.Service, lobbyController lobby.ControllerInterface, gameController game.ControllerInterface, broadcaster *sse.Broadcaster) *BotHandler {
	return &BotHandler{
		botService:      botService,
		lobbyController: lobbyController,
		gameController:  gameController,
		broadcaster:     broadcaster,
	}
}

// Add handles POST /api/v1/lobbies/{code}/bots
func (h *BotHandler) Add(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())
	code := model.LobbyCode(mux.Vars(r)["code"])

	var req request.AddBotRequest
	if err := decodeOptional(r, &req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	if _, err := h.botService.AddBotToLobby(r.Context(), code, player.ID, req.Strategy); err != nil {
		WriteError(w, err)
		return
	}

	h.respondWithLobby(w, r, code, http.StatusCreated)
}

// Remove handles DELETE /api/v1/lobbies/{code}/bots/{player_id}
func (h *BotHandler) Remove(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())
	vars := mux.Vars(r)
	code := model.LobbyCode(vars["code"])

	if err := h.botService.RemoveBotFromLobby(r.Context(), code, player.ID, model.PlayerID(vars["player_id"])); err != nil {
		WriteError(w, err)
		return
	}

	h.respondWithLobby(w, r, code, http.StatusOK)
}

// Play handles POST /api/v1/lobbies/{code}/bots/{player_id}/game
func (h *BotHandler) Play(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())
	vars := mux.Vars(r)
	code := model.LobbyCode(vars["code"])

	var req request.PlayBotRequest
	if err := decodeOptional(r, &req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	var override *model.Settings
	if !req.Settings.IsZero() {
		s, err := req.Settings.Resolve()
		if err != nil {
			WriteError(w, err)
			return
		}
		override = &s
	}

	g, actions, err := h.botService.PlayGame(r.Context(), code, player.ID, model.PlayerID(vars["player_id"]), override)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.BotGameResponseFromModel(actions, g, h.gameController.ElapsedSeconds(g)))
}

func (h *BotHandler) respondWithLobby(w http.ResponseWriter, r *http.Request, code model.LobbyCode, status int) {
	lob, err := h.lobbyController.GetLobby(r.Context(), code)
	if err != nil {
		WriteError(w, err)
		return
	}

	if h.broadcaster != nil {
		h.broadcaster.BroadcastMemberUpdate(lob)
	}

	response.JSON(w, status, response.LobbyFromModel(lob))
}
