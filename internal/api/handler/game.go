package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/gamecenter/minesweeper/internal/api/middleware"
	"github.com/gamecenter/minesweeper/internal/api/request"
	"github.com/gamecenter/minesweeper/internal/api/response"
	"github.com/gamecenter/minesweeper/internal/model"
	"github.com/gamecenter/minesweeper/internal/services/game"
	"github.com/gamecenter/minesweeper/internal/services/lobby"
	"github.com/gamecenter/minesweeper/internal/web/sse"
)

// GameHandler handles game-related endpoints. Every member plays their own
// board; the lobby resolves which game belongs to whom.
type GameHandler struct {
	lobbyController lobby.ControllerInterface
	gameController  game.ControllerInterface
	broadcaster     *sse.Broadcaster
}

// NewGameHandler creates a new game handler. broadcaster may be nil.
func NewGameHandler(lobbyController lobby.ControllerInterface, gameController game.ControllerInterface, broadcaster *sse.Broadcaster) *GameHandler {
	return &GameHandler{
		lobbyController: lobbyController,
		gameController:  gameController,
		broadcaster:     broadcaster,
	}
}

// Start handles POST /api/v1/lobbies/{code}/game
func (h *GameHandler) Start(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())
	code := model.LobbyCode(mux.Vars(r)["code"])

	var req request.StartGameRequest
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

	g, err := h.lobbyController.StartGame(r.Context(), code, player.ID, override)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.GameFromModel(g, h.gameController.ElapsedSeconds(g)))
}

// Get handles GET /api/v1/lobbies/{code}/game
func (h *GameHandler) Get(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())
	code := model.LobbyCode(mux.Vars(r)["code"])

	g, err := h.lobbyController.GetPlayerGame(r.Context(), code, player.ID, player.ID)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.GameFromModel(g, h.gameController.ElapsedSeconds(g)))
}

// GetPlayerGame handles GET /api/v1/lobbies/{code}/games/{player_id}
func (h *GameHandler) GetPlayerGame(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())
	vars := mux.Vars(r)
	code := model.LobbyCode(vars["code"])
	target := model.PlayerID(vars["player_id"])

	g, err := h.lobbyController.GetPlayerGame(r.Context(), code, player.ID, target)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.GameFromModel(g, h.gameController.ElapsedSeconds(g)))
}

// Abandon handles DELETE /api/v1/lobbies/{code}/game
func (h *GameHandler) Abandon(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())
	code := model.LobbyCode(mux.Vars(r)["code"])

	if err := h.lobbyController.AbandonGame(r.Context(), code, player.ID); err != nil {
		WriteError(w, err)
		return
	}

	if h.broadcaster != nil {
		h.broadcaster.BroadcastRefresh(code)
	}

	response.NoContent(w)
}

// Reveal handles POST /api/v1/lobbies/{code}/game/reveal
func (h *GameHandler) Reveal(w http.ResponseWriter, r *http.Request) {
	h.move(w, r, h.gameController.Reveal)
}

// Flag handles POST /api/v1/lobbies/{code}/game/flag
func (h *GameHandler) Flag(w http.ResponseWriter, r *http.Request) {
	h.move(w, r, h.gameController.ToggleFlag)
}

type moveFunc func(
	ctx context.Context,
	gameID model.GameID,
	playerID model.PlayerID,
	pos model.Position,
) (*model.Game, model.MoveResult, error)

func (h *GameHandler) move(w http.ResponseWriter, r *http.Request, fn moveFunc) {
	player := middleware.MustGetPlayer(r.Context())
	code := model.LobbyCode(mux.Vars(r)["code"])

	var req request.CellRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	gameID, err := h.lobbyController.GameID(r.Context(), code, player.ID)
	if err != nil {
		WriteError(w, err)
		return
	}

	g, result, err := fn(r.Context(), gameID, player.ID, model.Position{Row: req.Row, Col: req.Col})
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.MoveResponseFromModel(result, g, h.gameController.ElapsedSeconds(g)))
}
