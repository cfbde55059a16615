package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/gamecenter/minesweeper/internal/model"
	"github.com/gamecenter/minesweeper/internal/services/game"
	"github.com/gamecenter/minesweeper/internal/services/lobby"
	"github.com/gamecenter/minesweeper/internal/web/middleware"
	"github.com/gamecenter/minesweeper/internal/web/sse"
	"github.com/gamecenter/minesweeper/internal/web/templates/components"
	"github.com/gamecenter/minesweeper/internal/web/templates/pages"
)

// GameHandler handles a member's own board and watching other boards
type GameHandler struct {
	lobbyController lobby.ControllerInterface
	gameController  game.ControllerInterface
	broadcaster     *sse.Broadcaster
	logger          *slog.Logger
}

// NewGameHandler creates a new GameHandler
func NewGameHandler(
	lobbyController lobby.ControllerInterface,
	gameController game.ControllerInterface,
	broadcaster *sse.Broadcaster,
	logger *slog.Logger,
) *GameHandler {
	return &GameHandler{
		lobbyController: lobbyController,
		gameController:  gameController,
		broadcaster:     broadcaster,
		logger:          logger,
	}
}

// Start starts or restarts the player's game. A difficulty in the form
// overrides the lobby settings for this game only.
func (h *GameHandler) Start(w http.ResponseWriter, r *http.Request) {
	player := middleware.GetPlayer(r.Context())
	lob := middleware.GetLobby(r.Context())

	if err := r.ParseForm(); err != nil {
		fail(w, r, lobbyPath(lob.Code), "Invalid form data")
		return
	}

	var override *model.Settings
	if r.FormValue("difficulty") != "" {
		s, err := parseSettings(r)
		if err != nil {
			fail(w, r, lobbyPath(lob.Code), describe(err))
			return
		}
		override = &s
	}

	if _, err := h.lobbyController.StartGame(r.Context(), lob.Code, player.ID, override); err != nil {
		fail(w, r, lobbyPath(lob.Code), "Could not start game: "+describe(err))
		return
	}

	redirect(w, r, lobbyPath(lob.Code))
}

// Move applies a reveal or flag from the board form. The cell value is
// "row:col"; mode is reveal (default) or flag.
func (h *GameHandler) Move(w http.ResponseWriter, r *http.Request) {
	player := middleware.GetPlayer(r.Context())
	lob := middleware.GetLobby(r.Context())

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return
	}

	pos, ok := parseCell(r.FormValue("cell"))
	if !ok {
		http.Error(w, "Invalid cell", http.StatusBadRequest)
		return
	}

	gameID, err := h.lobbyController.GameID(r.Context(), lob.Code, player.ID)
	if err != nil {
		fail(w, r, lobbyPath(lob.Code), describe(err))
		return
	}

	move := h.gameController.Reveal
	if r.FormValue("mode") == string(model.MoveFlag) {
		move = h.gameController.ToggleFlag
	}

	g, _, err := move(r.Context(), gameID, player.ID, pos)
	if err != nil {
		h.logger.Warn("move rejected",
			slog.String("lobby_code", string(lob.Code)),
			slog.String("player_id", string(player.ID)),
			slog.String("error", err.Error()))
		fail(w, r, lobbyPath(lob.Code), describe(err))
		return
	}

	if !middleware.IsHTMX(r) {
		http.Redirect(w, r, lobbyPath(lob.Code), http.StatusSeeOther)
		return
	}
	h.renderBoard(w, r, lob.Code, g, "", true)
}

// Abandon gives up the player's game
func (h *GameHandler) Abandon(w http.ResponseWriter, r *http.Request) {
	player := middleware.GetPlayer(r.Context())
	lob := middleware.GetLobby(r.Context())

	if err := h.lobbyController.AbandonGame(r.Context(), lob.Code, player.ID); err != nil {
		fail(w, r, lobbyPath(lob.Code), "Could not abandon game: "+describe(err))
		return
	}

	h.broadcaster.BroadcastRefresh(lob.Code)
	middleware.SetFlash(w, "info", "Game abandoned")
	redirect(w, r, lobbyPath(lob.Code))
}

// Board renders the player's own board fragment
func (h *GameHandler) Board(w http.ResponseWriter, r *http.Request) {
	player := middleware.GetPlayer(r.Context())
	lob := middleware.GetLobby(r.Context())

	g, err := h.lobbyController.GetPlayerGame(r.Context(), lob.Code, player.ID, player.ID)
	if err != nil {
		http.Error(w, describe(err), statusForLookup(err))
		return
	}
	h.renderBoard(w, r, lob.Code, g, "", true)
}

// Watch renders a page following another member's board
func (h *GameHandler) Watch(w http.ResponseWriter, r *http.Request) {
	lob := middleware.GetLobby(r.Context())

	g, owner, err := h.watched(r.Context(), r, lob)
	if err != nil {
		fail(w, r, lobbyPath(lob.Code), describe(err))
		return
	}

	render(w, r, http.StatusOK, pages.Watch(pages.WatchData{
		PageData: pageData(r, "Watching "+owner),
		Board: components.BoardData{
			LobbyCode: lob.Code,
			Game:      g,
			Elapsed:   h.gameController.ElapsedSeconds(g),
			OwnerName: owner,
		},
	}))
}

// WatchBoard renders another member's board fragment
func (h *GameHandler) WatchBoard(w http.ResponseWriter, r *http.Request) {
	lob := middleware.GetLobby(r.Context())

	g, owner, err := h.watched(r.Context(), r, lob)
	if err != nil {
		http.Error(w, describe(err), statusForLookup(err))
		return
	}
	h.renderBoard(w, r, lob.Code, g, owner, false)
}

func (h *GameHandler) watched(ctx context.Context, r *http.Request, lob *model.Lobby) (*model.Game, string, error) {
	player := middleware.GetPlayer(ctx)
	target := model.PlayerID(mux.Vars(r)["player_id"])

	member := lob.GetMember(target)
	if member == nil {
		return nil, "", model.ErrNotInLobby
	}

	g, err := h.lobbyController.GetPlayerGame(ctx, lob.Code, player.ID, target)
	if err != nil {
		return nil, "", err
	}
	return g, member.Player.DisplayName, nil
}

func (h *GameHandler) renderBoard(w http.ResponseWriter, r *http.Request, code model.LobbyCode, g *model.Game, owner string, own bool) {
	render(w, r, http.StatusOK, components.Board(components.BoardData{
		LobbyCode:   code,
		Game:        g,
		Elapsed:     h.gameController.ElapsedSeconds(g),
		OwnerName:   owner,
		Interactive: own,
	}))
}

func parseCell(value string) (model.Position, bool) {
	rowStr, colStr, ok := strings.Cut(value, ":")
	if !ok {
		return model.Position{}, false
	}
	row, err := strconv.Atoi(rowStr)
	if err != nil {
		return model.Position{}, false
	}
	col, err := strconv.Atoi(colStr)
	if err != nil {
		return model.Position{}, false
	}
	return model.Position{Row: row, Col: col}, true
}

func statusForLookup(err error) int {
	switch {
	case errors.Is(err, model.ErrGameNotFound), errors.Is(err, model.ErrLobbyNotFound):
		return http.StatusNotFound
	case errors.Is(err, model.ErrNotInLobby):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}
