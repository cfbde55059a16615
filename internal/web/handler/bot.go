package handler

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/gamecenter/minesweeper/internal/model"
	"github.com/gamecenter/minesweeper/internal/services/bot"
	"github.com/gamecenter/minesweeper/internal/services/lobby"
	"github.com/gamecenter/minesweeper/internal/web/middleware"
	"github.com/gamecenter/minesweeper/internal/web/sse"
)

// BotHandler handles the host's bot controls in the lobby page
type BotHandler struct {
	botService      *bot.Service
	lobbyController lobby.ControllerInterface
	broadcaster     *sse.Broadcaster
	logger          *slog.Logger
}

// NewBotHandler creates a new BotHandler
func NewBotHandler(botService *bot.Service, lobbyController lobby.ControllerInterface, broadcaster *sse.Broadcaster, logger *slog.Logger) *BotHandler {
	return &BotHandler{
		botService:      botService,
		lobbyController: lobbyController,
		broadcaster:     broadcaster,
		logger:          logger,
	}
}

// Add adds a bot with the strategy from the form
func (h *BotHandler) Add(w http.ResponseWriter, r *http.Request) {
	player := middleware.GetPlayer(r.Context())
	lob := middleware.GetLobby(r.Context())

	if err := r.ParseForm(); err != nil {
		fail(w, r, lobbyPath(lob.Code), "Invalid form data")
		return
	}

	b, err := h.botService.AddBotToLobby(r.Context(), lob.Code, player.ID, r.FormValue("strategy"))
	if err != nil {
		fail(w, r, lobbyPath(lob.Code), "Could not add bot: "+describe(err))
		return
	}

	h.broadcastMembers(r, lob.Code)
	middleware.SetFlash(w, "success", b.DisplayName+" joined")
	redirect(w, r, lobbyPath(lob.Code))
}

// Remove takes a bot out of the lobby
func (h *BotHandler) Remove(w http.ResponseWriter, r *http.Request) {
	player := middleware.GetPlayer(r.Context())
	lob := middleware.GetLobby(r.Context())
	botID := model.PlayerID(mux.Vars(r)["player_id"])

	if err := h.botService.RemoveBotFromLobby(r.Context(), lob.Code, player.ID, botID); err != nil {
		fail(w, r, lobbyPath(lob.Code), "Could not remove bot: "+describe(err))
		return
	}

	h.broadcastMembers(r, lob.Code)
	redirect(w, r, lobbyPath(lob.Code))
}

// Play lets a bot play a fresh board with the lobby settings
func (h *BotHandler) Play(w http.ResponseWriter, r *http.Request) {
	player := middleware.GetPlayer(r.Context())
	lob := middleware.GetLobby(r.Context())
	botID := model.PlayerID(mux.Vars(r)["player_id"])

	g, actions, err := h.botService.PlayGame(r.Context(), lob.Code, player.ID, botID, nil)
	if err != nil {
		fail(w, r, lobbyPath(lob.Code), "Bot could not play: "+describe(err))
		return
	}

	middleware.SetFlash(w, "success", fmt.Sprintf("Bot finished after %d move(s): %s", len(actions), g.Status))
	redirect(w, r, lobbyPath(lob.Code))
}

func (h *BotHandler) broadcastMembers(r *http.Request, code model.LobbyCode) {
	lob, err := h.lobbyController.GetLobby(r.Context(), code)
	if err != nil {
		h.logger.Warn("member update skipped",
			slog.String("lobby_code", string(code)),
			slog.String("error", err.Error()))
		return
	}
	h.broadcaster.BroadcastMemberUpdate(lob)
}
