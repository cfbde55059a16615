package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"sort"
	"strings"

	"github.com/gorilla/mux"

	"github.com/gamecenter/minesweeper/internal/model"
	"github.com/gamecenter/minesweeper/internal/services/chat"
	"github.com/gamecenter/minesweeper/internal/services/game"
	"github.com/gamecenter/minesweeper/internal/services/lobby"
	"github.com/gamecenter/minesweeper/internal/web/middleware"
	"github.com/gamecenter/minesweeper/internal/web/sse"
	"github.com/gamecenter/minesweeper/internal/web/templates/components"
	"github.com/gamecenter/minesweeper/internal/web/templates/pages"
)

// LobbyHandler handles lobby pages, lobby actions, chat and the event stream
type LobbyHandler struct {
	lobbyController lobby.ControllerInterface
	gameController  game.ControllerInterface
	chatService     *chat.Service
	hubManager      *sse.HubManager
	broadcaster     *sse.Broadcaster
	logger          *slog.Logger
}

// NewLobbyHandler creates a new LobbyHandler
func NewLobbyHandler(
	lobbyController lobby.ControllerInterface,
	gameController game.ControllerInterface,
	chatService *chat.Service,
	hubManager *sse.HubManager,
	broadcaster *sse.Broadcaster,
	logger *slog.Logger,
) *LobbyHandler {
	return &LobbyHandler{
		lobbyController: lobbyController,
		gameController:  gameController,
		chatService:     chatService,
		hubManager:      hubManager,
		broadcaster:     broadcaster,
		logger:          logger,
	}
}

// Create handles lobby creation
func (h *LobbyHandler) Create(w http.ResponseWriter, r *http.Request) {
	player := middleware.GetPlayer(r.Context())

	if err := r.ParseForm(); err != nil {
		fail(w, r, "/", "Invalid form data")
		return
	}

	var settings *model.Settings
	if r.FormValue("difficulty") != "" {
		s, err := parseSettings(r)
		if err != nil {
			fail(w, r, "/", describe(err))
			return
		}
		settings = &s
	}

	lob, err := h.lobbyController.CreateLobby(r.Context(), *player, settings)
	if err != nil {
		fail(w, r, "/", "Could not create lobby: "+describe(err))
		return
	}

	middleware.SetFlash(w, "success", "Lobby created! Share the code "+string(lob.Code)+" with your friends.")
	http.Redirect(w, r, lobbyPath(lob.Code), http.StatusSeeOther)
}

// JoinByForm handles joining a lobby via form submission
func (h *LobbyHandler) JoinByForm(w http.ResponseWriter, r *http.Request) {
	player := middleware.GetPlayer(r.Context())

	if err := r.ParseForm(); err != nil {
		fail(w, r, "/", "Invalid form data")
		return
	}

	code := model.LobbyCode(strings.ToUpper(strings.TrimSpace(r.FormValue("code"))))
	if code == "" {
		fail(w, r, "/", "Lobby code is required")
		return
	}

	err := h.lobbyController.JoinLobby(r.Context(), code, *player)
	switch {
	case errors.Is(err, model.ErrAlreadyInLobby):
	case err != nil:
		fail(w, r, "/", "Could not join lobby: "+describe(err))
		return
	default:
		h.broadcastMembers(r, code)
		middleware.SetFlash(w, "success", "Joined lobby!")
	}

	http.Redirect(w, r, lobbyPath(code), http.StatusSeeOther)
}

// View renders the lobby page, joining the lobby on first visit so that a
// shared link is enough to get in
func (h *LobbyHandler) View(w http.ResponseWriter, r *http.Request) {
	player := middleware.GetPlayer(r.Context())
	code := model.LobbyCode(mux.Vars(r)["code"])

	lob, err := h.lobbyController.GetLobby(r.Context(), code)
	if err != nil {
		fail(w, r, "/", describe(err))
		return
	}

	if lob.GetMember(player.ID) == nil {
		if err := h.lobbyController.JoinLobby(r.Context(), code, *player); err != nil && !errors.Is(err, model.ErrAlreadyInLobby) {
			fail(w, r, "/", "Could not join lobby: "+describe(err))
			return
		}
		if lob, err = h.lobbyController.GetLobby(r.Context(), code); err != nil {
			fail(w, r, "/", describe(err))
			return
		}
		h.broadcastMembers(r, code)
	}

	games := lobbyGames(r.Context(), h.gameController, lob)
	data := pages.LobbyData{
		PageData: pageData(r, "Lobby "+string(lob.Code)),
		Lobby:    lob,
		Member:   lob.GetMember(player.ID),
		Statuses: statuses(games),
	}
	if g, ok := games[player.ID]; ok {
		data.MyGame = g
		data.MyElapsed = h.gameController.ElapsedSeconds(g)
	}

	for _, m := range lob.Members {
		g, ok := games[m.Player.ID]
		if !ok || m.Player.ID == player.ID {
			continue
		}
		data.Others = append(data.Others, components.BoardData{
			LobbyCode: lob.Code,
			Game:      g,
			Elapsed:   h.gameController.ElapsedSeconds(g),
			OwnerName: m.Player.DisplayName,
		})
	}
	sort.SliceStable(data.Others, func(i, j int) bool {
		return !data.Others[i].Game.Status.IsTerminal() && data.Others[j].Game.Status.IsTerminal()
	})

	if messages, err := h.chatService.History(r.Context(), code, player.ID); err == nil {
		data.Messages = messages
	}

	render(w, r, http.StatusOK, pages.Lobby(data))
}

// Leave handles leaving a lobby
func (h *LobbyHandler) Leave(w http.ResponseWriter, r *http.Request) {
	player := middleware.GetPlayer(r.Context())
	code := model.LobbyCode(mux.Vars(r)["code"])

	if err := h.lobbyController.LeaveLobby(r.Context(), code, player.ID); err != nil {
		fail(w, r, lobbyPath(code), "Could not leave lobby: "+describe(err))
		return
	}

	lob, err := h.lobbyController.GetLobby(r.Context(), code)
	switch {
	case errors.Is(err, model.ErrLobbyNotFound):
		h.broadcaster.CloseLobby(code)
	case err == nil:
		h.broadcaster.BroadcastMemberUpdate(lob)
	}

	middleware.SetFlash(w, "info", "You left the lobby")
	redirect(w, r, "/")
}

// UpdateSettings changes the lobby's board settings (host only)
func (h *LobbyHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	player := middleware.GetPlayer(r.Context())
	lob := middleware.GetLobby(r.Context())

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return
	}

	settings, err := parseSettings(r)
	if err == nil {
		_, err = h.lobbyController.UpdateSettings(r.Context(), lob.Code, player.ID, settings)
	}
	if err != nil {
		fail(w, r, lobbyPath(lob.Code), "Could not update settings: "+describe(err))
		return
	}

	// Clients refetch the settings panel on refresh
	h.broadcaster.BroadcastRefresh(lob.Code)

	if middleware.IsHTMX(r) {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	middleware.SetFlash(w, "success", "Settings updated")
	http.Redirect(w, r, lobbyPath(lob.Code), http.StatusSeeOther)
}

// SettingsFragment renders the settings panel
func (h *LobbyHandler) SettingsFragment(w http.ResponseWriter, r *http.Request) {
	lob := middleware.GetLobby(r.Context())
	member := middleware.GetMember(r.Context())

	render(w, r, http.StatusOK, components.Settings(components.SettingsData{
		LobbyCode: lob.Code,
		Settings:  lob.Settings,
		Editable:  member.IsHost,
	}))
}

// SetRole switches a member between player and spectator. Members may
// change their own role; the host may change anyone's.
func (h *LobbyHandler) SetRole(w http.ResponseWriter, r *http.Request) {
	player := middleware.GetPlayer(r.Context())
	lob := middleware.GetLobby(r.Context())
	member := middleware.GetMember(r.Context())

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return
	}

	target := model.PlayerID(r.FormValue("player_id"))
	if target == "" {
		target = player.ID
	}

	role := model.LobbyMemberRole(r.FormValue("role"))
	if role != model.RolePlayer && role != model.RoleSpectator {
		fail(w, r, lobbyPath(lob.Code), "Invalid role")
		return
	}

	if target != player.ID && !member.IsHost {
		fail(w, r, lobbyPath(lob.Code), describe(model.ErrNotHost))
		return
	}

	if err := h.lobbyController.SetRole(r.Context(), lob.Code, target, role); err != nil {
		fail(w, r, lobbyPath(lob.Code), "Could not change role: "+describe(err))
		return
	}

	h.broadcastMembers(r, lob.Code)
	redirect(w, r, lobbyPath(lob.Code))
}

// TransferHost hands the host role to another member
func (h *LobbyHandler) TransferHost(w http.ResponseWriter, r *http.Request) {
	player := middleware.GetPlayer(r.Context())
	lob := middleware.GetLobby(r.Context())

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return
	}

	newHostID := model.PlayerID(r.FormValue("new_host_id"))
	if err := h.lobbyController.TransferHost(r.Context(), lob.Code, player.ID, newHostID); err != nil {
		fail(w, r, lobbyPath(lob.Code), "Could not transfer host: "+describe(err))
		return
	}

	h.broadcastMembers(r, lob.Code)
	// The new host's settings panel becomes editable
	h.broadcaster.BroadcastRefresh(lob.Code)

	middleware.SetFlash(w, "success", "Host transferred")
	redirect(w, r, lobbyPath(lob.Code))
}

// Members renders the member list fragment
func (h *LobbyHandler) Members(w http.ResponseWriter, r *http.Request) {
	player := middleware.GetPlayer(r.Context())
	lob := middleware.GetLobby(r.Context())

	render(w, r, http.StatusOK, components.Members(components.MembersData{
		Lobby:    lob,
		Viewer:   player.ID,
		Statuses: statuses(lobbyGames(r.Context(), h.gameController, lob)),
	}))
}

// PostChat posts a chat message and returns the refreshed chat panel
func (h *LobbyHandler) PostChat(w http.ResponseWriter, r *http.Request) {
	player := middleware.GetPlayer(r.Context())
	lob := middleware.GetLobby(r.Context())

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return
	}

	_, err := h.chatService.Post(r.Context(), lob.Code, *player, r.FormValue("text"))
	if !middleware.IsHTMX(r) {
		if err != nil {
			middleware.SetFlash(w, "error", describe(err))
		}
		http.Redirect(w, r, lobbyPath(lob.Code), http.StatusSeeOther)
		return
	}

	data := components.ChatData{LobbyCode: lob.Code}
	if err != nil {
		data.Error = describe(err)
	}
	h.renderChat(w, r, data)
}

// Chat renders the chat fragment
func (h *LobbyHandler) Chat(w http.ResponseWriter, r *http.Request) {
	lob := middleware.GetLobby(r.Context())
	h.renderChat(w, r, components.ChatData{LobbyCode: lob.Code})
}

func (h *LobbyHandler) renderChat(w http.ResponseWriter, r *http.Request, data components.ChatData) {
	player := middleware.GetPlayer(r.Context())
	messages, err := h.chatService.History(r.Context(), data.LobbyCode, player.ID)
	if err != nil {
		http.Error(w, describe(err), http.StatusInternalServerError)
		return
	}
	data.Messages = messages
	render(w, r, http.StatusOK, components.Chat(data))
}

// Events handles SSE event stream for a lobby
func (h *LobbyHandler) Events(w http.ResponseWriter, r *http.Request) {
	player := middleware.GetPlayer(r.Context())
	lob := middleware.GetLobby(r.Context())

	hub := h.hubManager.GetOrCreateHub(lob.Code)
	sse.ServeSSE(w, r, hub, player.ID)
}

func (h *LobbyHandler) broadcastMembers(r *http.Request, code model.LobbyCode) {
	lob, err := h.lobbyController.GetLobby(r.Context(), code)
	if err != nil {
		h.logger.Warn("member update skipped",
			slog.String("lobby_code", string(code)),
			slog.String("error", err.Error()))
		return
	}
	h.broadcaster.BroadcastMemberUpdate(lob)
}
