package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/gamecenter/minesweeper/internal/api/middleware"
	"github.com/gamecenter/minesweeper/internal/api/request"
	"github.com/gamecenter/minesweeper/internal/api/response"
	"github.com/gamecenter/minesweeper/internal/model"
	"github.com/gamecenter/minesweeper/internal/services/lobby"
	"github.com/gamecenter/minesweeper/internal/web/sse"
)

// LobbyHandler handles lobby-related endpoints
type LobbyHandler struct {
	lobbyController lobby.ControllerInterface
	broadcaster     *sse.Broadcaster
}

// NewLobbyHandler creates a new lobby handler. broadcaster may be nil.
func NewLobbyHandler(lobbyController lobby.ControllerInterface, broadcaster *sse.Broadcaster) *LobbyHandler {
	return &LobbyHandler{
		lobbyController: lobbyController,
		broadcaster:     broadcaster,
	}
}

// decodeOptional decodes a JSON body, treating an empty body as zero value
func decodeOptional(r *http.Request, v any) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// Create handles POST /api/v1/lobbies
func (h *LobbyHandler) Create(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())

	var req request.CreateLobbyRequest
	if err := decodeOptional(r, &req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	var settings *model.Settings
	if !req.Settings.IsZero() {
		s, err := req.Settings.Resolve()
		if err != nil {
			WriteError(w, err)
			return
		}
		settings = &s
	}

	lobby, err := h.lobbyController.CreateLobby(r.Context(), *player, settings)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.LobbyFromModel(lobby))
}

// Get handles GET /api/v1/lobbies/{code}
func (h *LobbyHandler) Get(w http.ResponseWriter, r *http.Request) {
	code := model.LobbyCode(mux.Vars(r)["code"])

	lobby, err := h.lobbyController.GetLobby(r.Context(), code)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.LobbyFromModel(lobby))
}

// Join handles POST /api/v1/lobbies/{code}/join
func (h *LobbyHandler) Join(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())
	code := model.LobbyCode(mux.Vars(r)["code"])

	if err := h.lobbyController.JoinLobby(r.Context(), code, *player); err != nil {
		WriteError(w, err)
		return
	}

	lobby, err := h.lobbyController.GetLobby(r.Context(), code)
	if err != nil {
		WriteError(w, err)
		return
	}

	if h.broadcaster != nil {
		h.broadcaster.BroadcastMemberUpdate(lobby)
	}

	response.JSON(w, http.StatusOK, response.LobbyFromModel(lobby))
}

// Leave handles POST /api/v1/lobbies/{code}/leave
func (h *LobbyHandler) Leave(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())
	code := model.LobbyCode(mux.Vars(r)["code"])

	if err := h.lobbyController.LeaveLobby(r.Context(), code, player.ID); err != nil {
		WriteError(w, err)
		return
	}

	if h.broadcaster != nil {
		lobby, err := h.lobbyController.GetLobby(r.Context(), code)
		switch {
		case err == nil:
			h.broadcaster.BroadcastMemberUpdate(lobby)
		case errors.Is(err, model.ErrLobbyNotFound):
			h.broadcaster.CloseLobby(code)
		}
	}

	response.NoContent(w)
}

// UpdateSettings handles PATCH /api/v1/lobbies/{code}/settings
func (h *LobbyHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())
	code := model.LobbyCode(mux.Vars(r)["code"])

	var req request.UpdateSettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	settings, err := req.Resolve()
	if err != nil {
		WriteError(w, err)
		return
	}

	lobby, err := h.lobbyController.UpdateSettings(r.Context(), code, player.ID, settings)
	if err != nil {
		WriteError(w, err)
		return
	}

	if h.broadcaster != nil {
		h.broadcaster.BroadcastRefresh(code)
	}

	response.JSON(w, http.StatusOK, response.LobbyFromModel(lobby))
}

// SetRole handles PATCH /api/v1/lobbies/{code}/members/{player_id}/role
func (h *LobbyHandler) SetRole(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())
	vars := mux.Vars(r)
	code := model.LobbyCode(vars["code"])
	targetID := model.PlayerID(vars["player_id"])

	var req request.SetRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	role := model.LobbyMemberRole(req.Role)
	if role != model.RolePlayer && role != model.RoleSpectator {
		WriteError(w, NewInvalidRequestError("role must be 'player' or 'spectator'"))
		return
	}

	// Members change their own role; the host may change anyone's
	if targetID != player.ID {
		lobby, err := h.lobbyController.GetLobby(r.Context(), code)
		if err != nil {
			WriteError(w, err)
			return
		}
		host := lobby.GetHost()
		if host == nil || host.Player.ID != player.ID {
			WriteError(w, model.ErrNotHost)
			return
		}
	}

	if err := h.lobbyController.SetRole(r.Context(), code, targetID, role); err != nil {
		WriteError(w, err)
		return
	}

	lobby, err := h.lobbyController.GetLobby(r.Context(), code)
	if err != nil {
		WriteError(w, err)
		return
	}

	if h.broadcaster != nil {
		h.broadcaster.BroadcastMemberUpdate(lobby)
	}

	response.JSON(w, http.StatusOK, response.LobbyFromModel(lobby))
}

// TransferHost handles POST /api/v1/lobbies/{code}/transfer-host
func (h *LobbyHandler) TransferHost(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())
	code := model.LobbyCode(mux.Vars(r)["code"])

	var req request.TransferHostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}
	if req.NewHostID == "" {
		WriteError(w, NewInvalidRequestError("new_host_id is required"))
		return
	}

	if err := h.lobbyController.TransferHost(r.Context(), code, player.ID, model.PlayerID(req.NewHostID)); err != nil {
		WriteError(w, err)
		return
	}

	lobby, err := h.lobbyController.GetLobby(r.Context(), code)
	if err != nil {
		WriteError(w, err)
		return
	}

	if h.broadcaster != nil {
		h.broadcaster.BroadcastMemberUpdate(lobby)
	}

	response.JSON(w, http.StatusOK, response.LobbyFromModel(lobby))
}
