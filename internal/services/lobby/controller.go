package lobby

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/gamecenter/minesweeper/internal/dependencies/clock"
	"github.com/gamecenter/minesweeper/internal/dependencies/random"
	"github.com/gamecenter/minesweeper/internal/model"
	"github.com/gamecenter/minesweeper/internal/services/game"
	"github.com/gamecenter/minesweeper/internal/storage"
)

const (
	// LobbyCodeLength is the length of generated lobby codes
	LobbyCodeLength = 6
	// LobbyCodeAlphabet is the characters used in lobby codes (avoid confusing chars)
	LobbyCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
)

// Controller manages lobby membership, lobby settings and each player's
// game within the lobby
type Controller struct {
	storage        storage.Storage
	gameController game.ControllerInterface
	clock          clock.Clock
	random         random.Random
	logger         *slog.Logger

	// locks serialises read-modify-write cycles on each lobby
	locksMu sync.Mutex
	locks   map[model.LobbyCode]*sync.Mutex
}

// NewController creates a new LobbyController
func NewController(
	storage storage.Storage,
	gameController game.ControllerInterface,
	clock clock.Clock,
	random random.Random,
	logger *slog.Logger,
) *Controller {
	return &Controller{
		storage:        storage,
		gameController: gameController,
		clock:          clock,
		random:         random,
		logger:         logger,
		locks:          make(map[model.LobbyCode]*sync.Mutex),
	}
}

// CreateLobby creates a new lobby with the given player as host. A nil
// settings uses the default preset.
func (c *Controller) CreateLobby(ctx context.Context, host model.Player, settings *model.Settings) (*model.Lobby, error) {
	lobbySettings := model.DefaultSettings()
	if settings != nil {
		if err := settings.ValidateForEditor(); err != nil {
			return nil, err
		}
		lobbySettings = *settings
	}

	now := c.clock.Now()

	// Generate unique lobby code
	var code model.LobbyCode
	for {
		code = model.LobbyCode(c.random.String(LobbyCodeLength, LobbyCodeAlphabet))
		exists, err := c.storage.LobbyExists(ctx, code)
		if err != nil {
			return nil, err
		}
		if !exists {
			break
		}
	}

	lobby := &model.Lobby{
		Code:     code,
		Settings: lobbySettings,
		Members: []model.LobbyMember{
			{
				Player:   host,
				Role:     model.RolePlayer,
				IsHost:   true,
				JoinedAt: now,
			},
		},
		Games:     make(map[model.PlayerID]model.GameID),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := c.storage.SaveLobby(ctx, lobby); err != nil {
		return nil, err
	}

	c.logger.Info("lobby created",
		slog.String("lobby_code", string(code)),
		slog.String("host_id", string(host.ID)),
		slog.String("settings", lobbySettings.String()),
	)

	return lobby, nil
}

// GetLobby retrieves a lobby by code
func (c *Controller) GetLobby(ctx context.Context, code model.LobbyCode) (*model.Lobby, error) {
	return c.storage.GetLobby(ctx, code)
}

// JoinLobby adds a player to a lobby
func (c *Controller) JoinLobby(ctx context.Context, code model.LobbyCode, player model.Player) error {
	defer c.lock(code)()

	lobby, err := c.storage.GetLobby(ctx, code)
	if err != nil {
		return err
	}

	if lobby.GetMember(player.ID) != nil {
		return model.ErrAlreadyInLobby
	}

	lobby.Members = append(lobby.Members, model.LobbyMember{
		Player:   player,
		Role:     model.RolePlayer,
		IsHost:   false,
		JoinedAt: c.clock.Now(),
	})
	lobby.UpdatedAt = c.clock.Now()

	return c.storage.SaveLobby(ctx, lobby)
}

// LeaveLobby removes a player from a lobby, discarding their game
func (c *Controller) LeaveLobby(ctx context.Context, code model.LobbyCode, playerID model.PlayerID) error {
	defer c.lock(code)()

	lobby, err := c.storage.GetLobby(ctx, code)
	if err != nil {
		return err
	}

	member := lobby.GetMember(playerID)
	if member == nil {
		return model.ErrNotInLobby
	}
	wasHost := member.IsHost

	for i, m := range lobby.Members {
		if m.Player.ID == playerID {
			lobby.Members = append(lobby.Members[:i], lobby.Members[i+1:]...)
			break
		}
	}

	c.discardGame(ctx, lobby, playerID)

	// If no human is left, delete the lobby along with any bots
	if !hasHumans(lobby) {
		for p := range lobby.Games {
			c.discardGame(ctx, lobby, p)
		}
		_ = c.storage.DeleteChatMessages(ctx, code)
		c.logger.Info("lobby closed", slog.String("lobby_code", string(code)))
		if err := c.storage.DeleteLobby(ctx, code); err != nil {
			return err
		}
		c.forgetLock(code)
		return nil
	}

	// If host left, the longest-standing human becomes host
	if wasHost {
		for i := range lobby.Members {
			if !lobby.Members[i].Player.IsBot {
				lobby.Members[i].IsHost = true
				break
			}
		}
	}

	lobby.UpdatedAt = c.clock.Now()
	return c.storage.SaveLobby(ctx, lobby)
}

// SetRole changes a member's role (player/spectator). Becoming a spectator
// abandons the member's game.
func (c *Controller) SetRole(ctx context.Context, code model.LobbyCode, playerID model.PlayerID, role model.LobbyMemberRole) error {
	defer c.lock(code)()

	lobby, err := c.storage.GetLobby(ctx, code)
	if err != nil {
		return err
	}

	member := lobby.GetMember(playerID)
	if member == nil {
		return model.ErrNotInLobby
	}

	member.Role = role
	if role == model.RoleSpectator {
		if gameID, ok := lobby.GameFor(playerID); ok {
			if err := c.gameController.AbandonGame(ctx, gameID); err != nil && !errors.Is(err, model.ErrGameNotFound) {
				return err
			}
		}
	}
	lobby.UpdatedAt = c.clock.Now()

	return c.storage.SaveLobby(ctx, lobby)
}

// TransferHost makes another member the host
func (c *Controller) TransferHost(ctx context.Context, code model.LobbyCode, requestingPlayer model.PlayerID, newHostID model.PlayerID) error {
	defer c.lock(code)()

	lobby, err := c.storage.GetLobby(ctx, code)
	if err != nil {
		return err
	}

	// Verify requester is current host
	currentHost := lobby.GetHost()
	if currentHost == nil || currentHost.Player.ID != requestingPlayer {
		return model.ErrNotHost
	}

	// Verify new host is in lobby
	newHost := lobby.GetMember(newHostID)
	if newHost == nil {
		return model.ErrNotInLobby
	}
	if newHost.Player.IsBot {
		return model.ErrBotCannotHost
	}

	currentHost.IsHost = false
	newHost.IsHost = true
	lobby.UpdatedAt = c.clock.Now()

	return c.storage.SaveLobby(ctx, lobby)
}

// UpdateSettings changes the default board settings for the lobby.
// Games already in progress keep their settings.
func (c *Controller) UpdateSettings(ctx context.Context, code model.LobbyCode, requestingPlayer model.PlayerID, settings model.Settings) (*model.Lobby, error) {
	defer c.lock(code)()

	lobby, err := c.storage.GetLobby(ctx, code)
	if err != nil {
		return nil, err
	}

	host := lobby.GetHost()
	if host == nil || host.Player.ID != requestingPlayer {
		return nil, model.ErrNotHost
	}

	if err := settings.ValidateForEditor(); err != nil {
		return nil, err
	}

	lobby.Settings = settings
	lobby.UpdatedAt = c.clock.Now()

	if err := c.storage.SaveLobby(ctx, lobby); err != nil {
		return nil, err
	}

	c.logger.Info("lobby settings updated",
		slog.String("lobby_code", string(code)),
		slog.String("settings", settings.String()),
	)
	return lobby, nil
}

// StartGame starts or restarts the requesting player's own game. A nil
// override plays with the lobby settings.
func (c *Controller) StartGame(ctx context.Context, code model.LobbyCode, requestingPlayer model.PlayerID, override *model.Settings) (*model.Game, error) {
	defer c.lock(code)()

	lobby, err := c.storage.GetLobby(ctx, code)
	if err != nil {
		return nil, err
	}

	member := lobby.GetMember(requestingPlayer)
	if member == nil {
		return nil, model.ErrNotInLobby
	}
	if member.Role != model.RolePlayer {
		return nil, model.ErrNotPlayerRole
	}

	settings := lobby.Settings
	if override != nil {
		if err := override.ValidateForEditor(); err != nil {
			return nil, err
		}
		settings = *override
	}

	if gameID, ok := lobby.GameFor(requestingPlayer); ok {
		g, err := c.gameController.ResetGame(ctx, gameID, requestingPlayer, settings)
		if err == nil {
			return g, nil
		}
		if !errors.Is(err, model.ErrGameNotFound) {
			return nil, err
		}
		// Game expired from storage; start a fresh one below
	}

	g, err := c.gameController.CreateGame(ctx, code, requestingPlayer, settings)
	if err != nil {
		return nil, err
	}

	if lobby.Games == nil {
		lobby.Games = make(map[model.PlayerID]model.GameID)
	}
	lobby.Games[requestingPlayer] = g.ID
	lobby.UpdatedAt = c.clock.Now()

	if err := c.storage.SaveLobby(ctx, lobby); err != nil {
		return nil, err
	}

	return g, nil
}

// GetPlayerGame returns a member's current game. Any lobby member may view
// any other member's game.
func (c *Controller) GetPlayerGame(ctx context.Context, code model.LobbyCode, requestingPlayer model.PlayerID, target model.PlayerID) (*model.Game, error) {
	lobby, err := c.storage.GetLobby(ctx, code)
	if err != nil {
		return nil, err
	}

	if lobby.GetMember(requestingPlayer) == nil {
		return nil, model.ErrNotInLobby
	}

	gameID, ok := lobby.GameFor(target)
	if !ok {
		return nil, model.ErrGameNotFound
	}
	return c.gameController.GetGame(ctx, gameID)
}

// GameID returns the id of the requesting player's own game
func (c *Controller) GameID(ctx context.Context, code model.LobbyCode, requestingPlayer model.PlayerID) (model.GameID, error) {
	lobby, err := c.storage.GetLobby(ctx, code)
	if err != nil {
		return "", err
	}

	if lobby.GetMember(requestingPlayer) == nil {
		return "", model.ErrNotInLobby
	}

	gameID, ok := lobby.GameFor(requestingPlayer)
	if !ok {
		return "", model.ErrGameNotFound
	}
	return gameID, nil
}

// AbandonGame ends the requesting player's own game without a result
func (c *Controller) AbandonGame(ctx context.Context, code model.LobbyCode, requestingPlayer model.PlayerID) error {
	gameID, err := c.GameID(ctx, code, requestingPlayer)
	if err != nil {
		return err
	}
	return c.gameController.AbandonGame(ctx, gameID)
}

func hasHumans(lobby *model.Lobby) bool {
	for _, m := range lobby.Members {
		if !m.Player.IsBot {
			return true
		}
	}
	return false
}

// lock acquires the per-lobby mutex and returns its release function
func (c *Controller) lock(code model.LobbyCode) func() {
	c.locksMu.Lock()
	mu, ok := c.locks[code]
	if !ok {
		mu = &sync.Mutex{}
		c.locks[code] = mu
	}
	c.locksMu.Unlock()

	mu.Lock()
	return mu.Unlock
}

// forgetLock drops the mutex of a deleted lobby. The caller holds it.
func (c *Controller) forgetLock(code model.LobbyCode) {
	c.locksMu.Lock()
	delete(c.locks, code)
	c.locksMu.Unlock()
}

// discardGame abandons and deletes a player's game and forgets it. The
// caller holds the lobby lock.
func (c *Controller) discardGame(ctx context.Context, lobby *model.Lobby, playerID model.PlayerID) {
	gameID, ok := lobby.GameFor(playerID)
	if !ok {
		return
	}
	_ = c.gameController.AbandonGame(ctx, gameID)
	_ = c.gameController.DeleteGame(ctx, gameID)
	delete(lobby.Games, playerID)
}

// Interface for dependency injection
type ControllerInterface interface {
	CreateLobby(ctx context.Context, host model.Player, settings *model.Settings) (*model.Lobby, error)
	GetLobby(ctx context.Context, code model.LobbyCode) (*model.Lobby, error)
	JoinLobby(ctx context.Context, code model.LobbyCode, player model.Player) error
	LeaveLobby(ctx context.Context, code model.LobbyCode, playerID model.PlayerID) error
	SetRole(ctx context.Context, code model.LobbyCode, playerID model.PlayerID, role model.LobbyMemberRole) error
	TransferHost(ctx context.Context, code model.LobbyCode, requestingPlayer model.PlayerID, newHostID model.PlayerID) error
	UpdateSettings(ctx context.Context, code model.LobbyCode, requestingPlayer model.PlayerID, settings model.Settings) (*model.Lobby, error)
	StartGame(ctx context.Context, code model.LobbyCode, requestingPlayer model.PlayerID, override *model.Settings) (*model.Game, error)
	GetPlayerGame(ctx context.Context, code model.LobbyCode, requestingPlayer model.PlayerID, target model.PlayerID) (*model.Game, error)
	GameID(ctx context.Context, code model.LobbyCode, requestingPlayer model.PlayerID) (model.GameID, error)
	AbandonGame(ctx context.Context, code model.LobbyCode, requestingPlayer model.PlayerID) error
}

var _ ControllerInterface = (*Controller)(nil)
