package game

import (
	"context"
	"log/slog"
	"sync"

	"github.com/gamecenter/minesweeper/internal/dependencies/clock"
	"github.com/gamecenter/minesweeper/internal/dependencies/random"
	"github.com/gamecenter/minesweeper/internal/model"
	"github.com/gamecenter/minesweeper/internal/services/board"
	"github.com/gamecenter/minesweeper/internal/storage"
)

const (
	gameIDLength   = 12
	gameIDAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// StartHook is called after a game is created or reset
type StartHook func(ctx context.Context, game *model.Game)

// EndHook is called once when a game is won or lost
type EndHook func(ctx context.Context, game *model.Game, result model.GameResult)

// MoveHook is called after every accepted reveal or flag toggle
type MoveHook func(ctx context.Context, game *model.Game, kind model.MoveKind, pos model.Position, result model.MoveResult)

// Controller loads games from storage, runs requests through a Session and
// persists the result. Requests for the same game are serialized.
type Controller struct {
	storage      storage.Storage
	boardService board.ServiceInterface
	clock        clock.Clock
	random       random.Random
	logger       *slog.Logger

	locksMu sync.Mutex
	locks   map[model.GameID]*sync.Mutex

	hooksMu    sync.RWMutex
	startHooks []StartHook
	endHooks   []EndHook
	moveHooks  []MoveHook
}

// NewController creates a new GameController
func NewController(
	storage storage.Storage,
	boardService board.ServiceInterface,
	clock clock.Clock,
	random random.Random,
	logger *slog.Logger,
) *Controller {
	return &Controller{
		storage:      storage,
		boardService: boardService,
		clock:        clock,
		random:       random,
		logger:       logger,
		locks:        make(map[model.GameID]*sync.Mutex),
	}
}

// OnGameStart registers a hook for new and reset games
func (c *Controller) OnGameStart(hook StartHook) {
	c.hooksMu.Lock()
	defer c.hooksMu.Unlock()
	c.startHooks = append(c.startHooks, hook)
}

// OnGameEnd registers a hook for won and lost games
func (c *Controller) OnGameEnd(hook EndHook) {
	c.hooksMu.Lock()
	defer c.hooksMu.Unlock()
	c.endHooks = append(c.endHooks, hook)
}

// OnMove registers a hook for accepted moves
func (c *Controller) OnMove(hook MoveHook) {
	c.hooksMu.Lock()
	defer c.hooksMu.Unlock()
	c.moveHooks = append(c.moveHooks, hook)
}

// CreateGame starts a new game for a player in a lobby
func (c *Controller) CreateGame(ctx context.Context, lobbyCode model.LobbyCode, playerID model.PlayerID, settings model.Settings) (*model.Game, error) {
	now := c.clock.Now()
	game := &model.Game{
		ID:        model.GameID(c.random.String(gameIDLength, gameIDAlphabet)),
		LobbyCode: lobbyCode,
		PlayerID:  playerID,
		CreatedAt: now,
	}

	if err := c.newSession(game, nil).StartOrReset(settings); err != nil {
		return nil, err
	}

	if err := c.storage.SaveGame(ctx, game); err != nil {
		c.logger.Error("failed to save game",
			slog.String("game_id", string(game.ID)),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	c.logger.Info("game created",
		slog.String("game_id", string(game.ID)),
		slog.String("lobby_code", string(lobbyCode)),
		slog.String("player_id", string(playerID)),
		slog.String("settings", game.Settings.String()),
	)

	c.notifyStart(ctx, game)
	return game, nil
}

// GetGame retrieves a game by ID
func (c *Controller) GetGame(ctx context.Context, gameID model.GameID) (*model.Game, error) {
	return c.storage.GetGame(ctx, gameID)
}

// ResetGame replaces the player's board with a fresh one using settings
func (c *Controller) ResetGame(ctx context.Context, gameID model.GameID, playerID model.PlayerID, settings model.Settings) (*model.Game, error) {
	unlock := c.lock(gameID)

	game, err := c.loadOwned(ctx, gameID, playerID)
	if err != nil {
		unlock()
		return nil, err
	}

	if err := c.newSession(game, nil).StartOrReset(settings); err != nil {
		unlock()
		return nil, err
	}

	if err := c.storage.SaveGame(ctx, game); err != nil {
		unlock()
		return nil, err
	}
	unlock()

	c.logger.Info("game reset",
		slog.String("game_id", string(gameID)),
		slog.String("settings", game.Settings.String()),
	)

	c.notifyStart(ctx, game)
	return game, nil
}

// Reveal opens a cell on the player's board
func (c *Controller) Reveal(ctx context.Context, gameID model.GameID, playerID model.PlayerID, pos model.Position) (*model.Game, model.MoveResult, error) {
	return c.move(ctx, gameID, playerID, model.MoveReveal, pos)
}

// ToggleFlag flips a flag on the player's board
func (c *Controller) ToggleFlag(ctx context.Context, gameID model.GameID, playerID model.PlayerID, pos model.Position) (*model.Game, model.MoveResult, error) {
	return c.move(ctx, gameID, playerID, model.MoveFlag, pos)
}

func (c *Controller) move(ctx context.Context, gameID model.GameID, playerID model.PlayerID, kind model.MoveKind, pos model.Position) (*model.Game, model.MoveResult, error) {
	unlock := c.lock(gameID)

	game, err := c.loadOwned(ctx, gameID, playerID)
	if err != nil {
		unlock()
		return nil, model.MoveResult{}, err
	}

	var ended *model.GameResult
	session := c.newSession(game, func(result model.GameResult) {
		ended = &result
	})

	var result model.MoveResult
	switch kind {
	case model.MoveReveal:
		result, err = session.RequestReveal(pos)
	case model.MoveFlag:
		result = session.RequestToggleFlag(pos)
	}
	if err != nil {
		unlock()
		c.logger.Warn("reveal rejected",
			slog.String("game_id", string(gameID)),
			slog.String("error", err.Error()),
		)
		return nil, model.MoveResult{}, err
	}

	if !result.Accepted {
		unlock()
		return game, result, nil
	}

	if err := c.storage.SaveGame(ctx, game); err != nil {
		unlock()
		return nil, model.MoveResult{}, err
	}
	unlock()

	if ended != nil {
		c.logger.Info("game finished",
			slog.String("game_id", string(gameID)),
			slog.String("lobby_code", string(game.LobbyCode)),
			slog.String("status", string(ended.Status)),
			slog.Int("elapsed_seconds", ended.ElapsedSeconds),
		)
	}

	c.notify(ctx, game, kind, pos, result, ended)
	return game, result, nil
}

// notify runs hooks outside the game lock with copies of the game, so a
// hook can neither block the next request nor change persisted state
func (c *Controller) notify(ctx context.Context, game *model.Game, kind model.MoveKind, pos model.Position, result model.MoveResult, ended *model.GameResult) {
	c.hooksMu.RLock()
	moveHooks := c.moveHooks
	endHooks := c.endHooks
	c.hooksMu.RUnlock()

	for _, hook := range moveHooks {
		hook(ctx, game.Clone(), kind, pos, result)
	}
	if ended == nil {
		return
	}
	for _, hook := range endHooks {
		hook(ctx, game.Clone(), *ended)
	}
}

func (c *Controller) notifyStart(ctx context.Context, game *model.Game) {
	c.hooksMu.RLock()
	hooks := c.startHooks
	c.hooksMu.RUnlock()

	for _, hook := range hooks {
		hook(ctx, game.Clone())
	}
}

// AbandonGame ends an in-progress game without a result
func (c *Controller) AbandonGame(ctx context.Context, gameID model.GameID) error {
	unlock := c.lock(gameID)
	defer unlock()

	game, err := c.storage.GetGame(ctx, gameID)
	if err != nil {
		return err
	}

	if game.Status.IsTerminal() {
		return nil // Already finished
	}

	now := c.clock.Now()
	game.Status = model.GameStatusAbandoned
	game.EndedAt = now
	game.UpdatedAt = now

	c.logger.Info("game abandoned",
		slog.String("game_id", string(gameID)),
		slog.String("lobby_code", string(game.LobbyCode)),
	)

	return c.storage.SaveGame(ctx, game)
}

// DeleteGame removes a game from storage
func (c *Controller) DeleteGame(ctx context.Context, gameID model.GameID) error {
	if err := c.storage.DeleteGame(ctx, gameID); err != nil {
		return err
	}
	c.locksMu.Lock()
	delete(c.locks, gameID)
	c.locksMu.Unlock()
	return nil
}

// ElapsedSeconds returns the timer value of a game as of now
func (c *Controller) ElapsedSeconds(game *model.Game) int {
	return game.ElapsedSeconds(c.clock.Now())
}

func (c *Controller) newSession(game *model.Game, onEnd EndFunc) *Session {
	return NewSession(game, c.boardService, c.clock, onEnd)
}

func (c *Controller) loadOwned(ctx context.Context, gameID model.GameID, playerID model.PlayerID) (*model.Game, error) {
	game, err := c.storage.GetGame(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if game.PlayerID != playerID {
		return nil, model.ErrNotGameOwner
	}
	return game, nil
}

// lock acquires the per-game mutex and returns its release function
func (c *Controller) lock(gameID model.GameID) func() {
	c.locksMu.Lock()
	mu, ok := c.locks[gameID]
	if !ok {
		mu = &sync.Mutex{}
		c.locks[gameID] = mu
	}
	c.locksMu.Unlock()

	mu.Lock()
	return mu.Unlock
}

// Interface for dependency injection
type ControllerInterface interface {
	CreateGame(ctx context.Context, lobbyCode model.LobbyCode, playerID model.PlayerID, settings model.Settings) (*model.Game, error)
	GetGame(ctx context.Context, gameID model.GameID) (*model.Game, error)
	ResetGame(ctx context.Context, gameID model.GameID, playerID model.PlayerID, settings model.Settings) (*model.Game, error)
	Reveal(ctx context.Context, gameID model.GameID, playerID model.PlayerID, pos model.Position) (*model.Game, model.MoveResult, error)
	ToggleFlag(ctx context.Context, gameID model.GameID, playerID model.PlayerID, pos model.Position) (*model.Game, model.MoveResult, error)
	AbandonGame(ctx context.Context, gameID model.GameID) error
	DeleteGame(ctx context.Context, gameID model.GameID) error
	ElapsedSeconds(game *model.Game) int
	OnGameStart(hook StartHook)
	OnGameEnd(hook EndHook)
	OnMove(hook MoveHook)
}

var _ ControllerInterface = (*Controller)(nil)
