package bot

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/gamecenter/minesweeper/internal/dependencies/clock"
	"github.com/gamecenter/minesweeper/internal/dependencies/random"
	"github.com/gamecenter/minesweeper/internal/model"
	"github.com/gamecenter/minesweeper/internal/services/game"
	"github.com/gamecenter/minesweeper/internal/services/lobby"
	"github.com/gamecenter/minesweeper/internal/storage"
)

const (
	// PlayerIDAlphabet is the character set for generating bot player IDs
	PlayerIDAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"
	// PlayerIDLength is the length of generated bot player IDs
	PlayerIDLength = 16
	// MaxBotMoves caps a single PlayGame run at one move per cell of the
	// largest board
	MaxBotMoves = model.MaxBoardDimension * model.MaxBoardDimension
)

// BotAction is a move a bot made during PlayGame
type BotAction struct {
	Kind     model.MoveKind
	Position model.Position
	Outcome  model.MoveOutcome
}

// Service manages bot players. A bot is a lobby member with the player
// role that plays its own board on request of the host.
type Service struct {
	storage         storage.Storage
	lobbyController lobby.ControllerInterface
	gameController  game.ControllerInterface
	strategies      map[string]Strategy
	clock           clock.Clock
	random          random.Random
	logger          *slog.Logger
}

// NewService creates a new bot Service
func NewService(
	store storage.Storage,
	lobbyController lobby.ControllerInterface,
	gameController game.ControllerInterface,
	strategies map[string]Strategy,
	clk clock.Clock,
	rnd random.Random,
	logger *slog.Logger,
) *Service {
	return &Service{
		storage:         store,
		lobbyController: lobbyController,
		gameController:  gameController,
		strategies:      strategies,
		clock:           clk,
		random:          rnd,
		logger:          logger.With(slog.String("component", "bot-service")),
	}
}

// DefaultStrategies returns the built-in strategies keyed by name
func DefaultStrategies(rnd random.Random) map[string]Strategy {
	return map[string]Strategy{
		StrategyRandom: NewRandomStrategy(rnd),
		StrategyLogic:  NewLogicStrategy(rnd),
	}
}

// CreateBotPlayer creates a new bot player and saves it to storage
func (s *Service) CreateBotPlayer(ctx context.Context, displayName string, strategy string) (*model.Player, error) {
	player := &model.Player{
		ID:          model.PlayerID("bot-" + s.random.String(PlayerIDLength, PlayerIDAlphabet)),
		DisplayName: displayName,
		IsGuest:     true,
		IsBot:       true,
		BotStrategy: strategy,
		CreatedAt:   s.clock.Now(),
	}

	if err := s.storage.SavePlayer(ctx, player); err != nil {
		return nil, err
	}

	return player, nil
}

// AddBotToLobby creates a bot player and adds it to the lobby. Only the
// host can add bots. An empty strategy uses DefaultStrategy.
func (s *Service) AddBotToLobby(ctx context.Context, code model.LobbyCode, requestingPlayerID model.PlayerID, strategy string) (*model.Player, error) {
	if strategy == "" {
		strategy = DefaultStrategy
	}
	if _, ok := s.strategies[strategy]; !ok {
		return nil, fmt.Errorf("%w: %s", model.ErrUnknownBotStrategy, strategy)
	}

	lob, err := s.requireHost(ctx, code, requestingPlayerID)
	if err != nil {
		return nil, err
	}

	// Count existing bots for naming
	botCount := 0
	for _, m := range lob.Members {
		if m.Player.IsBot {
			botCount++
		}
	}

	displayName := fmt.Sprintf("Bot %d", botCount+1)
	bot, err := s.CreateBotPlayer(ctx, displayName, strategy)
	if err != nil {
		return nil, err
	}

	if err := s.lobbyController.JoinLobby(ctx, code, *bot); err != nil {
		return nil, err
	}

	s.logger.Info("bot added to lobby",
		slog.String("lobby_code", string(code)),
		slog.String("bot_id", string(bot.ID)),
		slog.String("bot_name", displayName),
		slog.String("strategy", strategy),
	)

	return bot, nil
}

// RemoveBotFromLobby removes a bot player and its game from the lobby.
// Only the host can remove bots.
func (s *Service) RemoveBotFromLobby(ctx context.Context, code model.LobbyCode, requestingPlayerID model.PlayerID, botPlayerID model.PlayerID) error {
	lob, err := s.requireHost(ctx, code, requestingPlayerID)
	if err != nil {
		return err
	}

	member := lob.GetMember(botPlayerID)
	if member == nil {
		return model.ErrNotInLobby
	}
	if !member.Player.IsBot {
		return model.ErrNotBot
	}

	if err := s.lobbyController.LeaveLobby(ctx, code, botPlayerID); err != nil {
		return err
	}
	_ = s.storage.DeletePlayer(ctx, botPlayerID)
	return nil
}

// PlayGame starts (or restarts) a bot's board and plays it until the game
// is over. A nil override uses the lobby settings. The returned actions
// list every accepted move in order; the game hooks fire for each of
// them as for a human player.
func (s *Service) PlayGame(ctx context.Context, code model.LobbyCode, requestingPlayerID model.PlayerID, botPlayerID model.PlayerID, override *model.Settings) (*model.Game, []BotAction, error) {
	lob, err := s.requireHost(ctx, code, requestingPlayerID)
	if err != nil {
		return nil, nil, err
	}

	member := lob.GetMember(botPlayerID)
	if member == nil {
		return nil, nil, model.ErrNotInLobby
	}
	if !member.Player.IsBot {
		return nil, nil, model.ErrNotBot
	}
	strategy := s.strategyForPlayer(&member.Player)

	g, err := s.lobbyController.StartGame(ctx, code, botPlayerID, override)
	if err != nil {
		return nil, nil, err
	}

	var actions []BotAction
	for range MaxBotMoves {
		if g.Status.IsTerminal() {
			break
		}

		move, ok := strategy.NextMove(g.View())
		if !ok {
			break
		}

		var result model.MoveResult
		switch move.Kind {
		case model.MoveFlag:
			g, result, err = s.gameController.ToggleFlag(ctx, g.ID, botPlayerID, move.Position)
		default:
			g, result, err = s.gameController.Reveal(ctx, g.ID, botPlayerID, move.Position)
		}
		if err != nil {
			return nil, actions, err
		}
		if !result.Accepted {
			break // stale view
		}

		actions = append(actions, BotAction{
			Kind:     move.Kind,
			Position: move.Position,
			Outcome:  result.Outcome,
		})
	}

	s.logger.Info("bot finished playing",
		slog.String("lobby_code", string(code)),
		slog.String("bot_id", string(botPlayerID)),
		slog.String("status", string(g.Status)),
		slog.Int("moves", len(actions)),
	)

	return g, actions, nil
}

func (s *Service) requireHost(ctx context.Context, code model.LobbyCode, playerID model.PlayerID) (*model.Lobby, error) {
	lob, err := s.lobbyController.GetLobby(ctx, code)
	if err != nil {
		return nil, err
	}
	host := lob.GetHost()
	if host == nil || host.Player.ID != playerID {
		return nil, model.ErrNotHost
	}
	return lob, nil
}

// strategyForPlayer returns the strategy for a bot player, falling back to
// DefaultStrategy if the player's strategy is not registered
func (s *Service) strategyForPlayer(player *model.Player) Strategy {
	if st, ok := s.strategies[player.BotStrategy]; ok {
		return st
	}
	if st, ok := s.strategies[DefaultStrategy]; ok {
		return st
	}
	for _, st := range s.strategies {
		return st
	}
	return NewLogicStrategy(s.random)
}
