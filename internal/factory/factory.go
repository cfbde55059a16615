package factory

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/gamecenter/minesweeper/internal/dependencies/clock"
	"github.com/gamecenter/minesweeper/internal/dependencies/random"
	"github.com/gamecenter/minesweeper/internal/metrics"
	"github.com/gamecenter/minesweeper/internal/model"
	"github.com/gamecenter/minesweeper/internal/services/auth"
	"github.com/gamecenter/minesweeper/internal/services/board"
	"github.com/gamecenter/minesweeper/internal/services/bot"
	"github.com/gamecenter/minesweeper/internal/services/chat"
	"github.com/gamecenter/minesweeper/internal/services/game"
	"github.com/gamecenter/minesweeper/internal/services/lobby"
	"github.com/gamecenter/minesweeper/internal/storage"
	"github.com/gamecenter/minesweeper/internal/storage/memory"
	redisstorage "github.com/gamecenter/minesweeper/internal/storage/redis"
	"github.com/gamecenter/minesweeper/internal/web/sse"
	"github.com/gamecenter/minesweeper/internal/web/ws"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock  clock.Clock
	Random random.Random

	// Services
	BoardService    *board.Service
	GameController  *game.Controller
	LobbyController *lobby.Controller
	AuthService     *auth.Service
	ChatService     *chat.Service
	BotService      *bot.Service

	// Live updates and observability
	HubManager  *sse.HubManager
	Broadcaster *sse.Broadcaster
	WSHandler   *ws.Handler
	Metrics     *metrics.Metrics
}

// Config holds configuration for the application factory
type Config struct {
	// AuthConfig holds configuration for the auth service (optional)
	// If zero value, defaults to auth.DefaultConfig()
	AuthConfig auth.Config
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory" or "redis")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// AllowedOrigin is the extra page origin allowed to open WebSockets,
	// typically the host game center embedding the board
	AllowedOrigin string
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	// Create storage based on type
	var store storage.Storage
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		store = memory.New()
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisStore, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, err
		}
		store = redisStore
	default:
		return nil, errors.New("invalid StorageType: must be 'memory' or 'redis'")
	}

	// Create external dependencies
	clk := clock.New()
	rnd := random.New()

	// Fill in defaults the caller left unset
	authCfg := cfg.AuthConfig
	if authCfg.SessionDuration == 0 {
		authCfg.SessionDuration = auth.DefaultConfig().SessionDuration
	}

	return newWithDependencies(store, clk, rnd, authCfg, cfg.AllowedOrigin, logger), nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(
	store storage.Storage,
	clk clock.Clock,
	rnd random.Random,
	authCfg auth.Config,
	allowedOrigin string,
	logger *slog.Logger,
) *App {
	// Create services
	boardService := board.New(rnd)
	gameController := game.NewController(store, boardService, clk, rnd, logger)
	lobbyController := lobby.NewController(store, gameController, clk, rnd, logger)
	authService := auth.New(store, clk, authCfg)
	chatService := chat.New(store, clk, rnd, logger)
	botService := bot.NewService(store, lobbyController, gameController, bot.DefaultStrategies(rnd), clk, rnd, logger)

	// Live updates follow the game and chat hooks
	hubManager := sse.NewHubManager(logger)
	broadcaster := sse.NewBroadcaster(hubManager, logger)
	broadcaster.Attach(gameController, chatService)
	wsHandler := ws.NewHandler(hubManager, chatService, allowedOrigin, logger)

	m := metrics.New()
	m.Observe(gameController)
	chatService.OnPost(func(context.Context, *model.ChatMessage) {
		m.ChatMessages.Inc()
	})

	return &App{
		Storage:         store,
		Clock:           clk,
		Random:          rnd,
		BoardService:    boardService,
		GameController:  gameController,
		LobbyController: lobbyController,
		AuthService:     authService,
		ChatService:     chatService,
		BotService:      botService,
		HubManager:      hubManager,
		Broadcaster:     broadcaster,
		WSHandler:       wsHandler,
		Metrics:         m,
	}
}

// Close releases the storage connection, if any
func (a *App) Close() error {
	if closer, ok := a.Storage.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
