package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/gamecenter/minesweeper/internal/api/handler"
	"github.com/gamecenter/minesweeper/internal/api/middleware"
	"github.com/gamecenter/minesweeper/internal/metrics"
	sharedmw "github.com/gamecenter/minesweeper/internal/middleware"
	"github.com/gamecenter/minesweeper/internal/services/auth"
	"github.com/gamecenter/minesweeper/internal/services/bot"
	"github.com/gamecenter/minesweeper/internal/services/chat"
	"github.com/gamecenter/minesweeper/internal/services/game"
	"github.com/gamecenter/minesweeper/internal/services/lobby"
	"github.com/gamecenter/minesweeper/internal/web/sse"
	"github.com/gamecenter/minesweeper/internal/web/ws"
)

// RouterConfig holds configuration for the API router. BotService,
// Broadcaster, WSHandler and Metrics are optional.
type RouterConfig struct {
	Logger          *slog.Logger
	AuthService     *auth.Service
	LobbyController lobby.ControllerInterface
	GameController  game.ControllerInterface
	ChatService     *chat.Service
	BotService      *bot.Service
	Broadcaster     *sse.Broadcaster
	WSHandler       *ws.Handler
	Metrics         *metrics.Metrics
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()
	Mount(r, cfg)
	return r
}

// Mount registers the API routes under /api/v1 on an existing router
func Mount(r *mux.Router, cfg RouterConfig) {
	// Create handlers
	playerHandler := handler.NewPlayerHandler(cfg.AuthService)
	lobbyHandler := handler.NewLobbyHandler(cfg.LobbyController, cfg.Broadcaster)
	gameHandler := handler.NewGameHandler(cfg.LobbyController, cfg.GameController, cfg.Broadcaster)
	chatHandler := handler.NewChatHandler(cfg.ChatService, cfg.LobbyController, cfg.WSHandler)

	// Create middleware
	authMiddleware := middleware.Auth(cfg.AuthService)
	optionalAuthMiddleware := middleware.OptionalAuth(cfg.AuthService)
	loggingMiddleware := sharedmw.Logging(cfg.Logger)
	recoveryMiddleware := middleware.Recovery(cfg.Logger)

	// API subrouter with common middleware
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(recoveryMiddleware)
	api.Use(loggingMiddleware)
	if cfg.Metrics != nil {
		api.Use(sharedmw.Metrics(cfg.Metrics))
	}

	// Player routes (no auth required for creating players/logging in)
	api.HandleFunc("/players/guest", playerHandler.CreateGuest).Methods(http.MethodPost)
	api.HandleFunc("/players/register", playerHandler.Register).Methods(http.MethodPost)
	api.HandleFunc("/players/login", playerHandler.Login).Methods(http.MethodPost)
	api.HandleFunc("/players/embed", playerHandler.Embed).Methods(http.MethodPost)
	api.Handle("/players/logout", optionalAuthMiddleware(http.HandlerFunc(playerHandler.Logout))).Methods(http.MethodPost)

	// Protected player routes
	playerProtected := api.PathPrefix("/players").Subrouter()
	playerProtected.Use(authMiddleware)
	playerProtected.HandleFunc("/me", playerHandler.GetMe).Methods(http.MethodGet)

	// Lobby routes (all require auth)
	lobbies := api.PathPrefix("/lobbies").Subrouter()
	lobbies.Use(authMiddleware)
	lobbies.HandleFunc("", lobbyHandler.Create).Methods(http.MethodPost)
	lobbies.HandleFunc("/{code}", lobbyHandler.Get).Methods(http.MethodGet)
	lobbies.HandleFunc("/{code}/join", lobbyHandler.Join).Methods(http.MethodPost)
	lobbies.HandleFunc("/{code}/leave", lobbyHandler.Leave).Methods(http.MethodPost)
	lobbies.HandleFunc("/{code}/settings", lobbyHandler.UpdateSettings).Methods(http.MethodPatch)
	lobbies.HandleFunc("/{code}/members/{player_id}/role", lobbyHandler.SetRole).Methods(http.MethodPatch)
	lobbies.HandleFunc("/{code}/transfer-host", lobbyHandler.TransferHost).Methods(http.MethodPost)

	// Game routes (all require auth)
	lobbies.HandleFunc("/{code}/game", gameHandler.Start).Methods(http.MethodPost)
	lobbies.HandleFunc("/{code}/game", gameHandler.Get).Methods(http.MethodGet)
	lobbies.HandleFunc("/{code}/game", gameHandler.Abandon).Methods(http.MethodDelete)
	lobbies.HandleFunc("/{code}/game/reveal", gameHandler.Reveal).Methods(http.MethodPost)
	lobbies.HandleFunc("/{code}/game/flag", gameHandler.Flag).Methods(http.MethodPost)
	lobbies.HandleFunc("/{code}/games/{player_id}", gameHandler.GetPlayerGame).Methods(http.MethodGet)

	// Bot routes (host only)
	if cfg.BotService != nil {
		botHandler := handler.NewBotHandler(cfg.BotService, cfg.LobbyController, cfg.GameController, cfg.Broadcaster)
		lobbies.HandleFunc("/{code}/bots", botHandler.Add).Methods(http.MethodPost)
		lobbies.HandleFunc("/{code}/bots/{player_id}", botHandler.Remove).Methods(http.MethodDelete)
		lobbies.HandleFunc("/{code}/bots/{player_id}/game", botHandler.Play).Methods(http.MethodPost)
	}

	// Chat and live updates
	lobbies.HandleFunc("/{code}/chat", chatHandler.Post).Methods(http.MethodPost)
	lobbies.HandleFunc("/{code}/chat", chatHandler.History).Methods(http.MethodGet)
	lobbies.HandleFunc("/{code}/ws", chatHandler.Socket).Methods(http.MethodGet)

	// Health check endpoint (no auth)
	api.HandleFunc("/health", healthHandler).Methods(http.MethodGet)
}

// MountMetrics exposes the Prometheus scrape endpoint at /metrics
func MountMetrics(r *mux.Router, m *metrics.Metrics) {
	if m == nil {
		return
	}
	r.Handle("/metrics", m.Handler()).Methods(http.MethodGet)
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
