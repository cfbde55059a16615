package web

import (
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/gamecenter/minesweeper/internal/metrics"
	sharedmw "github.com/gamecenter/minesweeper/internal/middleware"
	"github.com/gamecenter/minesweeper/internal/services/auth"
	"github.com/gamecenter/minesweeper/internal/services/bot"
	"github.com/gamecenter/minesweeper/internal/services/chat"
	"github.com/gamecenter/minesweeper/internal/services/game"
	"github.com/gamecenter/minesweeper/internal/services/lobby"
	"github.com/gamecenter/minesweeper/internal/web/handler"
	"github.com/gamecenter/minesweeper/internal/web/middleware"
	"github.com/gamecenter/minesweeper/internal/web/sse"
	"github.com/gamecenter/minesweeper/internal/web/static"
)

// RouterConfig holds configuration for the web router
type RouterConfig struct {
	Logger          *slog.Logger
	AuthService     *auth.Service
	LobbyController lobby.ControllerInterface
	GameController  game.ControllerInterface
	ChatService     *chat.Service
	BotService      *bot.Service
	HubManager      *sse.HubManager
	Broadcaster     *sse.Broadcaster
	Metrics         *metrics.Metrics // optional
	StaticDir       string           // serves the built-in assets when empty
}

// NewRouter creates a new web router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()
	Mount(r, cfg)
	return r
}

// Mount registers the web routes on an existing router
func Mount(r *mux.Router, cfg RouterConfig) {
	hubManager := cfg.HubManager
	if hubManager == nil {
		hubManager = sse.NewHubManager(cfg.Logger)
	}
	broadcaster := cfg.Broadcaster
	if broadcaster == nil {
		broadcaster = sse.NewBroadcaster(hubManager, cfg.Logger)
	}

	// Create middleware
	loggingMiddleware := middleware.Logging(cfg.Logger)
	recoveryMiddleware := middleware.Recovery(cfg.Logger)
	flashMiddleware := middleware.Flash()
	authMiddleware := middleware.Auth(cfg.AuthService)
	optionalAuthMiddleware := middleware.OptionalAuth(cfg.AuthService)
	memberMiddleware := middleware.RequireMember(cfg.LobbyController)

	var observer sharedmw.RequestObserver
	if cfg.Metrics != nil {
		observer = cfg.Metrics
	}
	metricsMiddleware := middleware.Metrics(observer)

	// Create handlers
	homeHandler := handler.NewHomeHandler()
	authHandler := handler.NewAuthHandler(cfg.AuthService, cfg.Logger)
	lobbyHandler := handler.NewLobbyHandler(cfg.LobbyController, cfg.GameController, cfg.ChatService, hubManager, broadcaster, cfg.Logger)
	gameHandler := handler.NewGameHandler(cfg.LobbyController, cfg.GameController, broadcaster, cfg.Logger)
	botHandler := handler.NewBotHandler(cfg.BotService, cfg.LobbyController, broadcaster, cfg.Logger)

	// Static files
	r.PathPrefix("/static/").Handler(http.StripPrefix("/static/", staticHandler(cfg.StaticDir)))

	site := r.NewRoute().Subrouter()
	site.Use(recoveryMiddleware)
	site.Use(loggingMiddleware)
	site.Use(metricsMiddleware)
	site.Use(flashMiddleware)

	// Public routes (optional auth for showing player info in nav)
	public := site.NewRoute().Subrouter()
	public.Use(optionalAuthMiddleware)
	public.HandleFunc("/", homeHandler.Home).Methods(http.MethodGet)
	public.HandleFunc("/login", authHandler.LoginPage).Methods(http.MethodGet)
	public.HandleFunc("/login", authHandler.Login).Methods(http.MethodPost)
	public.HandleFunc("/register", authHandler.RegisterPage).Methods(http.MethodGet)
	public.HandleFunc("/register", authHandler.Register).Methods(http.MethodPost)
	public.HandleFunc("/embed", authHandler.Embed).Methods(http.MethodGet)
	public.HandleFunc("/auth/guest", authHandler.CreateGuest).Methods(http.MethodPost)
	public.HandleFunc("/auth/logout", authHandler.Logout).Methods(http.MethodPost)

	// Protected routes (require auth)
	protected := site.NewRoute().Subrouter()
	protected.Use(authMiddleware)
	protected.HandleFunc("/lobby", lobbyHandler.Create).Methods(http.MethodPost)
	protected.HandleFunc("/lobby/join", lobbyHandler.JoinByForm).Methods(http.MethodPost)
	protected.HandleFunc("/lobby/{code}", lobbyHandler.View).Methods(http.MethodGet)
	protected.HandleFunc("/lobby/{code}/leave", lobbyHandler.Leave).Methods(http.MethodPost)

	// Member routes (require lobby membership)
	member := protected.PathPrefix("/lobby/{code}").Subrouter()
	member.Use(memberMiddleware)
	member.HandleFunc("/settings", lobbyHandler.SettingsFragment).Methods(http.MethodGet)
	member.HandleFunc("/settings", lobbyHandler.UpdateSettings).Methods(http.MethodPost)
	member.HandleFunc("/role", lobbyHandler.SetRole).Methods(http.MethodPost)
	member.HandleFunc("/transfer-host", lobbyHandler.TransferHost).Methods(http.MethodPost)
	member.HandleFunc("/members", lobbyHandler.Members).Methods(http.MethodGet)
	member.HandleFunc("/bots", botHandler.Add).Methods(http.MethodPost)
	member.HandleFunc("/bots/{player_id}/play", botHandler.Play).Methods(http.MethodPost)
	member.HandleFunc("/bots/{player_id}/remove", botHandler.Remove).Methods(http.MethodPost)
	member.HandleFunc("/chat", lobbyHandler.Chat).Methods(http.MethodGet)
	member.HandleFunc("/chat", lobbyHandler.PostChat).Methods(http.MethodPost)
	member.HandleFunc("/events", lobbyHandler.Events).Methods(http.MethodGet)

	member.HandleFunc("/game/start", gameHandler.Start).Methods(http.MethodPost)
	member.HandleFunc("/game/move", gameHandler.Move).Methods(http.MethodPost)
	member.HandleFunc("/game/abandon", gameHandler.Abandon).Methods(http.MethodPost)
	member.HandleFunc("/board", gameHandler.Board).Methods(http.MethodGet)
	member.HandleFunc("/watch/{player_id}", gameHandler.Watch).Methods(http.MethodGet)
	member.HandleFunc("/games/{player_id}/board", gameHandler.WatchBoard).Methods(http.MethodGet)
}

func staticHandler(dir string) http.Handler {
	if dir != "" {
		return http.FileServer(http.Dir(dir))
	}
	return http.FileServerFS(fs.FS(static.Files))
}
