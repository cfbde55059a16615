package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gorilla/mux"

	"github.com/gamecenter/minesweeper/internal/api"
	"github.com/gamecenter/minesweeper/internal/config"
	"github.com/gamecenter/minesweeper/internal/factory"
	"github.com/gamecenter/minesweeper/internal/services/auth"
	redisstorage "github.com/gamecenter/minesweeper/internal/storage/redis"
	"github.com/gamecenter/minesweeper/internal/web"
)

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Set up logging with JSON output
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("server stopped")
}

func run(cfg config.Config, logger *slog.Logger) error {
	factoryCfg := factory.Config{
		AuthConfig: auth.Config{
			SessionDuration: cfg.SessionDuration,
			EmbedSecret:     cfg.EmbedTokenSecret,
		},
		Logger:        logger,
		StorageType:   cfg.StorageType,
		AllowedOrigin: cfg.AllowedOrigin,
	}
	if cfg.StorageType == config.StorageRedis {
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = cfg.RedisURL
		factoryCfg.RedisConfig = &redisCfg
	}
	if cfg.EmbedTokenSecret == "" {
		logger.Warn("EMBED_TOKEN_SECRET not set, embed logins are disabled")
	}

	app, err := factory.New(factoryCfg)
	if err != nil {
		return err
	}
	defer func() { _ = app.Close() }()

	r := mux.NewRouter()
	api.Mount(r, api.RouterConfig{
		Logger:          logger,
		AuthService:     app.AuthService,
		LobbyController: app.LobbyController,
		GameController:  app.GameController,
		ChatService:     app.ChatService,
		BotService:      app.BotService,
		Broadcaster:     app.Broadcaster,
		WSHandler:       app.WSHandler,
		Metrics:         app.Metrics,
	})
	api.MountMetrics(r, app.Metrics)
	web.Mount(r, web.RouterConfig{
		Logger:          logger,
		AuthService:     app.AuthService,
		LobbyController: app.LobbyController,
		GameController:  app.GameController,
		ChatService:     app.ChatService,
		BotService:      app.BotService,
		HubManager:      app.HubManager,
		Broadcaster:     app.Broadcaster,
		Metrics:         app.Metrics,
		StaticDir:       cfg.StaticDir,
	})

	serverCfg := api.DefaultServerConfig()
	serverCfg.Port = cfg.Port
	server := api.NewServer(r, serverCfg, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("application ready",
		slog.String("storage", cfg.StorageType),
		slog.String("log_level", cfg.LogLevel.String()),
	)
	return server.Run(ctx)
}
