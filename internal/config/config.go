package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Storage backends
const (
	StorageMemory = "memory"
	StorageRedis  = "redis"
)

// Config holds server settings read from the environment
type Config struct {
	Port             int
	StorageType      string
	RedisURL         string
	EmbedTokenSecret string
	SessionDuration  time.Duration
	LogLevel         slog.Level
	StaticDir        string
	// AllowedOrigin is the extra Origin accepted on WebSocket upgrades,
	// for pages embedded by the game center
	AllowedOrigin string
}

// Default returns the settings used when nothing is set
func Default() Config {
	return Config{
		Port:            8080,
		StorageType:     StorageMemory,
		SessionDuration: 24 * time.Hour,
		LogLevel:        slog.LevelInfo,
	}
}

// Load reads .env files (if present) into the process environment and
// then parses the environment. Variables already set win over .env.
func Load(files ...string) (Config, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("loading env file: %w", err)
	}
	return FromEnv(os.Getenv)
}

// FromEnv parses settings using getenv for lookups
func FromEnv(getenv func(string) string) (Config, error) {
	cfg := Default()

	if v := getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil || port <= 0 || port > 65535 {
			return Config{}, fmt.Errorf("invalid PORT %q", v)
		}
		cfg.Port = port
	}

	if v := getenv("STORAGE_TYPE"); v != "" {
		cfg.StorageType = strings.ToLower(v)
	}
	switch cfg.StorageType {
	case StorageMemory:
	case StorageRedis:
		cfg.RedisURL = getenv("REDIS_URL")
		if cfg.RedisURL == "" {
			return Config{}, errors.New("REDIS_URL required when STORAGE_TYPE=redis")
		}
	default:
		return Config{}, fmt.Errorf("invalid STORAGE_TYPE %q: must be 'memory' or 'redis'", cfg.StorageType)
	}

	cfg.EmbedTokenSecret = getenv("EMBED_TOKEN_SECRET")

	if v := getenv("SESSION_DURATION"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return Config{}, fmt.Errorf("invalid SESSION_DURATION %q", v)
		}
		cfg.SessionDuration = d
	}

	if v := getenv("LOG_LEVEL"); v != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(v)); err != nil {
			return Config{}, fmt.Errorf("invalid LOG_LEVEL %q", v)
		}
	}

	cfg.StaticDir = getenv("STATIC_DIR")
	cfg.AllowedOrigin = getenv("ALLOWED_ORIGIN")

	return cfg, nil
}
