package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envMap(values map[string]string) func(string) string {
	return func(key string) string { return values[key] }
}

func TestFromEnvDefaults(t *testing.T) {
	cfg, err := FromEnv(envMap(nil))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestFromEnvParsesValues(t *testing.T) {
	cfg, err := FromEnv(envMap(map[string]string{
		"PORT":               "9090",
		"STORAGE_TYPE":       "Redis",
		"REDIS_URL":          "redis://localhost:6379/0",
		"EMBED_TOKEN_SECRET": "s3cret",
		"SESSION_DURATION":   "2h",
		"LOG_LEVEL":          "debug",
		"STATIC_DIR":         "/srv/static",
		"ALLOWED_ORIGIN":     "https://games.example.com",
	}))
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, StorageRedis, cfg.StorageType)
	assert.Equal(t, "redis://localhost:6379/0", cfg.RedisURL)
	assert.Equal(t, "s3cret", cfg.EmbedTokenSecret)
	assert.Equal(t, 2*time.Hour, cfg.SessionDuration)
	assert.Equal(t, "https://games.example.com", cfg.AllowedOrigin)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, "/srv/static", cfg.StaticDir)
}

func TestFromEnvRejectsBadValues(t *testing.T) {
	for name, env := range map[string]map[string]string{
		"port":             {"PORT": "eighty"},
		"port range":       {"PORT": "70000"},
		"storage":          {"STORAGE_TYPE": "postgres"},
		"redis url":        {"STORAGE_TYPE": "redis"},
		"session duration": {"SESSION_DURATION": "forever"},
		"log level":        {"LOG_LEVEL": "loud"},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := FromEnv(envMap(env))
			assert.Error(t, err)
		})
	}
}

func TestLoadReadsEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("MINES_TEST_ONLY=1\nSTATIC_DIR=/from/dotenv\n"), 0o600))
	t.Setenv("STATIC_DIR", "")
	require.NoError(t, os.Unsetenv("STATIC_DIR"))
	t.Cleanup(func() { _ = os.Unsetenv("MINES_TEST_ONLY") })

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/from/dotenv", cfg.StaticDir)
}

func TestLoadIgnoresMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	assert.NoError(t, err)
}
