package main

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/partylobby/internal/factory"
)

func envOf(vars map[string]string) func(string) string {
	return func(key string) string { return vars[key] }
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := loadConfig(envOf(map[string]string{"STATIC_DIR": "dist"}))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 4, cfg.Factory.DefaultCapacity)
	assert.Equal(t, 10*time.Second, cfg.Factory.PingInterval)
	assert.Equal(t, 10*time.Minute, cfg.Factory.LobbyIdleTimeout)
	assert.Empty(t, cfg.Factory.AllowedOrigins)
	assert.Nil(t, cfg.Factory.RedisConfig)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Equal(t, "dist", cfg.StaticDir)
}

func TestLoadConfigOverrides(t *testing.T) {
	cfg, err := loadConfig(envOf(map[string]string{
		"PORT":                "9000",
		"HOST":                "127.0.0.1",
		"LOBBY_CAPACITY":      "6",
		"LOBBY_PING_INTERVAL": "3s",
		"LOBBY_IDLE_TIMEOUT":  "90s",
		"ALLOWED_ORIGINS":     "http://localhost:5173, https://play.example.com,",
		"STORAGE_TYPE":        "redis",
		"REDIS_URL":           "redis://cache:6379/1",
		"LOG_LEVEL":           "debug",
	}))
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, 6, cfg.Factory.DefaultCapacity)
	assert.Equal(t, 3*time.Second, cfg.Factory.PingInterval)
	assert.Equal(t, 90*time.Second, cfg.Factory.LobbyIdleTimeout)
	assert.Equal(t, []string{"http://localhost:5173", "https://play.example.com"}, cfg.Factory.AllowedOrigins)
	assert.Equal(t, factory.StorageTypeRedis, cfg.Factory.StorageType)
	require.NotNil(t, cfg.Factory.RedisConfig)
	assert.Equal(t, "redis://cache:6379/1", cfg.Factory.RedisConfig.URL)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"bad port", map[string]string{"PORT": "http"}},
		{"port out of range", map[string]string{"PORT": "70000"}},
		{"zero capacity", map[string]string{"LOBBY_CAPACITY": "0"}},
		{"bad capacity", map[string]string{"LOBBY_CAPACITY": "four"}},
		{"bad interval", map[string]string{"LOBBY_PING_INTERVAL": "10"}},
		{"bad idle timeout", map[string]string{"LOBBY_IDLE_TIMEOUT": "soon"}},
		{"negative idle timeout", map[string]string{"LOBBY_IDLE_TIMEOUT": "-1m"}},
		{"redis without url", map[string]string{"STORAGE_TYPE": "redis"}},
		{"unknown storage", map[string]string{"STORAGE_TYPE": "postgres"}},
		{"bad log level", map[string]string{"LOG_LEVEL": "chatty"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := loadConfig(envOf(tt.env))
			assert.Error(t, err)
		})
	}
}

func TestLoadConfigIdleTimeoutCanBeDisabled(t *testing.T) {
	cfg, err := loadConfig(envOf(map[string]string{"LOBBY_IDLE_TIMEOUT": "0"}))
	require.NoError(t, err)
	assert.Zero(t, cfg.Factory.LobbyIdleTimeout)
}
