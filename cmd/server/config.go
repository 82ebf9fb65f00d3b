package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/mcoot/partylobby/internal/api"
	"github.com/mcoot/partylobby/internal/factory"
	"github.com/mcoot/partylobby/internal/model"
	redisstorage "github.com/mcoot/partylobby/internal/storage/redis"
	"github.com/mcoot/partylobby/internal/transport/ws"
)

const defaultLobbyIdleTimeout = 10 * time.Minute

// serverConfig is everything main needs, read from the environment
type serverConfig struct {
	Server    api.ServerConfig
	Factory   factory.Config
	StaticDir string
	LogLevel  slog.Level
}

// loadConfig reads the environment through getenv.
//
//	PORT                 listen port (8080)
//	HOST                 listen host (all interfaces)
//	STATIC_DIR           client bundle directory (auto-detected)
//	LOBBY_CAPACITY       players that start a round (4)
//	LOBBY_PING_INTERVAL  liveness sweep period (10s)
//	LOBBY_IDLE_TIMEOUT   removal delay for abandoned lobbies, 0 disables (10m)
//	ALLOWED_ORIGINS      comma-separated extra browser origins, or * (none)
//	STORAGE_TYPE         memory or redis (memory)
//	REDIS_URL            required for redis
//	LOG_LEVEL            debug, info, warn or error (info)
func loadConfig(getenv func(string) string) (serverConfig, error) {
	cfg := serverConfig{
		Server: api.DefaultServerConfig(),
		Factory: factory.Config{
			StorageType:      getenv("STORAGE_TYPE"),
			DefaultCapacity:  model.DefaultCapacity,
			PingInterval:     ws.DefaultPingInterval,
			LobbyIdleTimeout: defaultLobbyIdleTimeout,
		},
		LogLevel: slog.LevelInfo,
	}

	if v := getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil || port <= 0 || port > 65535 {
			return cfg, fmt.Errorf("invalid PORT %q", v)
		}
		cfg.Server.Port = port
	}
	cfg.Server.Host = getenv("HOST")

	if v := getenv("LOBBY_CAPACITY"); v != "" {
		capacity, err := strconv.Atoi(v)
		if err != nil || capacity <= 0 {
			return cfg, fmt.Errorf("invalid LOBBY_CAPACITY %q: %w", v, model.ErrInvalidCapacity)
		}
		cfg.Factory.DefaultCapacity = capacity
	}

	if v := getenv("LOBBY_PING_INTERVAL"); v != "" {
		interval, err := time.ParseDuration(v)
		if err != nil || interval <= 0 {
			return cfg, fmt.Errorf("invalid LOBBY_PING_INTERVAL %q", v)
		}
		cfg.Factory.PingInterval = interval
	}

	if v := getenv("LOBBY_IDLE_TIMEOUT"); v != "" {
		timeout, err := time.ParseDuration(v)
		if err != nil || timeout < 0 {
			return cfg, fmt.Errorf("invalid LOBBY_IDLE_TIMEOUT %q", v)
		}
		cfg.Factory.LobbyIdleTimeout = timeout
	}

	for _, origin := range strings.Split(getenv("ALLOWED_ORIGINS"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.Factory.AllowedOrigins = append(cfg.Factory.AllowedOrigins, origin)
		}
	}

	switch cfg.Factory.StorageType {
	case "", factory.StorageTypeMemory:
	case factory.StorageTypeRedis:
		redisURL := getenv("REDIS_URL")
		if redisURL == "" {
			return cfg, fmt.Errorf("REDIS_URL required when STORAGE_TYPE=redis")
		}
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = redisURL
		cfg.Factory.RedisConfig = &redisCfg
	default:
		return cfg, fmt.Errorf("invalid STORAGE_TYPE %q", cfg.Factory.StorageType)
	}

	if v := getenv("LOG_LEVEL"); v != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(strings.ToUpper(v))); err != nil {
			return cfg, fmt.Errorf("invalid LOG_LEVEL %q", v)
		}
	}

	cfg.StaticDir = getenv("STATIC_DIR")
	if cfg.StaticDir == "" {
		cfg.StaticDir = findStaticDir()
	}

	return cfg, nil
}

// findStaticDir looks for the client bundle. Returns "" when there is none.
func findStaticDir() string {
	candidates := []string{
		"public",
		"web/public",
		filepath.Join(os.Getenv("PWD"), "public"),
	}

	for _, dir := range candidates {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			return dir
		}
	}
	return ""
}
