package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/mcoot/partylobby/internal/api"
	"github.com/mcoot/partylobby/internal/factory"
)

func main() {
	// A missing .env is fine; the environment may already be set
	envErr := godotenv.Load()

	cfg, err := loadConfig(os.Getenv)
	if err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Set up logging with JSON output
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))
	slog.SetDefault(logger)

	if envErr != nil {
		logger.Debug("no .env file loaded", slog.String("error", envErr.Error()))
	}

	cfg.Factory.Logger = logger
	app, err := factory.New(cfg.Factory)
	if err != nil {
		logger.Error("failed to create application", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer func() {
		if err := app.Close(); err != nil {
			logger.Error("failed to close application", slog.String("error", err.Error()))
		}
	}()

	if cfg.StaticDir == "" {
		logger.Warn("no static directory found; serving API and WebSocket only")
	}

	router := api.NewRouter(api.RouterConfig{
		Logger:     logger,
		HubManager: app.HubManager,
		StaticDir:  cfg.StaticDir,
	})

	server := api.NewServer(router, cfg.Server, logger)

	// Handle graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	logger.Info("server started",
		slog.String("addr", server.Addr()),
		slog.Int("lobby_capacity", cfg.Factory.DefaultCapacity),
		slog.Duration("ping_interval", cfg.Factory.PingInterval),
		slog.Duration("lobby_idle_timeout", cfg.Factory.LobbyIdleTimeout),
		slog.Any("allowed_origins", cfg.Factory.AllowedOrigins),
		slog.String("storage", cfg.Factory.StorageType))

	// Wait for shutdown or error
	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")
		if err := server.Shutdown(context.Background()); err != nil {
			logger.Error("shutdown error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	logger.Info("server stopped")
}
