package factory

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/mcoot/partylobby/internal/dependencies/clock"
	"github.com/mcoot/partylobby/internal/dependencies/random"
	"github.com/mcoot/partylobby/internal/model"
	"github.com/mcoot/partylobby/internal/services/lobby"
	"github.com/mcoot/partylobby/internal/services/relay"
	"github.com/mcoot/partylobby/internal/storage"
	"github.com/mcoot/partylobby/internal/storage/memory"
	redisstorage "github.com/mcoot/partylobby/internal/storage/redis"
	"github.com/mcoot/partylobby/internal/transport/ws"
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

	// Lobbies
	HubManager *ws.HubManager

	closers []func() error
}

// Config holds configuration for the application factory
type Config struct {
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the snapshot store ("memory" or "redis")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// DefaultCapacity is the player count that starts a round.
	// If zero, defaults to model.DefaultCapacity
	DefaultCapacity int
	// PingInterval is the liveness sweep period.
	// If zero, defaults to ws.DefaultPingInterval
	PingInterval time.Duration
	// LobbyIdleTimeout removes generated lobbies left with no connections
	// and no active players for this long. Zero keeps them forever.
	LobbyIdleTimeout time.Duration
	// AllowedOrigins lists browser origins, besides the server's own, that
	// may open a lobby socket. "*" allows any.
	AllowedOrigins []string
}

// New creates a new application with all dependencies wired and the
// default lobby running
func New(cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	var store storage.Storage
	var closers []func() error
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
		closers = append(closers, redisStore.Close)
	default:
		return nil, errors.New("invalid StorageType: must be 'memory' or 'redis'")
	}

	app, err := newWithDependencies(store, clock.New(), random.New(), cfg, logger)
	if err != nil {
		for _, c := range closers {
			_ = c()
		}
		return nil, err
	}
	app.closers = append(app.closers, closers...)
	return app, nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(store storage.Storage, clk clock.Clock, rnd random.Random, cfg Config, logger *slog.Logger) (*App, error) {
	hubManager := ws.NewHubManager(
		lobbyHandlerFactory(store, clk, logger),
		clk,
		rnd,
		ws.ManagerConfig{
			DefaultCapacity: cfg.DefaultCapacity,
			PingInterval:    cfg.PingInterval,
			IdleTimeout:     cfg.LobbyIdleTimeout,
			AllowedOrigins:  cfg.AllowedOrigins,
		},
		logger,
	)

	if _, err := hubManager.CreateWithID(context.Background(), model.DefaultLobbyID, cfg.DefaultCapacity); err != nil {
		hubManager.Close()
		return nil, err
	}

	return &App{
		Storage:    store,
		Clock:      clk,
		Random:     rnd,
		HubManager: hubManager,
	}, nil
}

// lobbyHandlerFactory wires a lobby controller to the connection registry
// of its hub: the registry is both the relay's send primitive and the
// controller's live connection set
func lobbyHandlerFactory(store storage.Storage, clk clock.Clock, logger *slog.Logger) ws.HandlerFactory {
	return func(ctx context.Context, id model.LobbyID, capacity int, registry *ws.Registry) (ws.Handler, error) {
		r := relay.New(registry, logger.With(slog.String("lobby", string(id))))
		controller, err := lobby.NewController(ctx, id, capacity, r, registry, store, clk, logger)
		if err != nil {
			return nil, err
		}
		return controller, nil
	}
}

// Close stops every lobby and releases the store
func (a *App) Close() error {
	a.HubManager.Close()
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c())
	}
	return errors.Join(errs...)
}
