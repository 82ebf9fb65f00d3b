package ws

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/mcoot/partylobby/internal/dependencies/clock"
	"github.com/mcoot/partylobby/internal/dependencies/random"
	"github.com/mcoot/partylobby/internal/model"
)

const (
	// LobbyCodeLength is the length of generated lobby codes
	LobbyCodeLength = 6
	// LobbyCodeAlphabet is the characters used in lobby codes (avoid confusing chars)
	LobbyCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

	maxCodeAttempts = 16
)

// HandlerFactory builds the handler for a new lobby. The registry is the
// lobby's live connection set and send primitive.
type HandlerFactory func(ctx context.Context, id model.LobbyID, capacity int, registry *Registry) (Handler, error)

// ManagerConfig holds lobby defaults
type ManagerConfig struct {
	DefaultCapacity int
	PingInterval    time.Duration

	// IdleTimeout is how long a generated lobby may sit with no connections
	// and no active players before it is removed. Zero disables reaping.
	IdleTimeout time.Duration

	// AllowedOrigins lists extra browser origins that may connect
	AllowedOrigins []string
}

// HubManager owns the hubs of all lobbies
type HubManager struct {
	hubs      map[model.LobbyID]*Hub
	pinned    map[model.LobbyID]bool
	idleSince map[model.LobbyID]time.Time
	mu        sync.RWMutex
	factory   HandlerFactory
	clock     clock.Clock
	random    random.Random
	cfg       ManagerConfig
	origins   OriginPolicy
	logger    *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
}

// NewHubManager creates a new HubManager
func NewHubManager(factory HandlerFactory, clock clock.Clock, random random.Random, cfg ManagerConfig, logger *slog.Logger) *HubManager {
	if cfg.DefaultCapacity <= 0 {
		cfg.DefaultCapacity = model.DefaultCapacity
	}
	ctx, cancel := context.WithCancel(context.Background())
	m := &HubManager{
		hubs:      make(map[model.LobbyID]*Hub),
		pinned:    make(map[model.LobbyID]bool),
		idleSince: make(map[model.LobbyID]time.Time),
		factory:   factory,
		clock:     clock,
		random:    random,
		cfg:       cfg,
		origins:   NewOriginPolicy(cfg.AllowedOrigins),
		logger:    logger.With(slog.String("component", "ws")),
		ctx:       ctx,
		cancel:    cancel,
	}
	if cfg.IdleTimeout > 0 {
		go m.reapLoop()
	}
	return m
}

// Create starts a lobby with a generated code. A capacity of zero uses the
// configured default.
func (m *HubManager) Create(ctx context.Context, capacity int) (*Hub, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		id := model.LobbyID(m.random.String(LobbyCodeLength, LobbyCodeAlphabet))
		if id == "" {
			break
		}
		if _, exists := m.hubs[id]; exists {
			continue
		}
		return m.start(ctx, id, capacity)
	}
	return nil, fmt.Errorf("could not allocate a lobby code after %d attempts", maxCodeAttempts)
}

// CreateWithID starts a lobby under a fixed ID, or returns the existing one.
// Lobbies created this way are never reaped.
func (m *HubManager) CreateWithID(ctx context.Context, id model.LobbyID, capacity int) (*Hub, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if hub, ok := m.hubs[id]; ok {
		return hub, nil
	}
	hub, err := m.start(ctx, id, capacity)
	if err != nil {
		return nil, err
	}
	m.pinned[id] = true
	return hub, nil
}

func (m *HubManager) start(ctx context.Context, id model.LobbyID, capacity int) (*Hub, error) {
	if capacity == 0 {
		capacity = m.cfg.DefaultCapacity
	}
	if capacity < 0 {
		return nil, model.ErrInvalidCapacity
	}

	registry := NewRegistry()
	handler, err := m.factory(ctx, id, capacity, registry)
	if err != nil {
		return nil, err
	}

	hub := NewHub(HubConfig{
		ID:           id,
		Registry:     registry,
		Handler:      handler,
		Clock:        m.clock,
		Random:       m.random,
		PingInterval: m.cfg.PingInterval,
		Origins:      m.origins,
		Logger:       m.logger,
	})
	m.hubs[id] = hub
	go hub.Run(m.ctx)

	m.logger.Info("lobby created", slog.String("lobby", string(id)), slog.Int("capacity", capacity))
	return hub, nil
}

// Get returns the hub for a lobby
func (m *HubManager) Get(id model.LobbyID) (*Hub, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	hub, ok := m.hubs[id]
	if !ok {
		return nil, model.ErrLobbyNotFound
	}
	return hub, nil
}

// List returns all hubs ordered by lobby ID
func (m *HubManager) List() []*Hub {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Hub, 0, len(m.hubs))
	for _, h := range m.hubs {
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].id < out[j].id })
	return out
}

// Remove stops a lobby, disconnects its clients and releases its state
func (m *HubManager) Remove(ctx context.Context, id model.LobbyID) error {
	m.mu.Lock()
	hub, ok := m.hubs[id]
	if !ok {
		m.mu.Unlock()
		return model.ErrLobbyNotFound
	}
	delete(m.hubs, id)
	delete(m.pinned, id)
	delete(m.idleSince, id)
	m.mu.Unlock()

	hub.Close()
	hub.handler.Release(ctx)
	m.logger.Info("lobby removed", slog.String("lobby", string(id)))
	return nil
}

// ReapIdle removes every unpinned lobby that has had no connections and no
// active players for at least the idle timeout. It returns the number of
// lobbies removed.
func (m *HubManager) ReapIdle(ctx context.Context) int {
	if m.cfg.IdleTimeout <= 0 {
		return 0
	}
	now := m.clock.Now()

	var expired []model.LobbyID
	m.mu.Lock()
	for id, hub := range m.hubs {
		if m.pinned[id] {
			continue
		}
		if !isIdle(ctx, hub) {
			delete(m.idleSince, id)
			continue
		}
		since, seen := m.idleSince[id]
		if !seen {
			m.idleSince[id] = now
			continue
		}
		if now.Sub(since) >= m.cfg.IdleTimeout {
			expired = append(expired, id)
		}
	}
	m.mu.Unlock()

	removed := 0
	for _, id := range expired {
		if err := m.Remove(ctx, id); err == nil {
			removed++
		}
	}
	return removed
}

func isIdle(ctx context.Context, hub *Hub) bool {
	return hub.ClientCount() == 0 && len(hub.Status(ctx).Active) == 0
}

func (m *HubManager) reapLoop() {
	ticker := m.clock.NewTicker(max(m.cfg.IdleTimeout/2, time.Second))
	defer ticker.Stop()

	for {
		select {
		case <-m.ctx.Done():
			return
		case <-ticker.C():
			if n := m.ReapIdle(m.ctx); n > 0 {
				m.logger.Debug("idle lobbies reaped", slog.Int("count", n))
			}
		}
	}
}

// Close stops every hub and disconnects all clients
func (m *HubManager) Close() {
	m.mu.Lock()
	hubs := make([]*Hub, 0, len(m.hubs))
	for id, h := range m.hubs {
		hubs = append(hubs, h)
		delete(m.hubs, id)
	}
	m.mu.Unlock()

	m.cancel()
	for _, h := range hubs {
		h.Close()
	}
	m.logger.Info("all lobbies closed", slog.Int("count", len(hubs)))
}
