package ws

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/mcoot/partylobby/internal/dependencies/clock"
	"github.com/mcoot/partylobby/internal/dependencies/random"
	"github.com/mcoot/partylobby/internal/model"
)

// DefaultPingInterval is the liveness sweep period
const DefaultPingInterval = 10 * time.Second

// Handler consumes the serialized event stream of one lobby
type Handler interface {
	HandleMessage(ctx context.Context, conn model.ConnID, data []byte)
	HandleDisconnect(ctx context.Context, conn model.ConnID)
	Status(ctx context.Context) model.LobbyStatus
	// Release frees lobby state once the lobby has been removed
	Release(ctx context.Context)
}

// clientEvent is a frame from a client, or its close when closed is set.
// Both travel on one queue so a client's last frames are handled before
// its disconnect.
type clientEvent struct {
	client *Client
	data   []byte
	closed bool
}

// Hub runs the event loop of a single lobby. Connection changes, inbound
// frames and liveness sweeps are all handled on the Run goroutine, one at
// a time, in arrival order.
type Hub struct {
	id           model.LobbyID
	registry     *Registry
	handler      Handler
	monitor      *Monitor
	clock        clock.Clock
	random       random.Random
	pingInterval time.Duration
	upgrader     *websocket.Upgrader
	logger       *slog.Logger

	register  chan *Client
	events    chan clientEvent
	done      chan struct{}
	stopped   chan struct{}
	closeOnce sync.Once
}

// HubConfig holds the collaborators of a Hub
type HubConfig struct {
	ID           model.LobbyID
	Registry     *Registry
	Handler      Handler
	Clock        clock.Clock
	Random       random.Random
	PingInterval time.Duration
	Origins      OriginPolicy
	Logger       *slog.Logger
}

// NewHub creates a hub. Call Run to start it.
func NewHub(cfg HubConfig) *Hub {
	if cfg.PingInterval <= 0 {
		cfg.PingInterval = DefaultPingInterval
	}
	logger := cfg.Logger.With(slog.String("lobby", string(cfg.ID)))
	return &Hub{
		id:           cfg.ID,
		registry:     cfg.Registry,
		handler:      cfg.Handler,
		monitor:      NewMonitor(cfg.Registry, logger),
		clock:        cfg.Clock,
		random:       cfg.Random,
		pingInterval: cfg.PingInterval,
		upgrader:     newUpgrader(cfg.Origins),
		logger:       logger,
		register:     make(chan *Client),
		events:       make(chan clientEvent, 256),
		done:         make(chan struct{}),
		stopped:      make(chan struct{}),
	}
}

// ID returns the lobby identifier
func (h *Hub) ID() model.LobbyID {
	return h.id
}

// Status returns the lobby status from the handler
func (h *Hub) Status(ctx context.Context) model.LobbyStatus {
	return h.handler.Status(ctx)
}

// Run starts the hub's event loop. It returns when ctx is cancelled or
// Close is called.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.stopped)

	ticker := h.clock.NewTicker(h.pingInterval)
	defer ticker.Stop()

	h.logger.Info("hub started", slog.Duration("ping_interval", h.pingInterval))
	for {
		select {
		case client := <-h.register:
			h.registry.Add(client)
			h.logger.Info("client registered",
				slog.String("conn", string(client.id)),
				slog.Int("total_clients", h.registry.Len()))

		case ev := <-h.events:
			if ev.closed {
				h.remove(ctx, ev.client)
				continue
			}
			if !h.registry.Has(ev.client.id) {
				continue
			}
			h.handler.HandleMessage(ctx, ev.client.id, ev.data)

		case <-ticker.C():
			if n := h.monitor.Sweep(); n > 0 {
				h.logger.Info("liveness sweep", slog.Int("terminated", n))
			}

		case <-ctx.Done():
			h.shutdown()
			return

		case <-h.done:
			h.shutdown()
			return
		}
	}
}

func (h *Hub) remove(ctx context.Context, client *Client) {
	if !h.registry.Remove(client.id) {
		return
	}
	h.logger.Info("client unregistered",
		slog.String("conn", string(client.id)),
		slog.Duration("connection_duration", h.clock.Now().Sub(client.connectedAt)),
		slog.Int("total_clients", h.registry.Len()))
	h.handler.HandleDisconnect(ctx, client.id)
}

func (h *Hub) shutdown() {
	clients := h.registry.Clients()
	for _, c := range clients {
		h.registry.Remove(c.id)
		c.terminate()
	}
	h.logger.Info("hub stopped", slog.Int("disconnected_clients", len(clients)))
}

// NewConnID returns a fresh connection identifier
func (h *Hub) NewConnID() model.ConnID {
	return model.ConnID(h.random.UUID())
}

// Register adds a client to the hub
func (h *Hub) Register(client *Client) error {
	select {
	case h.register <- client:
		return nil
	case <-h.stopped:
		return model.ErrHubClosed
	}
}

// Unregister removes a client from the hub after any frames it already
// delivered
func (h *Hub) Unregister(client *Client) {
	select {
	case h.events <- clientEvent{client: client, closed: true}:
	case <-h.stopped:
	}
}

// Deliver queues an inbound frame from client
func (h *Hub) Deliver(client *Client, data []byte) error {
	select {
	case h.events <- clientEvent{client: client, data: data}:
		return nil
	case <-h.stopped:
		return model.ErrHubClosed
	}
}

// Close stops the event loop and waits for it to exit
func (h *Hub) Close() {
	h.closeOnce.Do(func() {
		close(h.done)
	})
	<-h.stopped
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	return h.registry.Len()
}
