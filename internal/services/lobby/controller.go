package lobby

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/mcoot/partylobby/internal/dependencies/clock"
	"github.com/mcoot/partylobby/internal/model"
	"github.com/mcoot/partylobby/internal/services/relay"
	"github.com/mcoot/partylobby/internal/storage"
)

// Replies sent to a single connection
const (
	msgGameInProgress = "Game already in progress"
	msgNameTaken      = "Name already taken"
)

// LiveSet reports which connections are currently open
type LiveSet interface {
	Has(conn model.ConnID) bool
	Len() int
}

// Controller drives the player session state machine of one lobby.
// Every exported method takes the controller lock, so operations are
// totally ordered even when callers run on different goroutines.
type Controller struct {
	mu        sync.Mutex
	id        model.LobbyID
	dir       *model.Directory
	relay     *relay.Relay
	live      LiveSet
	storage   storage.Storage
	clock     clock.Clock
	logger    *slog.Logger
	createdAt time.Time
}

// NewController creates a controller for a fresh lobby. Any snapshot left
// in the store under the same ID belongs to an earlier lobby and is dropped.
func NewController(
	ctx context.Context,
	id model.LobbyID,
	capacity int,
	relay *relay.Relay,
	live LiveSet,
	storage storage.Storage,
	clock clock.Clock,
	logger *slog.Logger,
) (*Controller, error) {
	if capacity <= 0 {
		return nil, model.ErrInvalidCapacity
	}
	if err := storage.DeleteSnapshot(ctx, id); err != nil {
		return nil, fmt.Errorf("clearing snapshot for lobby %s: %w", id, err)
	}
	return &Controller{
		id:        id,
		dir:       model.NewDirectory(capacity),
		relay:     relay,
		live:      live,
		storage:   storage,
		clock:     clock,
		logger:    logger.With(slog.String("component", "lobby"), slog.String("lobby", string(id))),
		createdAt: clock.Now(),
	}, nil
}

// ID returns the lobby identifier
func (c *Controller) ID() model.LobbyID {
	return c.id
}

// HandleMessage decodes one inbound frame and dispatches it by operation.
// Frames that cannot be decoded are answered with an error on the same
// connection and leave the lobby untouched.
func (c *Controller) HandleMessage(ctx context.Context, conn model.ConnID, data []byte) {
	var env model.Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		c.rejectMalformed(conn, err)
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	switch env.Op {
	case model.OpRegister:
		name, err := decodeName(env.Data)
		if err != nil {
			c.rejectMalformed(conn, err)
			return
		}
		c.register(ctx, name, conn)

	case model.OpReconnect:
		name, err := decodeName(env.Data)
		if err != nil {
			c.rejectMalformed(conn, err)
			return
		}
		c.reconnect(ctx, name, conn)

	case model.OpStart:
		var names []model.PlayerName
		if len(env.Data) == 0 {
			c.rejectMalformed(conn, errors.New("start requires a list of player names"))
			return
		}
		if err := json.Unmarshal(env.Data, &names); err != nil {
			c.rejectMalformed(conn, err)
			return
		}
		if names == nil {
			c.rejectMalformed(conn, errors.New("start requires a list of player names"))
			return
		}
		c.startWithPlayers(names)

	case model.OpInGame:
		if len(env.Data) == 0 {
			c.rejectMalformed(conn, errors.New("ingame requires a game state"))
			return
		}
		c.inGame(ctx, env.Data)

	case model.OpQuit:
		c.logger.Info("quit received", slog.String("conn", string(conn)))

	default:
		c.logger.Warn("unknown operation", slog.String("op", string(env.Op)), slog.String("conn", string(conn)))
		_ = c.relay.SendTo(conn, model.ErrorNotice(fmt.Sprintf("%s: %s", model.ErrUnknownOperation, env.Op)))
	}
}

// Register adds name to the lobby on conn
func (c *Controller) Register(ctx context.Context, name model.PlayerName, conn model.ConnID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.register(ctx, name, conn)
}

// Reconnect brings an inactive player back on conn
func (c *Controller) Reconnect(ctx context.Context, name model.PlayerName, conn model.ConnID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reconnect(ctx, name, conn)
}

// StartWithPlayers starts the round with exactly the named active players
func (c *Controller) StartWithPlayers(names []model.PlayerName) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.startWithPlayers(names)
}

// InGame stores and relays a game state update
func (c *Controller) InGame(ctx context.Context, payload json.RawMessage) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.inGame(ctx, payload)
}

// HandleDisconnect reconciles the active players against the live
// connection set after conn has closed
func (c *Controller) HandleDisconnect(ctx context.Context, conn model.ConnID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onDisconnect(conn)
}

// Release drops the stored snapshot of a removed lobby
func (c *Controller) Release(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.storage.DeleteSnapshot(ctx, c.id); err != nil {
		c.logger.Warn("failed to drop snapshot", slog.Any("error", err))
	}
}

// Status returns a read-only view of the lobby
func (c *Controller) Status(ctx context.Context) model.LobbyStatus {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, hasSnapshot := c.snapshot(ctx)
	return model.LobbyStatus{
		ID:          c.id,
		Capacity:    c.dir.Capacity,
		Started:     c.dir.Started,
		Active:      c.dir.ActiveNames(),
		Inactive:    c.dir.InactiveNames(),
		HasSnapshot: hasSnapshot,
		Connections: c.live.Len(),
		CreatedAt:   c.createdAt,
	}
}

func (c *Controller) register(ctx context.Context, name model.PlayerName, conn model.ConnID) {
	if c.dir.IsInactive(name) {
		c.reconnect(ctx, name, conn)
		return
	}

	if !c.dir.IsAcceptingPlayers() {
		c.logger.Info("registration refused", slog.String("player", string(name)), slog.Any("reason", model.ErrGameInProgress))
		_ = c.relay.SendTo(conn, model.ErrorNotice(msgGameInProgress))
		return
	}

	if c.dir.IsActive(name) {
		c.logger.Info("registration refused", slog.String("player", string(name)), slog.Any("reason", model.ErrNameTaken))
		_ = c.relay.SendTo(conn, model.ErrorNotice(msgNameTaken))
		return
	}

	c.dir.AddActive(model.Player{Name: name, Conn: conn})
	c.logger.Info("player registered",
		slog.String("player", string(name)),
		slog.Int("active", len(c.dir.Active)),
		slog.Int("capacity", c.dir.Capacity))

	c.admitted()
}

// admitted reacts to the active count after a new player joined
func (c *Controller) admitted() {
	switch active := len(c.dir.Active); {
	case active < c.dir.Capacity:
		c.broadcastRoster()
	case active == c.dir.Capacity:
		c.startGame()
	default:
		c.logger.Error("directory inconsistent",
			slog.Any("error", model.ErrCapacityExceeded),
			slog.Int("active", active),
			slog.Int("capacity", c.dir.Capacity))
		c.relay.SendToAll(c.dir.ActivePlayers(), model.GameStateErrorMessage)
	}
}

// reconnect does not re-check capacity or the started flag
func (c *Controller) reconnect(ctx context.Context, name model.PlayerName, conn model.ConnID) {
	if c.dir.Reactivate(name, conn) {
		c.logger.Info("player reconnected", slog.String("player", string(name)), slog.String("conn", string(conn)))
	} else {
		c.logger.Warn("reconnect for unknown inactive player", slog.String("player", string(name)))
	}

	if snapshot, ok := c.snapshot(ctx); ok {
		_ = c.relay.SendTo(conn, snapshot)
	} else {
		c.broadcastRoster()
	}

	c.relay.SendToAll(c.dir.ActivePlayers(), model.RejoinedNotice(name))
}

func (c *Controller) startWithPlayers(names []model.PlayerName) {
	c.dir.RetainActive(names)
	c.startGame()
}

// startGame is not idempotent: each call broadcasts the start signal again
func (c *Controller) startGame() {
	names := c.dir.ActiveNames()
	c.relay.SendToAll(c.dir.ActivePlayers(), names)
	c.dir.ClearInactive()
	c.dir.MarkStarted()
	c.logger.Info("game started", slog.Any("players", names))
}

func (c *Controller) inGame(ctx context.Context, payload json.RawMessage) {
	if err := c.storage.SaveSnapshot(ctx, c.id, payload); err != nil {
		c.logger.Error("failed to save game state", slog.Any("error", err))
	}
	c.relay.SendToAll(c.dir.ActivePlayers(), payload)
}

func (c *Controller) onDisconnect(conn model.ConnID) {
	var dropped []model.PlayerName
	for _, p := range c.dir.Active {
		if !c.live.Has(p.Conn) {
			dropped = append(dropped, p.Name)
		}
	}

	gone := c.dir.Deactivate(dropped)
	remaining := c.dir.ActivePlayers()
	for _, p := range gone {
		c.logger.Info("player disconnected", slog.String("player", string(p.Name)), slog.String("conn", string(p.Conn)))
		c.relay.SendToAll(remaining, model.DisconnectedNotice(p.Name))
	}

	c.logger.Debug("disconnect reconciled",
		slog.String("conn", string(conn)),
		slog.Int("disconnected", len(gone)))
	c.broadcastRoster()
}

func (c *Controller) broadcastRoster() {
	c.relay.SendToAll(c.dir.ActivePlayers(), model.NewRosterMessage(c.dir.ActiveNames()))
}

// snapshot loads the stored game state. Store failures are logged and
// treated as no snapshot.
func (c *Controller) snapshot(ctx context.Context) (json.RawMessage, bool) {
	data, err := c.storage.GetSnapshot(ctx, c.id)
	if err != nil {
		if !errors.Is(err, model.ErrSnapshotNotFound) {
			c.logger.Error("failed to load game state", slog.Any("error", err))
		}
		return nil, false
	}
	return json.RawMessage(data), true
}

func (c *Controller) rejectMalformed(conn model.ConnID, cause error) {
	c.logger.Warn("malformed message", slog.String("conn", string(conn)), slog.Any("error", cause))
	_ = c.relay.SendTo(conn, model.ErrorNotice(fmt.Sprintf("%s: %s", model.ErrMalformedMessage, cause)))
}

func decodeName(data json.RawMessage) (model.PlayerName, error) {
	if len(data) == 0 {
		return "", model.ErrMissingPlayerName
	}
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return "", err
	}
	if name == "" {
		return "", model.ErrMissingPlayerName
	}
	return model.PlayerName(name), nil
}
