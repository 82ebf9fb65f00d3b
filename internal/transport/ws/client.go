package ws

import (
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/mcoot/partylobby/internal/model"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Maximum inbound frame size
	maxMessageSize = 64 * 1024

	// Buffer size for outgoing messages
	sendBufferSize = 256
)

// Client is one WebSocket connection attached to a lobby hub
type Client struct {
	id          model.ConnID
	hub         *Hub
	conn        Conn
	send        chan []byte
	pings       chan struct{}
	alive       atomic.Bool
	connectedAt time.Time
	closeOnce   sync.Once
	logger      *slog.Logger
}

// NewClient wraps conn. The client starts out alive; every pong marks it
// alive again.
func NewClient(hub *Hub, conn Conn, id model.ConnID) *Client {
	c := &Client{
		id:          id,
		hub:         hub,
		conn:        conn,
		send:        make(chan []byte, sendBufferSize),
		pings:       make(chan struct{}, 1),
		connectedAt: hub.clock.Now(),
		logger:      hub.logger.With(slog.String("conn", string(id))),
	}
	c.alive.Store(true)
	conn.SetPongHandler(func(string) error {
		c.alive.Store(true)
		return nil
	})
	return c
}

// ID returns the connection identifier
func (c *Client) ID() model.ConnID {
	return c.id
}

// Alive reports whether the client answered since the last ping
func (c *Client) Alive() bool {
	return c.alive.Load()
}

// readPump forwards inbound frames to the hub until the connection fails,
// then unregisters the client. There is no read deadline; dead peers are
// found by the liveness monitor.
func (c *Client) readPump() {
	defer func() {
		c.hub.Unregister(c)
		c.terminate()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseNoStatusReceived) {
				c.logger.Warn("websocket read failed", slog.Any("error", err))
			}
			return
		}
		if err := c.hub.Deliver(c, data); err != nil {
			return
		}
	}
}

// writePump is the only writer of the connection: it drains the send
// queue and sends requested pings. It exits when the hub closes the queue.
func (c *Client) writePump() {
	defer c.terminate()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.logger.Warn("websocket write failed", slog.Any("error", err))
				return
			}

		case <-c.pings:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				c.logger.Debug("ping failed", slog.Any("error", err))
				return
			}
		}
	}
}

// requestPing asks the write pump for a liveness ping without blocking.
// A request still pending from the last sweep is not doubled.
func (c *Client) requestPing() {
	select {
	case c.pings <- struct{}{}:
	default:
	}
}

// terminate closes the underlying connection, unblocking the read pump
func (c *Client) terminate() {
	c.closeOnce.Do(func() {
		if err := c.conn.Close(); err != nil && !errors.Is(err, websocket.ErrCloseSent) {
			c.logger.Debug("websocket close", slog.Any("error", err))
		}
	})
}
