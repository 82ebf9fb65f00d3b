package relay

import (
	"encoding/json"
	"log/slog"

	"github.com/mcoot/partylobby/internal/model"
)

// Sender delivers one encoded frame to one connection without blocking
type Sender interface {
	Send(conn model.ConnID, data []byte) error
}

// Relay fans messages out to players. Every recipient is handled
// independently: a failed send is logged and the loop moves on.
type Relay struct {
	sender Sender
	logger *slog.Logger
}

// New creates a new Relay
func New(sender Sender, logger *slog.Logger) *Relay {
	return &Relay{
		sender: sender,
		logger: logger.With(slog.String("component", "relay")),
	}
}

// SendToAll delivers msg to every player's current connection and returns
// how many sends were accepted
func (r *Relay) SendToAll(players []model.Player, msg any) int {
	delivered := 0
	for _, p := range players {
		data, err := encode(msg)
		if err != nil {
			r.logger.Error("failed to encode message", slog.Any("error", err))
			return delivered
		}
		if err := r.sender.Send(p.Conn, data); err != nil {
			r.logger.Warn("message not delivered",
				slog.String("player", string(p.Name)),
				slog.String("conn", string(p.Conn)),
				slog.Any("error", err))
			continue
		}
		delivered++
	}
	return delivered
}

// SendTo delivers msg to a single connection
func (r *Relay) SendTo(conn model.ConnID, msg any) error {
	data, err := encode(msg)
	if err != nil {
		r.logger.Error("failed to encode message", slog.Any("error", err))
		return err
	}
	if err := r.sender.Send(conn, data); err != nil {
		r.logger.Warn("message not delivered",
			slog.String("conn", string(conn)),
			slog.Any("error", err))
		return err
	}
	return nil
}

// encode serializes msg for the wire. Raw payloads are passed through
// untouched so relayed game state keeps its exact bytes.
func encode(msg any) ([]byte, error) {
	switch m := msg.(type) {
	case json.RawMessage:
		out := make([]byte, len(m))
		copy(out, m)
		return out, nil
	case []byte:
		out := make([]byte, len(m))
		copy(out, m)
		return out, nil
	default:
		return json.Marshal(msg)
	}
}
