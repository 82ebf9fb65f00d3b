package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

// wsConn is the part of *websocket.Conn a session uses
type wsConn interface {
	ReadMessage() (int, []byte, error)
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// session drives one player connection: frames from the server and
// lines typed on stdin are multiplexed onto a single goroutine so the
// output and the connection's writer are never shared.
type session struct {
	conn wsConn
	out  *Output
	now  func() time.Time
}

func newSession(conn wsConn, out *Output) *session {
	return &session{conn: conn, out: out, now: time.Now}
}

// encodeFrame builds a {"op","data"} frame. A nil data omits the field.
func encodeFrame(op string, data json.RawMessage) ([]byte, error) {
	if op == "" {
		return nil, errors.New("operation is required")
	}
	if data != nil && !json.Valid(data) {
		return nil, fmt.Errorf("data for %q is not valid JSON", op)
	}
	return json.Marshal(struct {
		Op   string          `json:"op"`
		Data json.RawMessage `json:"data,omitempty"`
	}{Op: op, Data: data})
}

// parseLine splits an interactive line of the form `op [json]`
func parseLine(line string) (string, json.RawMessage, error) {
	line = strings.TrimSpace(line)
	op, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)
	if rest == "" {
		return op, nil, nil
	}
	if !json.Valid([]byte(rest)) {
		return "", nil, fmt.Errorf("data for %q is not valid JSON: %s", op, rest)
	}
	return op, json.RawMessage(rest), nil
}

func (s *session) send(op string, data json.RawMessage) error {
	frame, err := encodeFrame(op, data)
	if err != nil {
		return err
	}
	if err := s.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
		return fmt.Errorf("send failed: %w", err)
	}
	s.out.PrintFrame(Frame{Time: s.now(), Direction: FrameSent, Data: frame})
	return nil
}

// run prints incoming frames and forwards stdin lines until ctx ends,
// the server closes the connection, or stdin sends "quit".
func (s *session) run(ctx context.Context, in io.Reader) error {
	received := make(chan []byte)
	readErr := make(chan error, 1)
	go func() {
		for {
			_, data, err := s.conn.ReadMessage()
			if err != nil {
				readErr <- err
				return
			}
			select {
			case received <- data:
			case <-ctx.Done():
				return
			}
		}
	}()

	var lines chan string
	if in != nil {
		lines = make(chan string)
		go func() {
			defer close(lines)
			scanner := bufio.NewScanner(in)
			for scanner.Scan() {
				select {
				case lines <- scanner.Text():
				case <-ctx.Done():
					return
				}
			}
		}()
	}

	defer func() { _ = s.conn.Close() }()

	for {
		select {
		case <-ctx.Done():
			_ = s.conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return nil

		case data := <-received:
			s.out.PrintFrame(Frame{Time: s.now(), Direction: FrameReceived, Data: data})

		case err := <-readErr:
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return fmt.Errorf("connection lost: %w", err)

		case line, ok := <-lines:
			if !ok {
				lines = nil
				continue
			}
			if strings.TrimSpace(line) == "" {
				continue
			}
			op, data, err := parseLine(line)
			if err != nil {
				s.out.PrintError(err)
				continue
			}
			if err := s.send(op, data); err != nil {
				return err
			}
			if op == "quit" {
				return nil
			}
		}
	}
}

// withOptionalTimeout bounds ctx when d is positive
func withOptionalTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d > 0 {
		return context.WithTimeout(ctx, d)
	}
	return context.WithCancel(ctx)
}
