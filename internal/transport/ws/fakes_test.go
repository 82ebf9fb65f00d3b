package ws

import (
	"context"
	"net"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/mcoot/partylobby/internal/model"
)

// fakeConn implements Conn in memory. Frames pushed with deliver are
// returned by ReadMessage; Close makes ReadMessage fail like a dropped peer.
type fakeConn struct {
	mu          sync.Mutex
	in          chan []byte
	closed      chan struct{}
	closeOnce   sync.Once
	written     []string
	pings       int
	pongHandler func(string) error

	// stall, when set, makes WriteMessage hold the write lock until it
	// is closed, like a peer that stopped reading
	stall chan struct{}
}

func newFakeConn() *fakeConn {
	return &fakeConn{
		in:     make(chan []byte, 16),
		closed: make(chan struct{}),
	}
}

func (fc *fakeConn) ReadMessage() (int, []byte, error) {
	select {
	case data := <-fc.in:
		return websocket.TextMessage, data, nil
	case <-fc.closed:
		// Frames already sent are read before the close, as on a real stream
		select {
		case data := <-fc.in:
			return websocket.TextMessage, data, nil
		default:
		}
		return 0, nil, &websocket.CloseError{Code: websocket.CloseNormalClosure}
	}
}

func (fc *fakeConn) WriteMessage(messageType int, data []byte) error {
	select {
	case <-fc.closed:
		return websocket.ErrCloseSent
	default:
	}
	fc.mu.Lock()
	defer fc.mu.Unlock()
	if fc.stall != nil {
		select {
		case <-fc.stall:
		case <-fc.closed:
			return websocket.ErrCloseSent
		}
	}
	if messageType == websocket.TextMessage {
		fc.written = append(fc.written, string(data))
	}
	return nil
}

func (fc *fakeConn) WriteControl(messageType int, data []byte, deadline time.Time) error {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	if messageType == websocket.PingMessage {
		fc.pings++
	}
	return nil
}

func (fc *fakeConn) SetReadLimit(limit int64) {}

func (fc *fakeConn) SetWriteDeadline(t time.Time) error { return nil }

func (fc *fakeConn) SetPongHandler(h func(string) error) {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	fc.pongHandler = h
}

func (fc *fakeConn) Close() error {
	fc.closeOnce.Do(func() { close(fc.closed) })
	return nil
}

func (fc *fakeConn) RemoteAddr() net.Addr {
	return &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 12345}
}

func (fc *fakeConn) deliver(frame string) {
	fc.in <- []byte(frame)
}

func (fc *fakeConn) pong() {
	fc.mu.Lock()
	h := fc.pongHandler
	fc.mu.Unlock()
	_ = h("")
}

func (fc *fakeConn) isClosed() bool {
	select {
	case <-fc.closed:
		return true
	default:
		return false
	}
}

func (fc *fakeConn) pingCount() int {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	return fc.pings
}

func (fc *fakeConn) frames() []string {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	return append([]string(nil), fc.written...)
}

// recordingHandler records every event the hub dispatches
type recordingHandler struct {
	mu           sync.Mutex
	messages     []string
	senders      []model.ConnID
	disconnected []model.ConnID
	status       model.LobbyStatus
	released     bool
}

func (h *recordingHandler) HandleMessage(ctx context.Context, conn model.ConnID, data []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.messages = append(h.messages, string(data))
	h.senders = append(h.senders, conn)
}

func (h *recordingHandler) HandleDisconnect(ctx context.Context, conn model.ConnID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.disconnected = append(h.disconnected, conn)
}

func (h *recordingHandler) Status(ctx context.Context) model.LobbyStatus {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.status
}

func (h *recordingHandler) Release(ctx context.Context) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.released = true
}

func (h *recordingHandler) wasReleased() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.released
}

func (h *recordingHandler) setActive(names ...model.PlayerName) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.status.Active = names
}

func (h *recordingHandler) received() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.messages...)
}

func (h *recordingHandler) disconnects() []model.ConnID {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]model.ConnID(nil), h.disconnected...)
}

// sequenceHandler records messages and disconnects in one ordered log
type sequenceHandler struct {
	recordingHandler
	logMu sync.Mutex
	log   []string
}

func (h *sequenceHandler) HandleMessage(ctx context.Context, conn model.ConnID, data []byte) {
	h.logMu.Lock()
	h.log = append(h.log, "message "+string(data))
	h.logMu.Unlock()
}

func (h *sequenceHandler) HandleDisconnect(ctx context.Context, conn model.ConnID) {
	h.logMu.Lock()
	h.log = append(h.log, "disconnect")
	h.logMu.Unlock()
}

func (h *sequenceHandler) events() []string {
	h.logMu.Lock()
	defer h.logMu.Unlock()
	return append([]string(nil), h.log...)
}
