package ws

import (
	"net"
	"time"

	"github.com/gorilla/websocket"
)

// Conn is the subset of *websocket.Conn used by a client. Tests swap in a
// fake to drive pumps without network I/O.
type Conn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	WriteControl(messageType int, data []byte, deadline time.Time) error
	SetReadLimit(limit int64)
	SetWriteDeadline(t time.Time) error
	SetPongHandler(h func(appData string) error)
	Close() error
	RemoteAddr() net.Addr
}

var _ Conn = (*websocket.Conn)(nil)
