package ws

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"
)

func newUpgrader(origins OriginPolicy) *websocket.Upgrader {
	return &websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     origins.Check,
	}
}

// ServeWS upgrades the request under the hub's origin policy and attaches
// the connection to hub
func ServeWS(w http.ResponseWriter, r *http.Request, hub *Hub) {
	conn, err := hub.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written an HTTP error
		hub.logger.Warn("websocket upgrade failed", slog.Any("error", err))
		return
	}
	Attach(hub, conn)
}

// Attach registers conn with hub and starts its pumps
func Attach(hub *Hub, conn Conn) *Client {
	client := NewClient(hub, conn, hub.NewConnID())
	if err := hub.Register(client); err != nil {
		hub.logger.Warn("rejecting connection", slog.Any("error", err))
		_ = conn.Close()
		return nil
	}
	hub.logger.Debug("websocket connected",
		slog.String("conn", string(client.id)),
		slog.String("remote_addr", conn.RemoteAddr().String()))

	go client.writePump()
	go client.readPump()
	return client
}
