package middleware

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/mcoot/partylobby/internal/api/apierr"
	"github.com/mcoot/partylobby/internal/middleware"
)

// Recovery creates panic recovery middleware for the API and socket routes.
// API callers get a JSON error; a failed socket handshake gets a plain 500.
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return middleware.Recovery(logger.With(slog.String("component", "http")), panicResponse)
}

func panicResponse(w http.ResponseWriter, r *http.Request, err any) {
	if websocket.IsWebSocketUpgrade(r) {
		middleware.DefaultPanicHandler(w, r, err)
		return
	}
	apierr.WriteError(w, apierr.NewInternalError())
}
