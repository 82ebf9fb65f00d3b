package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/partylobby/internal/api/handler"
	"github.com/mcoot/partylobby/internal/api/middleware"
	"github.com/mcoot/partylobby/internal/api/response"
	"github.com/mcoot/partylobby/internal/transport/ws"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger     *slog.Logger
	HubManager *ws.HubManager

	// StaticDir is served at / when set
	StaticDir string
}

// NewRouter creates a new router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	lobbyHandler := handler.NewLobbyHandler(cfg.HubManager, cfg.Logger)

	loggingMiddleware := middleware.Logging(cfg.Logger)
	recoveryMiddleware := middleware.Recovery(cfg.Logger)

	// API subrouter with common middleware
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(recoveryMiddleware)
	api.Use(loggingMiddleware)

	api.HandleFunc("/health", healthHandler(cfg.HubManager)).Methods(http.MethodGet)
	api.HandleFunc("/lobbies", lobbyHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/lobbies", lobbyHandler.Create).Methods(http.MethodPost)
	api.HandleFunc("/lobbies/{id}", lobbyHandler.Get).Methods(http.MethodGet)

	// WebSocket endpoints
	sockets := r.PathPrefix("/ws").Subrouter()
	sockets.Use(recoveryMiddleware)
	sockets.Use(loggingMiddleware)
	sockets.HandleFunc("", lobbyHandler.Connect).Methods(http.MethodGet)
	sockets.HandleFunc("/{id}", lobbyHandler.Connect).Methods(http.MethodGet)

	// Client bundle
	if cfg.StaticDir != "" {
		r.PathPrefix("/").Handler(http.FileServer(http.Dir(cfg.StaticDir)))
	}

	return r
}

func healthHandler(hubManager *ws.HubManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response.JSON(w, http.StatusOK, response.Health{
			Status:  "ok",
			Lobbies: len(hubManager.List()),
		})
	}
}
