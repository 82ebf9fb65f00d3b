package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/partylobby/internal/api/request"
	"github.com/mcoot/partylobby/internal/api/response"
	"github.com/mcoot/partylobby/internal/model"
	"github.com/mcoot/partylobby/internal/transport/ws"
)

// LobbyHandler handles lobby endpoints and WebSocket upgrades
type LobbyHandler struct {
	hubManager *ws.HubManager
	logger     *slog.Logger
}

// NewLobbyHandler creates a new lobby handler
func NewLobbyHandler(hubManager *ws.HubManager, logger *slog.Logger) *LobbyHandler {
	return &LobbyHandler{
		hubManager: hubManager,
		logger:     logger.With(slog.String("component", "lobby-handler")),
	}
}

// List handles GET /api/v1/lobbies
func (h *LobbyHandler) List(w http.ResponseWriter, r *http.Request) {
	hubs := h.hubManager.List()
	lobbies := make([]response.Lobby, 0, len(hubs))
	for _, hub := range hubs {
		lobbies = append(lobbies, response.LobbyFromStatus(hub.Status(r.Context())))
	}
	response.JSON(w, http.StatusOK, response.LobbyList{Lobbies: lobbies})
}

// Create handles POST /api/v1/lobbies
func (h *LobbyHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req request.CreateLobbyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		WriteError(w, NewInvalidRequestError("Invalid request body"))
		return
	}
	if req.Capacity < 0 {
		WriteError(w, model.ErrInvalidCapacity)
		return
	}

	hub, err := h.hubManager.Create(r.Context(), req.Capacity)
	if err != nil {
		h.logger.Error("failed to create lobby", slog.Any("error", err))
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.LobbyFromStatus(hub.Status(r.Context())))
}

// Get handles GET /api/v1/lobbies/{id}
func (h *LobbyHandler) Get(w http.ResponseWriter, r *http.Request) {
	hub, err := h.hubManager.Get(model.LobbyID(mux.Vars(r)["id"]))
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.LobbyFromStatus(hub.Status(r.Context())))
}

// Connect handles GET /ws and GET /ws/{id}. The bare path joins the default lobby.
func (h *LobbyHandler) Connect(w http.ResponseWriter, r *http.Request) {
	id, ok := mux.Vars(r)["id"]
	if !ok {
		id = string(model.DefaultLobbyID)
	}

	hub, err := h.hubManager.Get(model.LobbyID(id))
	if err != nil {
		WriteError(w, err)
		return
	}

	ws.ServeWS(w, r, hub)
}
