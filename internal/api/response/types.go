package response

import (
	"time"

	"github.com/mcoot/partylobby/internal/model"
)

// Lobby represents a lobby in API responses
type Lobby struct {
	ID          string    `json:"id"`
	Capacity    int       `json:"capacity"`
	Started     bool      `json:"started"`
	Active      []string  `json:"active"`
	Inactive    []string  `json:"inactive"`
	HasSnapshot bool      `json:"has_snapshot"`
	Connections int       `json:"connections"`
	CreatedAt   time.Time `json:"created_at"`
}

// LobbyFromStatus converts a model.LobbyStatus to a response Lobby
func LobbyFromStatus(s model.LobbyStatus) Lobby {
	return Lobby{
		ID:          string(s.ID),
		Capacity:    s.Capacity,
		Started:     s.Started,
		Active:      names(s.Active),
		Inactive:    names(s.Inactive),
		HasSnapshot: s.HasSnapshot,
		Connections: s.Connections,
		CreatedAt:   s.CreatedAt,
	}
}

// LobbyList is the response for listing lobbies
type LobbyList struct {
	Lobbies []Lobby `json:"lobbies"`
}

// Health is the response for the health endpoint
type Health struct {
	Status  string `json:"status"`
	Lobbies int    `json:"lobbies"`
}

func names(in []model.PlayerName) []string {
	out := make([]string, 0, len(in))
	for _, n := range in {
		out = append(out, string(n))
	}
	return out
}
