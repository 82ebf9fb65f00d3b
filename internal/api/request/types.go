package request

// CreateLobbyRequest is the request body for creating a lobby.
// A zero capacity selects the server default.
type CreateLobbyRequest struct {
	Capacity int `json:"capacity,omitempty"`
}
