package model

import "time"

// LobbyID is a human-readable identifier for joining lobbies
type LobbyID string

// DefaultLobbyID is the lobby served on the bare /ws endpoint
const DefaultLobbyID LobbyID = "default"

// DefaultCapacity is the number of players that starts a round automatically
const DefaultCapacity = 4

// LobbyStatus is a read-only view of a lobby for the admin API
type LobbyStatus struct {
	ID          LobbyID
	Capacity    int
	Started     bool
	Active      []PlayerName
	Inactive    []PlayerName
	HasSnapshot bool
	Connections int
	CreatedAt   time.Time
}
