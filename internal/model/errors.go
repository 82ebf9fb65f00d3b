package model

import "errors"

// Common errors used across the application
var (
	// Lobby errors
	ErrLobbyNotFound     = errors.New("lobby not found")
	ErrInvalidCapacity   = errors.New("capacity must be positive")
	ErrGameInProgress    = errors.New("game already in progress")
	ErrNameTaken         = errors.New("name already taken")
	ErrCapacityExceeded  = errors.New("active players exceed capacity")
	ErrSnapshotNotFound  = errors.New("no game state snapshot")
	ErrUnknownOperation  = errors.New("unknown operation")
	ErrMalformedMessage  = errors.New("malformed message")
	ErrMissingPlayerName = errors.New("player name is required")

	// Connection errors
	ErrConnectionNotFound = errors.New("connection not found")
	ErrSendBufferFull     = errors.New("send buffer full")
	ErrHubClosed          = errors.New("hub closed")
)
