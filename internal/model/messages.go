package model

import "encoding/json"

// Operation is the kind tag of an inbound client frame
type Operation string

const (
	OpRegister  Operation = "register"
	OpStart     Operation = "start"
	OpInGame    Operation = "ingame"
	OpReconnect Operation = "reconnect"
	OpQuit      Operation = "quit"
)

// Envelope is one inbound frame: {"op": ..., "data": ...}.
// Data stays raw until the operation is known.
type Envelope struct {
	Op   Operation       `json:"op"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Notice titles understood by the client bundle
const (
	TitleError        = "error"
	TitleDisconnected = "Disconnected"
	TitleReconnect    = "reconnect"
)

// GameStateErrorMessage is broadcast when the directory is found over capacity
const GameStateErrorMessage = "Error with game state"

// RosterMessage refreshes the list of active players
type RosterMessage struct {
	RegisteredPlayers []PlayerName `json:"registeredPlayers"`
}

// NewRosterMessage builds a roster message; an empty roster encodes as []
func NewRosterMessage(names []PlayerName) RosterMessage {
	if names == nil {
		names = []PlayerName{}
	}
	return RosterMessage{RegisteredPlayers: names}
}

// Notice is a titled, human-readable message
type Notice struct {
	Title   string `json:"title"`
	Message string `json:"message"`
}

// ErrorNotice builds an error reply
func ErrorNotice(message string) Notice {
	return Notice{Title: TitleError, Message: message}
}

// DisconnectedNotice announces that a player dropped
func DisconnectedNotice(name PlayerName) Notice {
	return Notice{Title: TitleDisconnected, Message: string(name) + " disconnected"}
}

// RejoinedNotice announces that a player came back
func RejoinedNotice(name PlayerName) Notice {
	return Notice{Title: TitleReconnect, Message: string(name) + " rejoined"}
}
