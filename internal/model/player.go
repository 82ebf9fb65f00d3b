package model

// PlayerName is the client-supplied display name. It is the only player identity.
type PlayerName string

// ConnID identifies one open duplex connection
type ConnID string

// Player is a named participant bound to exactly one connection.
// Conn is replaced wholesale on reconnection; the old connection is not closed.
type Player struct {
	Name PlayerName
	Conn ConnID
}

// PlayerNames extracts the names of the given players, preserving order
func PlayerNames(players []Player) []PlayerName {
	names := make([]PlayerName, 0, len(players))
	for _, p := range players {
		names = append(names, p.Name)
	}
	return names
}
