package redis

import (
	"fmt"

	"github.com/mcoot/partylobby/internal/model"
)

// Key prefix for all lobby data
const keyPrefix = "partylobby"

// snapshotKey returns the Redis key for a lobby's game state snapshot
func snapshotKey(lobby model.LobbyID) string {
	return fmt.Sprintf("%s:snapshot:%s", keyPrefix, lobby)
}
