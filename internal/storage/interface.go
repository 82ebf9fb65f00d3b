package storage

import (
	"context"

	"github.com/mcoot/partylobby/internal/model"
)

// Storage defines the interface for game state snapshot persistence.
// Snapshots are opaque payloads; the store never inspects them.
type Storage interface {
	// SaveSnapshot overwrites the lobby's snapshot
	SaveSnapshot(ctx context.Context, lobby model.LobbyID, payload []byte) error
	// GetSnapshot returns model.ErrSnapshotNotFound when the lobby has none
	GetSnapshot(ctx context.Context, lobby model.LobbyID) ([]byte, error)
	DeleteSnapshot(ctx context.Context, lobby model.LobbyID) error
}
