package memory

import (
	"context"
	"sync"

	"github.com/mcoot/partylobby/internal/model"
	"github.com/mcoot/partylobby/internal/storage"
)

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu        sync.RWMutex
	snapshots map[model.LobbyID][]byte
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		snapshots: make(map[model.LobbyID][]byte),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

func (s *Storage) SaveSnapshot(ctx context.Context, lobby model.LobbyID, payload []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	data := make([]byte, len(payload))
	copy(data, payload)
	s.snapshots[lobby] = data
	return nil
}

func (s *Storage) GetSnapshot(ctx context.Context, lobby model.LobbyID) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.snapshots[lobby]
	if !ok {
		return nil, model.ErrSnapshotNotFound
	}
	result := make([]byte, len(data))
	copy(result, data)
	return result, nil
}

func (s *Storage) DeleteSnapshot(ctx context.Context, lobby model.LobbyID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.snapshots, lobby)
	return nil
}
