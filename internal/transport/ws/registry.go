package ws

import (
	"sort"
	"sync"

	"github.com/mcoot/partylobby/internal/model"
)

// Registry is the set of open connections of one lobby.
// It is safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	clients map[model.ConnID]*Client
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		clients: make(map[model.ConnID]*Client),
	}
}

// Add registers a client
func (r *Registry) Add(c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clients[c.id] = c
}

// Remove drops a client and closes its send queue.
// Returns false if the client was not registered.
func (r *Registry) Remove(id model.ConnID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.clients[id]
	if !ok {
		return false
	}
	delete(r.clients, id)
	close(c.send)
	return true
}

// Has reports whether id is an open connection
func (r *Registry) Has(id model.ConnID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.clients[id]
	return ok
}

// Len returns the number of open connections
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.clients)
}

// Send queues data for id without blocking
func (r *Registry) Send(id model.ConnID, data []byte) error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.clients[id]
	if !ok {
		return model.ErrConnectionNotFound
	}
	select {
	case c.send <- data:
		return nil
	default:
		return model.ErrSendBufferFull
	}
}

// Clients returns a snapshot of the registered clients ordered by ID
func (r *Registry) Clients() []*Client {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Client, 0, len(r.clients))
	for _, c := range r.clients {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].id < out[j].id })
	return out
}
