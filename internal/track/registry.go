// Package track maps externally visible track ids to where the audio bytes
// live on disk, so storage paths never leave the server.
package track

import (
	"sync"

	"github.com/google/uuid"
)

// ID is an opaque track identifier safe to hand to clients.
type ID string

// Registry is an append-only, concurrency-safe id → location map. Entries are
// never evicted: the backing file may be swept away while its id still
// resolves, and readers must treat a missing file as not found.
type Registry struct {
	mu      sync.RWMutex
	entries map[ID]string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[ID]string)}
}

// Register allocates a fresh id for location.
func (r *Registry) Register(location string) ID {
	id := ID(uuid.NewString())

	r.mu.Lock()
	r.entries[id] = location
	r.mu.Unlock()

	return id
}

// Resolve returns the storage location registered under id.
func (r *Registry) Resolve(id ID) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	loc, ok := r.entries[id]
	return loc, ok
}

// Len returns the number of registered tracks.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}
