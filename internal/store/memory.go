// internal/store/memory.go
//
// In-memory registry of live game sessions (round engines).
// Engines are live objects with their own countdown goroutines, so they
// always live in process memory; finished sessions are persisted
// separately by the results package.
//
// Characteristics:
//   - Stores *game.Engine keyed by session ID in a map.
//   - Concurrency-safe via RWMutex (concurrent reads allowed, writes exclusive).
//   - State is lost when the process restarts.
//   - Errors are returned for missing session IDs on Get().

package store

import (
	"context"
	"errors"
	"sync"

	"github.com/wordbridge/go-server/internal/game"
)

// ErrNotFound is returned when a session ID is unknown.
var ErrNotFound = errors.New("session not found")

// Store defines the registry interface for live sessions.
type Store interface {
	// Save registers or updates an engine under its session ID.
	Save(ctx context.Context, e *game.Engine) error

	// Get retrieves an engine by session ID.
	Get(ctx context.Context, id string) (*game.Engine, error)

	// Delete removes an engine, stopping its countdown.
	Delete(ctx context.Context, id string) error
}

// memory is an in-memory map-based Store implementation.
type memory struct {
	mu      sync.RWMutex
	engines map[string]*game.Engine
}

// NewMemoryStore constructs a new in-memory Store.
func NewMemoryStore() Store {
	return &memory{engines: make(map[string]*game.Engine)}
}

// Save adds or updates the engine in the map.
func (m *memory) Save(ctx context.Context, e *game.Engine) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.engines[e.ID()] = e
	return nil
}

// Get looks up an engine by session ID.
func (m *memory) Get(ctx context.Context, id string) (*game.Engine, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if e, ok := m.engines[id]; ok {
		return e, nil
	}
	return nil, ErrNotFound
}

// Delete stops and removes an engine. Unknown IDs are a no-op.
func (m *memory) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.engines[id]; ok {
		e.Stop()
		delete(m.engines, id)
	}
	return nil
}
