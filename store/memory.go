// Package store provides built-in Store implementations for the registry.
//
// Both stores answer queries by a single named route parameter (the key
// parameter): a store registered under "/users/:id" with key parameter "id"
// resolves "/users/42" to the state entry "42".
package store

import (
	"context"
	"fmt"
	"maps"
	"sync"

	"github.com/google/uuid"

	"github.com/fluxgate/fluxgate/observability"
	"github.com/fluxgate/fluxgate/registry"
)

// MemoryStore is an in-memory Store. Its state is a string-keyed map and
// its snapshots are plain map copies (map[string]any).
type MemoryStore struct {
	id       string
	route    string
	keyParam string
	logger   observability.Logger

	mu    sync.RWMutex
	state map[string]any
}

// MemoryOption is a functional option for configuring a MemoryStore.
type MemoryOption func(*MemoryStore)

// WithMemoryLogger sets the store logger.
func WithMemoryLogger(logger observability.Logger) MemoryOption {
	return func(s *MemoryStore) {
		s.logger = logger
	}
}

// NewMemoryStore creates a memory store registered under route, answering
// queries by the named route parameter keyParam.
func NewMemoryStore(route, keyParam string, opts ...MemoryOption) *MemoryStore {
	s := &MemoryStore{
		id:       uuid.NewString(),
		route:    route,
		keyParam: keyParam,
		logger:   observability.NopLogger(),
		state:    make(map[string]any),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// ID returns the store's unique identity.
func (s *MemoryStore) ID() string {
	return s.id
}

// Route returns the store's route pattern.
func (s *MemoryStore) Route() string {
	return s.route
}

// Fetch answers the query from state, honoring context cancellation.
func (s *MemoryStore) Fetch(ctx context.Context, query registry.Query) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.ReadFromState(query), nil
}

// ReadFromState returns the state entry for the query's key parameter, or
// nil if absent.
func (s *MemoryStore) ReadFromState(query registry.Query) any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state[query.Get(s.keyParam)]
}

// Set stores a value under key.
func (s *MemoryStore) Set(key string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state[key] = value
}

// Delete removes the entry for key.
func (s *MemoryStore) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.state, key)
}

// LoadState replaces the state with a snapshot produced by DumpState. A nil
// snapshot clears the store. String-valued maps (the shape a YAML round
// trip can produce) are accepted alongside map[string]any.
func (s *MemoryStore) LoadState(snapshot any) error {
	state := make(map[string]any)

	switch m := snapshot.(type) {
	case nil:
	case map[string]any:
		state = maps.Clone(m)
	case map[string]string:
		for k, v := range m {
			state[k] = v
		}
	default:
		return fmt.Errorf("memory store %s: unexpected snapshot type %T", s.route, snapshot)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state

	s.logger.Debug("state loaded",
		observability.String("route", s.route),
		observability.Int("entries", len(s.state)),
	)
	return nil
}

// DumpState returns a copy of the current state.
func (s *MemoryStore) DumpState() any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return maps.Clone(s.state)
}
