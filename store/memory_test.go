package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fluxgate/fluxgate/registry"
)

func TestMemoryStore_ReadFromState(t *testing.T) {
	t.Parallel()

	s := NewMemoryStore("/users/:id", "id")
	s.Set("42", "ada")

	assert.Equal(t, "ada", s.ReadFromState(registry.Query{"id": "42"}))
	assert.Nil(t, s.ReadFromState(registry.Query{"id": "missing"}))
}

func TestMemoryStore_Fetch(t *testing.T) {
	t.Parallel()

	s := NewMemoryStore("/users/:id", "id")
	s.Set("42", "ada")

	got, err := s.Fetch(context.Background(), registry.Query{"id": "42"})
	require.NoError(t, err)
	assert.Equal(t, "ada", got)
}

func TestMemoryStore_FetchCanceledContext(t *testing.T) {
	t.Parallel()

	s := NewMemoryStore("/users/:id", "id")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Fetch(ctx, registry.Query{"id": "42"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMemoryStore_DumpLoadRoundTrip(t *testing.T) {
	t.Parallel()

	s := NewMemoryStore("/users/:id", "id")
	s.Set("1", "ada")
	s.Set("2", "grace")

	snapshot := s.DumpState()

	fresh := NewMemoryStore("/users/:id", "id")
	require.NoError(t, fresh.LoadState(snapshot))

	assert.Equal(t, "ada", fresh.ReadFromState(registry.Query{"id": "1"}))
	assert.Equal(t, "grace", fresh.ReadFromState(registry.Query{"id": "2"}))
}

func TestMemoryStore_DumpIsACopy(t *testing.T) {
	t.Parallel()

	s := NewMemoryStore("/users/:id", "id")
	s.Set("1", "ada")

	snapshot, ok := s.DumpState().(map[string]any)
	require.True(t, ok)
	snapshot["1"] = "mutated"

	assert.Equal(t, "ada", s.ReadFromState(registry.Query{"id": "1"}))
}

func TestMemoryStore_LoadState(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		snapshot  any
		expectErr bool
	}{
		{
			name:     "valid snapshot",
			snapshot: map[string]any{"k": "v"},
		},
		{
			name:     "nil snapshot clears state",
			snapshot: nil,
		},
		{
			name:      "wrong snapshot type",
			snapshot:  []string{"not", "a", "map"},
			expectErr: true,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			s := NewMemoryStore("/cfg/:key", "key")
			s.Set("old", "value")

			err := s.LoadState(tt.snapshot)
			if tt.expectErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)

			// Loading always replaces prior state wholesale.
			assert.Nil(t, s.ReadFromState(registry.Query{"key": "old"}))
		})
	}
}

func TestMemoryStore_Delete(t *testing.T) {
	t.Parallel()

	s := NewMemoryStore("/cfg/:key", "key")
	s.Set("k", "v")
	s.Delete("k")

	assert.Nil(t, s.ReadFromState(registry.Query{"key": "k"}))
}

func TestMemoryStore_Identity(t *testing.T) {
	t.Parallel()

	a := NewMemoryStore("/x/:key", "key")
	b := NewMemoryStore("/x/:key", "key")

	assert.NotEmpty(t, a.ID())
	assert.NotEqual(t, a.ID(), b.ID())
	assert.Equal(t, "/x/:key", a.Route())
}

func TestMemoryStore_SatisfiesStoreContract(t *testing.T) {
	t.Parallel()

	var _ registry.Store = NewMemoryStore("/x/:key", "key")
}
