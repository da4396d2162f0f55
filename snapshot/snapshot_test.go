package snapshot

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fluxgate/fluxgate/registry"
	"github.com/fluxgate/fluxgate/store"
	"github.com/fluxgate/fluxgate/util"
)

func tempSnapshotPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "state.yaml")
}

func TestSaveLoadRoundTrip(t *testing.T) {
	t.Parallel()

	path := tempSnapshotPath(t)

	snapshots := []any{
		map[string]string{"1": "ada", "2": "grace"},
		map[string]string{"7": "pending"},
	}

	require.NoError(t, Save(path, snapshots))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Len(t, loaded, 2)
}

func TestLoad_MissingFile(t *testing.T) {
	t.Parallel()

	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoad_MalformedYAML(t *testing.T) {
	t.Parallel()

	path := tempSnapshotPath(t)
	require.NoError(t, os.WriteFile(path, []byte("stores: [unbalanced"), 0o600))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestDumpRestore_RegistryRoundTrip(t *testing.T) {
	t.Parallel()

	path := tempSnapshotPath(t)

	users := store.NewMemoryStore("/users/:id", "id")
	users.Set("1", "ada")
	orders := store.NewMemoryStore("/orders/:id", "id")
	orders.Set("7", "pending")

	r, err := registry.New(registry.WithStores(users, orders))
	require.NoError(t, err)

	require.NoError(t, Dump(r, path))

	// A fresh registry with the same stores in the same order picks the
	// state back up from disk.
	freshUsers := store.NewMemoryStore("/users/:id", "id")
	freshOrders := store.NewMemoryStore("/orders/:id", "id")
	fresh, err := registry.New(registry.WithStores(freshUsers, freshOrders))
	require.NoError(t, err)

	require.NoError(t, Restore(fresh, path))

	got, err := fresh.ReadStoreFromState("/users/1")
	require.NoError(t, err)
	assert.Equal(t, "ada", got)

	got, err = fresh.ReadStoreFromState("/orders/7")
	require.NoError(t, err)
	assert.Equal(t, "pending", got)
}

func TestRestore_StoreCountMismatch(t *testing.T) {
	t.Parallel()

	path := tempSnapshotPath(t)
	require.NoError(t, Save(path, []any{map[string]string{"k": "v"}}))

	r, err := registry.New(registry.WithStores(
		store.NewMemoryStore("/a/:id", "id"),
		store.NewMemoryStore("/b/:id", "id"),
	))
	require.NoError(t, err)

	err = Restore(r, path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, util.ErrStateMismatch))
}
