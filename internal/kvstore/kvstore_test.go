package kvstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreConformance(t *testing.T) {
	t.Run("Memory", func(t *testing.T) {
		testStoreOperations(t, NewMemory())
	})

	t.Run("JSONFile", func(t *testing.T) {
		store, err := NewJSONFile(filepath.Join(t.TempDir(), "state.json"))
		require.NoError(t, err)
		testStoreOperations(t, store)
	})
}

func testStoreOperations(t *testing.T, store Store) {
	ctx := context.Background()

	_, err := store.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrKeyNotFound)

	require.NoError(t, store.Set(ctx, "alpha", "one"))
	got, err := store.Get(ctx, "alpha")
	require.NoError(t, err)
	assert.Equal(t, "one", got)

	// Overwrite
	require.NoError(t, store.Set(ctx, "alpha", "two"))
	got, err = store.Get(ctx, "alpha")
	require.NoError(t, err)
	assert.Equal(t, "two", got)

	// Dotted keys are flat keys, not nested paths
	require.NoError(t, store.Set(ctx, "storage.native.root", "/projects/fonts"))
	got, err = store.Get(ctx, "storage.native.root")
	require.NoError(t, err)
	assert.Equal(t, "/projects/fonts", got)

	_, err = store.Get(ctx, "storage")
	assert.ErrorIs(t, err, ErrKeyNotFound)

	require.NoError(t, store.Delete(ctx, "alpha"))
	_, err = store.Get(ctx, "alpha")
	assert.ErrorIs(t, err, ErrKeyNotFound)

	err = store.Delete(ctx, "alpha")
	assert.ErrorIs(t, err, ErrKeyNotFound)
}

func TestJSONFilePersistence(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "state.json")

	store, err := NewJSONFile(path)
	require.NoError(t, err)
	require.NoError(t, store.Set(ctx, "storage.native.root", `{"path":"/fonts"}`))

	// A fresh instance over the same file sees prior values.
	reopened, err := NewJSONFile(path)
	require.NoError(t, err)
	got, err := reopened.Get(ctx, "storage.native.root")
	require.NoError(t, err)
	assert.Equal(t, `{"path":"/fonts"}`, got)
}

func TestJSONFileRejectsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0o600))

	_, err := NewJSONFile(path)
	assert.Error(t, err)
}
