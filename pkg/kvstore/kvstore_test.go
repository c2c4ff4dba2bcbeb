package kvstore_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slicemaster/storefront/pkg/kvstore"
)

type snapshot struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestFileStoreRoundTrip(t *testing.T) {
	store, err := kvstore.OpenDir(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Put("cart", snapshot{Name: "margherita", Count: 2}))

	var got snapshot
	require.True(t, store.Get("cart", &got))
	assert.Equal(t, snapshot{Name: "margherita", Count: 2}, got)
}

func TestFileStoreMissingKeyIsMiss(t *testing.T) {
	store, err := kvstore.OpenDir(t.TempDir())
	require.NoError(t, err)

	var got snapshot
	assert.False(t, store.Get("nope", &got))
}

func TestFileStoreCorruptValueIsMiss(t *testing.T) {
	dir := t.TempDir()
	store, err := kvstore.OpenDir(dir)
	require.NoError(t, err)

	require.NoError(t, store.Put("cart", snapshot{Name: "x"}))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "cart.json"), []byte("{broken"), 0o644))

	var got snapshot
	assert.False(t, store.Get("cart", &got))
}

func TestFileStoreDelete(t *testing.T) {
	store, err := kvstore.OpenDir(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Put("session", snapshot{Name: "y"}))
	require.NoError(t, store.Delete("session"))

	var got snapshot
	assert.False(t, store.Get("session", &got))

	// Deleting an absent key is not an error.
	require.NoError(t, store.Delete("session"))
}

func TestMemoryStoreMatchesFileSemantics(t *testing.T) {
	store := kvstore.NewMemory()

	require.NoError(t, store.Put("k", snapshot{Name: "z", Count: 1}))

	var got snapshot
	require.True(t, store.Get("k", &got))
	assert.Equal(t, 1, got.Count)

	store.Corrupt("k")
	assert.False(t, store.Get("k", &got))

	require.NoError(t, store.Delete("k"))
	assert.False(t, store.Get("k", &got))
}
