package cache

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "cache.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSetAndGet(t *testing.T) {
	store := openTestStore(t)

	flag, ok, err := store.Get("9780441013593")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, flag)

	require.NoError(t, store.Set("9780441013593", FlagSuccess))

	flag, ok, err = store.Get("9780441013593")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, FlagSuccess, flag)
}

func TestContains(t *testing.T) {
	store := openTestStore(t)

	ok, err := store.Contains("9780441013593")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Set("9780441013593", FlagError))

	ok, err = store.Contains("9780441013593")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestSetOverwritesFlag(t *testing.T) {
	store := openTestStore(t)

	require.NoError(t, store.Set("9780441013593", FlagError))
	require.NoError(t, store.Set("9780441013593", FlagSuccess))

	flag, ok, err := store.Get("9780441013593")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, FlagSuccess, flag)
}

func TestPersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.db")

	store, err := Open(path, nil)
	require.NoError(t, err)
	require.NoError(t, store.Set("9780441013593", FlagError))
	require.NoError(t, store.Close())

	store, err = Open(path, nil)
	require.NoError(t, err)
	defer store.Close()

	flag, ok, err := store.Get("9780441013593")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, FlagError, flag)
}
