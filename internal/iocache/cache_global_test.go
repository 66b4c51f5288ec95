package iocache

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/huangsam/queuewait/schema"
)

// resetGlobals lets each test run InitStores again.
func resetGlobals(t *testing.T) {
	t.Helper()
	initOnce = sync.Once{}
	closeOnce = sync.Once{}
	Manager = &CacheStoreManager{}
	t.Cleanup(CloseStores)
}

func TestInitStores(t *testing.T) {
	t.Run("both stores", func(t *testing.T) {
		resetGlobals(t)
		dir := t.TempDir()
		cachePath := filepath.Join(dir, "cache.db")
		historyPath := filepath.Join(dir, "history.db")

		err := InitStores(schema.SQLiteBackend, cachePath, schema.SQLiteBackend, historyPath)
		require.NoError(t, err)
		assert.NotNil(t, Manager.GetRunStore())
		assert.NotNil(t, Manager.GetHistoryStore())

		CloseStores()
		_, err = os.Stat(cachePath)
		assert.NoError(t, err, "cache database should be created")
		_, err = os.Stat(historyPath)
		assert.NoError(t, err, "history database should be created")
	})

	t.Run("empty backends leave stores unset", func(t *testing.T) {
		resetGlobals(t)
		require.NoError(t, InitStores("", "", "", ""))
		assert.Nil(t, Manager.GetRunStore())
		assert.Nil(t, Manager.GetHistoryStore())
	})

	t.Run("idempotent", func(t *testing.T) {
		resetGlobals(t)
		for range 3 {
			assert.NoError(t, InitStores(schema.NoneBackend, "", schema.NoneBackend, ""))
		}
		CloseStores()
		CloseStores()
	})

	t.Run("history failure", func(t *testing.T) {
		resetGlobals(t)
		err := InitStores(schema.NoneBackend, "", schema.DatabaseBackend("oracle"), "")
		assert.ErrorContains(t, err, "failed to initialize history store")
		assert.Nil(t, Manager.GetRunStore())
	})
}

func TestClearCache(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.db")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	require.NoError(t, ClearCache(schema.SQLiteBackend, path, ""))
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	// Missing file is not an error
	assert.NoError(t, ClearCache(schema.SQLiteBackend, path, ""))
	assert.Error(t, ClearCache(schema.SQLiteBackend, "", ""))
	assert.NoError(t, ClearCache(schema.NoneBackend, "", ""))
	assert.ErrorContains(t, ClearCache(schema.DatabaseBackend("oracle"), "", ""), "unsupported backend")
}

func TestClearHistory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	store, err := NewHistoryStore(schema.SQLiteBackend, path)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	require.NoError(t, ClearHistory(schema.SQLiteBackend, path, ""))
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
	assert.NoError(t, ClearHistory(schema.NoneBackend, "", ""))
}
