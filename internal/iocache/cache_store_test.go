package iocache

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/huangsam/queuewait/schema"
)

func newTestCacheStore(t *testing.T) *CacheStoreImpl {
	t.Helper()
	store, err := NewCacheStore(runCacheTable, schema.SQLiteBackend, filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store.(*CacheStoreImpl)
}

func TestCacheStoreSetAndGet(t *testing.T) {
	store := newTestCacheStore(t)

	_, _, _, err := store.Get("missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)

	require.NoError(t, store.Set("key", []byte(`{"a":1}`), 1, 100))
	value, version, ts, err := store.Get("key")
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"a":1}`), value)
	assert.Equal(t, 1, version)
	assert.Equal(t, int64(100), ts)

	// Same key is replaced, not duplicated
	require.NoError(t, store.Set("key", []byte(`{"a":2}`), 2, 200))
	value, version, ts, err = store.Get("key")
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"a":2}`), value)
	assert.Equal(t, 2, version)
	assert.Equal(t, int64(200), ts)
}

func TestCacheStoreStatus(t *testing.T) {
	store := newTestCacheStore(t)

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, "sqlite", status.Backend)
	assert.True(t, status.Connected)
	assert.Zero(t, status.TotalEntries)

	require.NoError(t, store.Set("old", []byte("x"), 1, 1000))
	require.NoError(t, store.Set("new", []byte("y"), 1, 2000))

	status, err = store.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, 2, status.TotalEntries)
	assert.Equal(t, time.Unix(2000, 0), status.LastEntryTime)
	assert.Equal(t, time.Unix(1000, 0), status.OldestEntryTime)
	assert.Positive(t, status.TableSizeBytes)
}

func TestCacheStoreNoneBackend(t *testing.T) {
	store, err := NewCacheStore(runCacheTable, schema.NoneBackend, "")
	require.NoError(t, err)

	assert.NoError(t, store.Set("key", []byte("x"), 1, 1))
	_, _, _, err = store.Get("key")
	assert.ErrorIs(t, err, sql.ErrNoRows)

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, "none", status.Backend)
	assert.False(t, status.Connected)
	assert.NoError(t, store.Close())
}

func TestNewCacheStoreRejectsBadInput(t *testing.T) {
	_, err := NewCacheStore("runs; DROP TABLE x", schema.SQLiteBackend, ":memory:")
	assert.Error(t, err)

	_, err = NewCacheStore(runCacheTable, schema.DatabaseBackend("oracle"), "")
	assert.ErrorContains(t, err, "unsupported backend")
}

func TestValidateTableName(t *testing.T) {
	tests := []struct {
		name    string
		wantErr bool
	}{
		{"queuewait_run_cache", false},
		{"_private", false},
		{"Runs2", false},
		{"", true},
		{"2runs", true},
		{"runs-cache", true},
		{"runs cache", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateTableName(tt.name)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestQueryHelpers(t *testing.T) {
	assert.Equal(t, "`runs`", quoteTableName("runs", schema.MySQLBackend))
	assert.Equal(t, `"runs"`, quoteTableName("runs", schema.PostgreSQLBackend))
	assert.Equal(t, `"runs"`, quoteTableName("runs", schema.SQLiteBackend))

	assert.Equal(t, "?, ?, ?", placeholders(schema.SQLiteBackend, 3))
	assert.Equal(t, "?, ?", placeholders(schema.MySQLBackend, 2))
	assert.Equal(t, "$1, $2, $3", placeholders(schema.PostgreSQLBackend, 3))
	assert.Equal(t, "$4", placeholder(schema.PostgreSQLBackend, 4))
	assert.Equal(t, "?", placeholder(schema.SQLiteBackend, 4))

	assert.Contains(t, getUpsertQuery("runs", schema.SQLiteBackend), "INSERT OR REPLACE")
	assert.Contains(t, getUpsertQuery("runs", schema.MySQLBackend), "ON DUPLICATE KEY UPDATE")
	assert.Contains(t, getUpsertQuery("runs", schema.PostgreSQLBackend), "ON CONFLICT (cache_key)")
	assert.Contains(t, getCreateTableQuery("runs", schema.PostgreSQLBackend), "BYTEA")
}

func TestFormatTime(t *testing.T) {
	ts := time.Date(2024, 3, 4, 18, 30, 0, 500, time.FixedZone("X", 3600))
	assert.Equal(t, "2024-03-04T17:30:00.0000005Z", formatTime(ts, schema.SQLiteBackend))
	assert.Equal(t, ts, formatTime(ts, schema.PostgreSQLBackend))
}

func TestTimeScanner(t *testing.T) {
	want := time.Date(2024, 3, 4, 17, 30, 0, 0, time.UTC)

	tests := []struct {
		name  string
		src   any
		valid bool
	}{
		{"nil", nil, false},
		{"time", want, true},
		{"rfc3339", "2024-03-04T17:30:00Z", true},
		{"bytes", []byte("2024-03-04T17:30:00Z"), true},
		{"datetime", "2024-03-04 17:30:00.000000", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ts timeScanner
			require.NoError(t, ts.Scan(tt.src))
			assert.Equal(t, tt.valid, ts.Valid)
			if tt.valid {
				assert.True(t, want.Equal(ts.Time))
				require.NotNil(t, ts.ptr())
			} else {
				assert.Nil(t, ts.ptr())
			}
		})
	}

	var ts timeScanner
	assert.Error(t, ts.Scan("yesterday"))
	assert.Error(t, ts.Scan(42))
}
