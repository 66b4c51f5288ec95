package core

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/huangsam/queuewait/core/ingest"
	"github.com/huangsam/queuewait/internal/iocache"
	"github.com/huangsam/queuewait/schema"
)

func TestCachedLoadPathHit(t *testing.T) {
	path := filepath.Join(writeDataDir(t, map[string]string{"run.csv": shortRun}), "run.csv")
	cached := schema.Run{
		Start:      schema.Observation{Time: 1, Position: 2, Length: 3},
		Subsequent: []schema.Observation{{Time: 4}},
	}
	data, err := json.Marshal(cached)
	require.NoError(t, err)

	store := &iocache.MockCacheStore{}
	store.On("Get", mock.Anything).Return(data, currentCacheVersion, time.Now().Unix(), nil)

	res := cachedLoadPath(store, path)
	require.True(t, res.OK())
	assert.Equal(t, cached, *res.Run, "hit is served without parsing the file")
	store.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCachedLoadPathMisses(t *testing.T) {
	path := filepath.Join(writeDataDir(t, map[string]string{"run.csv": shortRun}), "run.csv")
	good, err := json.Marshal(schema.Run{Subsequent: []schema.Observation{{Time: 4}}})
	require.NoError(t, err)

	tests := []struct {
		name    string
		data    []byte
		version int
		ts      int64
	}{
		{"old version", good, currentCacheVersion + 1, time.Now().Unix()},
		{"stale", good, currentCacheVersion, time.Now().Add(-8 * 24 * time.Hour).Unix()},
		{"corrupt", []byte("{"), currentCacheVersion, time.Now().Unix()},
		{"empty run", []byte(`{"start":{}}`), currentCacheVersion, time.Now().Unix()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &iocache.MockCacheStore{}
			store.On("Get", mock.Anything).Return(tt.data, tt.version, tt.ts, nil)
			store.On("Set", mock.Anything, mock.Anything, currentCacheVersion, mock.Anything).Return(nil)

			res := cachedLoadPath(store, path)
			require.True(t, res.OK())
			assert.Equal(t, uint64(100), res.Run.Start.Time, "miss falls back to parsing")
			store.AssertNumberOfCalls(t, "Set", 1)
		})
	}
}

func TestCachedLoadPathFailures(t *testing.T) {
	dir := writeDataDir(t, map[string]string{"bad.csv": "nope\n"})
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o755))

	store := &iocache.MockCacheStore{}
	store.On("Get", mock.Anything).Return(nil, 0, int64(0), assert.AnError)

	res := cachedLoadPath(store, filepath.Join(dir, "bad.csv"))
	assert.ErrorIs(t, res.Err, ingest.ErrHeaderUnresolved)
	store.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything)

	res = cachedLoadPath(store, filepath.Join(dir, "sub"))
	assert.ErrorIs(t, res.Err, ingest.ErrIsDirectory)

	res = cachedLoadPath(nil, filepath.Join(dir, "missing.csv"))
	assert.Error(t, res.Err)
}

func TestGenerateCacheKey(t *testing.T) {
	dir := writeDataDir(t, map[string]string{"run.csv": shortRun})
	path := filepath.Join(dir, "run.csv")
	info, err := os.Stat(path)
	require.NoError(t, err)

	key := generateCacheKey(path, info)
	assert.Len(t, key, 64)
	assert.Equal(t, key, generateCacheKey(path, info))

	require.NoError(t, os.WriteFile(path, []byte(longRun), 0o644))
	changed, err := os.Stat(path)
	require.NoError(t, err)
	assert.NotEqual(t, key, generateCacheKey(path, changed))
}
