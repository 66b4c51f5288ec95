package core

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/huangsam/queuewait/core/ingest"
	"github.com/huangsam/queuewait/internal/contract"
	"github.com/huangsam/queuewait/schema"
)

// currentCacheVersion defines the version of the cache schema
const currentCacheVersion = 1

// cacheTTL is how long a parsed run stays valid in the cache
const cacheTTL = 7 * 24 * time.Hour

// cachedLoadPath loads one directory entry, going through the run cache when one is configured.
// Only successful loads are cached; failures are cheap to reproduce.
func cachedLoadPath(store contract.CacheStore, path string) schema.LoadResult {
	info, err := os.Stat(path)
	if err != nil {
		return schema.LoadResult{Path: path, Err: fmt.Errorf("stat %s: %w", path, err)}
	}
	if info.IsDir() {
		return schema.LoadResult{Path: path, Err: fmt.Errorf("%s: %w", path, ingest.ErrIsDirectory)}
	}
	if store == nil {
		// Fallback to direct parsing
		return ingest.LoadPath(path)
	}

	key := generateCacheKey(path, info)

	// Check for cache hit
	if run := checkCacheHit(store, key); run != nil {
		return schema.LoadResult{Path: path, Run: run}
	}

	// Cache miss: parse and store
	return computeAndStore(store, key, path)
}

// checkCacheHit attempts to retrieve and validate a cached run
func checkCacheHit(store contract.CacheStore, key string) *schema.Run {
	data, version, ts, err := store.Get(key)
	if err != nil {
		return nil // Cache miss
	}

	// Validate version and staleness
	if version != currentCacheVersion || time.Since(time.Unix(ts, 0)) > cacheTTL {
		return nil
	}
	var run schema.Run
	if err := json.Unmarshal(data, &run); err != nil || len(run.Subsequent) == 0 {
		return nil
	}
	return &run
}

// computeAndStore parses the file and stores the run in cache
func computeAndStore(store contract.CacheStore, key, path string) schema.LoadResult {
	result := ingest.LoadPath(path)
	if !result.OK() {
		return result
	}

	if data, err := json.Marshal(result.Run); err == nil {
		_ = store.Set(key, data, currentCacheVersion, time.Now().Unix())
	}
	return result
}

// generateCacheKey creates a key that changes whenever the file is rewritten.
func generateCacheKey(path string, info os.FileInfo) string {
	absPath, err := filepath.Abs(path)
	if err != nil {
		absPath = path
	}
	key := fmt.Sprintf("%s:%d:%d", absPath, info.Size(), info.ModTime().UnixNano())
	return fmt.Sprintf("%x", sha256.Sum256([]byte(key)))
}
