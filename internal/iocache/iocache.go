// Package iocache persists parsed runs and training history in SQL databases.
package iocache

import (
	"sync"

	"github.com/huangsam/queuewait/internal/contract"
)

// CacheStoreManager manages the run cache and the history store.
type CacheStoreManager struct {
	sync.RWMutex // Protects the store pointers during initialization
	run          contract.CacheStore
	history      contract.HistoryStore
}

var _ contract.CacheManager = &CacheStoreManager{} // Compile-time check

// GetRunStore returns the run CacheStore.
func (mgr *CacheStoreManager) GetRunStore() contract.CacheStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.run
}

// GetHistoryStore returns the training HistoryStore.
func (mgr *CacheStoreManager) GetHistoryStore() contract.HistoryStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.history
}
