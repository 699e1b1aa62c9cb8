package contacts

import (
	"context"
	"sync"
	"time"
)

// MemoryCache is the in-process fallback used when no cache backend is
// reachable. Entries never expire; that is acceptable because the cache
// is strictly an accelerator and the durable store stays authoritative.
type MemoryCache struct {
	mu    sync.RWMutex
	store map[string]string
}

var _ Cache = (*MemoryCache)(nil)

// NewMemoryCache creates an empty in-process cache
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		store: make(map[string]string),
	}
}

func (m *MemoryCache) Get(_ context.Context, key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.store[key], nil
}

// Set stores the value. TTL is ignored; last write wins.
func (m *MemoryCache) Set(_ context.Context, key, value string, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.store[key] = value
	return nil
}
