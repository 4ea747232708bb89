package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryCache keeps entries in process until they expire
type MemoryCache struct {
	items *gocache.Cache
}

// NewMemoryCache creates a memory cache. Set with a zero ttl uses
// defaultTTL; expired items are swept every cleanupInterval.
func NewMemoryCache(defaultTTL, cleanupInterval time.Duration) *MemoryCache {
	return &MemoryCache{items: gocache.New(defaultTTL, cleanupInterval)}
}

func (m *MemoryCache) Get(key string) ([]byte, bool) {
	if v, ok := m.items.Get(key); ok {
		b, isBytes := v.([]byte)
		return b, isBytes
	}
	return nil, false
}

func (m *MemoryCache) Set(key string, value []byte, ttl time.Duration) error {
	if ttl == 0 {
		ttl = gocache.DefaultExpiration
	}
	m.items.Set(key, value, ttl)
	return nil
}

func (m *MemoryCache) Delete(key string) error {
	m.items.Delete(key)
	return nil
}

func (m *MemoryCache) Clear() error {
	m.items.Flush()
	return nil
}

// Len counts entries not yet swept, expired ones included
func (m *MemoryCache) Len() int {
	return m.items.ItemCount()
}
