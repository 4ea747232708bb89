package cache

import (
	"errors"
	"time"
)

// Tiered checks its tiers fastest first. A hit in a slower tier is copied
// into every faster tier; writes go to all of them.
type Tiered struct {
	tiers []Cache
}

// NewTiered stacks caches, fastest first
func NewTiered(tiers ...Cache) *Tiered {
	return &Tiered{tiers: tiers}
}

// NewLayeredCache is the usual memory-over-disk stack
func NewLayeredCache(memoryTTL time.Duration, diskDir string, diskTTL time.Duration) *Tiered {
	return NewTiered(NewMemoryCache(memoryTTL, 10*time.Minute), NewDiskCache(diskDir, diskTTL))
}

func (t *Tiered) Get(key string) ([]byte, bool) {
	for i, tier := range t.tiers {
		val, ok := tier.Get(key)
		if !ok {
			continue
		}
		for _, faster := range t.tiers[:i] {
			// zero TTL: each faster tier keeps its own default
			_ = faster.Set(key, val, 0)
		}
		return val, true
	}
	return nil, false
}

func (t *Tiered) Set(key string, value []byte, ttl time.Duration) error {
	return t.each(func(c Cache) error { return c.Set(key, value, ttl) })
}

func (t *Tiered) Delete(key string) error {
	return t.each(func(c Cache) error { return c.Delete(key) })
}

func (t *Tiered) Clear() error {
	return t.each(Cache.Clear)
}

func (t *Tiered) each(fn func(Cache) error) error {
	var errs []error
	for _, tier := range t.tiers {
		errs = append(errs, fn(tier))
	}
	return errors.Join(errs...)
}
