package fetcher

import (
	"sync"
	"time"
)

// Cache is a run-scoped result cache with optional per-entry TTL. Zero TTL
// means the entry lives for the whole run.
type Cache struct {
	data sync.Map
	now  func() time.Time
}

type cacheEntry struct {
	value   any
	expires time.Time
}

func NewCache() *Cache {
	return &Cache{now: time.Now}
}

func (c *Cache) Get(key string) (any, bool) {
	v, ok := c.data.Load(key)
	if !ok {
		return nil, false
	}
	entry := v.(cacheEntry)
	if !entry.expires.IsZero() && c.now().After(entry.expires) {
		c.data.Delete(key)
		return nil, false
	}
	return entry.value, true
}

func (c *Cache) Set(key string, value any) {
	c.data.Store(key, cacheEntry{value: value})
}

func (c *Cache) SetTTL(key string, value any, ttl time.Duration) {
	entry := cacheEntry{value: value}
	if ttl > 0 {
		entry.expires = c.now().Add(ttl)
	}
	c.data.Store(key, entry)
}

func (c *Cache) Invalidate(key string) {
	c.data.Delete(key)
}
