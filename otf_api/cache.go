package otf_api

import (
	"encoding/json"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Cache memoizes raw JSON responses for idempotent lookups (studio detail,
// member detail, performance summaries, telemetry). Entries carry a tag so a
// mutation can invalidate a whole family of keys without knowing them
// individually.
//
// Concurrent GetOrCompute calls for the same key may both run compute; the
// underlying calls are idempotent GETs, so no stampede protection is needed.
type Cache struct {
	store *gocache.Cache

	mu   sync.Mutex
	tags map[string]map[string]struct{}
}

// NewCache returns an empty in-memory cache. Expired entries are purged every
// few minutes by the backing store.
func NewCache() *Cache {
	return &Cache{
		store: gocache.New(gocache.NoExpiration, 5*time.Minute),
		tags:  make(map[string]map[string]struct{}),
	}
}

// GetOrCompute returns the cached value for key, or runs compute, stores its
// result under key/tag for ttl, and returns it. Errors from compute are not
// cached.
func (c *Cache) GetOrCompute(key string, ttl time.Duration, tag string, compute func() (json.RawMessage, error)) (json.RawMessage, error) {
	if v, ok := c.store.Get(key); ok {
		return v.(json.RawMessage), nil
	}

	value, err := compute()
	if err != nil {
		return nil, err
	}

	c.store.Set(key, value, ttl)
	c.mu.Lock()
	if c.tags[tag] == nil {
		c.tags[tag] = make(map[string]struct{})
	}
	c.tags[tag][key] = struct{}{}
	c.mu.Unlock()

	return value, nil
}

// InvalidateTag drops every entry stored under tag.
func (c *Cache) InvalidateTag(tag string) {
	c.mu.Lock()
	keys := c.tags[tag]
	delete(c.tags, tag)
	c.mu.Unlock()

	for key := range keys {
		c.store.Delete(key)
	}
}

// Flush drops everything.
func (c *Cache) Flush() {
	c.mu.Lock()
	c.tags = make(map[string]map[string]struct{})
	c.mu.Unlock()
	c.store.Flush()
}
