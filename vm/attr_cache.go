package vm

import (
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru"
)

// Attribute lookup caching
//
// Resolving an attribute on a class walks its MRO and probes one table
// per class. Results are memoised per (class, name) in an LRU cache.
// Entries are tagged with an epoch; any change to a class attribute table
// bumps the epoch so stale entries can never be hit again.

// DefaultAttrCacheSize is the number of (class, name) lookups kept by default.
const DefaultAttrCacheSize = 1024

type attrCacheKey struct {
	class *Class
	name  string
	epoch uint64
}

type attrCacheEntry struct {
	value Value
	owner *Class
}

// AttrCache memoises class-level attribute lookups. A nil *AttrCache is a
// valid, disabled cache.
type AttrCache struct {
	entries *lru.Cache
	epoch   atomic.Uint64

	// Statistics for profiling
	hits   atomic.Uint64
	misses atomic.Uint64
}

// NewAttrCache creates a cache holding up to size lookups. A size of zero
// or less returns nil, which disables caching.
func NewAttrCache(size int) *AttrCache {
	if size <= 0 {
		return nil
	}
	entries, err := lru.New(size)
	if err != nil {
		// lru.New only fails for non-positive sizes.
		panic("vm: " + err.Error())
	}
	return &AttrCache{entries: entries}
}

// Lookup resolves name on cls, consulting the cache first.
func (c *AttrCache) Lookup(cls *Class, name string) (Value, *Class, bool) {
	if c == nil {
		return cls.Lookup(name)
	}

	key := attrCacheKey{class: cls, name: name, epoch: c.epoch.Load()}
	if e, ok := c.entries.Get(key); ok {
		c.hits.Add(1)
		entry := e.(attrCacheEntry)
		return entry.value, entry.owner, true
	}
	c.misses.Add(1)

	v, owner, ok := cls.Lookup(name)
	if ok {
		// Failed lookups are not cached
		c.entries.Add(key, attrCacheEntry{value: v, owner: owner})
	}
	return v, owner, ok
}

// Invalidate discards every cached lookup.
func (c *AttrCache) Invalidate() {
	if c == nil {
		return
	}
	c.epoch.Add(1)
	c.entries.Purge()
}

// Len returns the number of cached lookups.
func (c *AttrCache) Len() int {
	if c == nil {
		return 0
	}
	return c.entries.Len()
}

// Stats returns the hit and miss counts.
func (c *AttrCache) Stats() (hits, misses uint64) {
	if c == nil {
		return 0, 0
	}
	return c.hits.Load(), c.misses.Load()
}
