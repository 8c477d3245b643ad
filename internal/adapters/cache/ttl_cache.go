package cache

import (
	"container/list"
	"sync"
	"time"
)

// TTLCache is an LRU cache whose entries also expire after a per-entry TTL.
type TTLCache[V any] struct {
	capacity int
	cache    map[string]*list.Element
	lru      *list.List
	mu       sync.Mutex
	now      func() time.Time
}

type cacheEntry[V any] struct {
	key       string
	value     V
	expiresAt time.Time
}

// NewTTLCache creates a cache holding at most capacity entries.
func NewTTLCache[V any](capacity int) *TTLCache[V] {
	if capacity <= 0 {
		capacity = 1
	}
	return &TTLCache[V]{
		capacity: capacity,
		cache:    make(map[string]*list.Element),
		lru:      list.New(),
		now:      time.Now,
	}
}

// Get returns the value for key if present and not expired.
func (c *TTLCache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	elem, ok := c.cache[key]
	if !ok {
		return zero, false
	}

	entry := elem.Value.(*cacheEntry[V])
	if !entry.expiresAt.After(c.now()) {
		c.lru.Remove(elem)
		delete(c.cache, key)
		return zero, false
	}

	c.lru.MoveToFront(elem)
	return entry.value, true
}

// Set adds or replaces a value that expires after ttl.
func (c *TTLCache[V]) Set(key string, value V, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	expiresAt := c.now().Add(ttl)

	if elem, ok := c.cache[key]; ok {
		c.lru.MoveToFront(elem)
		entry := elem.Value.(*cacheEntry[V])
		entry.value = value
		entry.expiresAt = expiresAt
		return
	}

	elem := c.lru.PushFront(&cacheEntry[V]{key: key, value: value, expiresAt: expiresAt})
	c.cache[key] = elem

	if c.lru.Len() > c.capacity {
		oldest := c.lru.Back()
		if oldest != nil {
			c.lru.Remove(oldest)
			delete(c.cache, oldest.Value.(*cacheEntry[V]).key)
		}
	}
}

// Delete removes key.
func (c *TTLCache[V]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if elem, ok := c.cache[key]; ok {
		c.lru.Remove(elem)
		delete(c.cache, key)
	}
}

// Len returns the number of entries, expired ones included until they are touched.
func (c *TTLCache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}

// Clear removes all entries.
func (c *TTLCache[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache = make(map[string]*list.Element)
	c.lru = list.New()
}
