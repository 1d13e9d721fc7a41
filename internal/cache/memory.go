package cache

import (
	"container/list"
	"context"
	"sync"

	"fieldplanner/internal/geo"
)

// DefaultMaxEntries is the default LRU eviction bound (spec §5: "default
// ~100k pairs").
const DefaultMaxEntries = 100_000

// MemoryCache is the default in-process time cache: a concurrency-safe map
// with LRU eviction. Adapted from the teacher's FileDistanceCache (index
// map + sync.RWMutex over an in-memory entry set), generalized to evict
// the least-recently-used entry once the bound is reached instead of
// growing unboundedly, and with the file-persistence stripped out (durable
// persistence is the job of SQLiteCache).
type MemoryCache struct {
	mu         sync.RWMutex
	maxEntries int
	index      map[string]*list.Element
	order      *list.List // front = most recently used
}

type memoryEntry struct {
	key   string
	value Entry
}

// NewMemoryCache constructs an empty MemoryCache bounded to maxEntries. A
// non-positive maxEntries uses DefaultMaxEntries.
func NewMemoryCache(maxEntries int) *MemoryCache {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &MemoryCache{
		maxEntries: maxEntries,
		index:      make(map[string]*list.Element),
		order:      list.New(),
	}
}

// Get returns the cached entry for (origin, dest), if present, and marks
// it most-recently-used.
func (c *MemoryCache) Get(_ context.Context, origin, dest geo.Point) (Entry, bool, error) {
	k := key(origin, dest)

	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.index[k]
	if !ok {
		return Entry{}, false, nil
	}
	c.order.MoveToFront(elem)
	return elem.Value.(*memoryEntry).value, true, nil
}

// Set inserts or updates the entry for the pair, evicting the
// least-recently-used entry if the cache is at capacity.
func (c *MemoryCache) Set(_ context.Context, entry Entry) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.setLocked(entry)
	return nil
}

// SetBatch inserts or updates several entries under a single lock
// acquisition, mirroring the teacher's transactional SetBatch.
func (c *MemoryCache) SetBatch(_ context.Context, entries []Entry) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, e := range entries {
		c.setLocked(e)
	}
	return nil
}

func (c *MemoryCache) setLocked(entry Entry) {
	k := key(entry.Origin, entry.Destination)

	if elem, ok := c.index[k]; ok {
		elem.Value.(*memoryEntry).value = entry
		c.order.MoveToFront(elem)
		return
	}

	elem := c.order.PushFront(&memoryEntry{key: k, value: entry})
	c.index[k] = elem

	if c.order.Len() > c.maxEntries {
		oldest := c.order.Back()
		if oldest != nil {
			c.order.Remove(oldest)
			delete(c.index, oldest.Value.(*memoryEntry).key)
		}
	}
}

// Clear empties the cache.
func (c *MemoryCache) Clear(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.index = make(map[string]*list.Element)
	c.order = list.New()
	return nil
}

// Len returns the current number of cached pairs.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.order.Len()
}
