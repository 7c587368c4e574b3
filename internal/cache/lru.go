package cache

import (
	"container/list"
	"sync"
	"sync/atomic"

	"github.com/hupe1980/segstore/internal/resource"
)

// LRU implements BlockCache with least-recently-used eviction.
type LRU struct {
	mu        sync.Mutex
	capacity  int64
	size      int64
	items     map[Key]*list.Element
	evictList *list.List
	rc        *resource.Controller

	hits   atomic.Int64
	misses atomic.Int64
}

var _ BlockCache = (*LRU)(nil)

type entry struct {
	key   Key
	value []byte
}

// NewLRU creates a new LRU cache with the given capacity in bytes.
// If rc is provided, it will be used to track memory usage.
func NewLRU(capacity int64, rc *resource.Controller) *LRU {
	return &LRU{
		capacity:  capacity,
		items:     make(map[Key]*list.Element),
		evictList: list.New(),
		rc:        rc,
	}
}

// Get returns a cached block.
func (c *LRU) Get(key Key) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ent, ok := c.items[key]; ok {
		c.hits.Add(1)
		c.evictList.MoveToFront(ent)
		return ent.Value.(*entry).value, true
	}
	c.misses.Add(1)
	return nil, false
}

// Set caches a block. Blocks larger than the capacity are ignored, and so is
// any block the memory budget cannot admit.
func (c *LRU) Set(key Key, b []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	itemSize := int64(len(b))
	if itemSize > c.capacity {
		return
	}

	if ent, ok := c.items[key]; ok {
		// Blocks are immutable; the cached copy is as good as the new one.
		c.evictList.MoveToFront(ent)
		return
	}

	// Evict locally first so released memory is available to the budget.
	for c.size+itemSize > c.capacity {
		ent := c.evictList.Back()
		if ent == nil {
			break
		}
		c.removeElement(ent)
	}

	if err := c.rc.AcquireMemory(itemSize); err != nil {
		return
	}

	element := c.evictList.PushFront(&entry{key, b})
	c.items[key] = element
	c.size += itemSize
}

// Invalidate removes entries matching the predicate.
func (c *LRU) Invalidate(predicate func(key Key) bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var toRemove []*list.Element
	for key, element := range c.items {
		if predicate(key) {
			toRemove = append(toRemove, element)
		}
	}
	for _, e := range toRemove {
		c.removeElement(e)
	}
}

// Stats returns hit and miss counts.
func (c *LRU) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

// Size returns the current size of the cache in bytes.
func (c *LRU) Size() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.size
}

// Len returns the number of cached blocks.
func (c *LRU) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

func (c *LRU) removeElement(e *list.Element) {
	c.evictList.Remove(e)
	kv := e.Value.(*entry)
	delete(c.items, kv.key)
	itemSize := int64(len(kv.value))
	c.size -= itemSize
	c.rc.ReleaseMemory(itemSize)
}
