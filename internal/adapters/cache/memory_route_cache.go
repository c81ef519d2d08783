package cache

import (
	"container/list"
	"context"
	"route-planning-service/internal/ports"
	"sync"
)

// MemoryRouteCache is a bounded in-process cache for route resolutions.
// When full, the entry written longest ago is evicted. It is safe for
// concurrent use.
type MemoryRouteCache struct {
	mu       sync.Mutex
	capacity int
	order    *list.List
	entries  map[string]*list.Element
}

type memoryEntry struct {
	key   string
	value ports.CachedResolution
}

func NewMemoryRouteCache(capacity int) *MemoryRouteCache {
	if capacity < 1 {
		capacity = 1
	}
	return &MemoryRouteCache{
		capacity: capacity,
		order:    list.New(),
		entries:  make(map[string]*list.Element, capacity),
	}
}

func (c *MemoryRouteCache) Get(_ context.Context, key string) (ports.CachedResolution, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.entries[key]
	if !ok {
		return ports.CachedResolution{}, false, nil
	}
	return el.Value.(*memoryEntry).value, true, nil
}

func (c *MemoryRouteCache) Put(_ context.Context, key string, value ports.CachedResolution) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.entries[key]; ok {
		el.Value.(*memoryEntry).value = value
		c.order.MoveToBack(el)
		return nil
	}

	c.entries[key] = c.order.PushBack(&memoryEntry{key: key, value: value})

	for c.order.Len() > c.capacity {
		oldest := c.order.Front()
		c.order.Remove(oldest)
		delete(c.entries, oldest.Value.(*memoryEntry).key)
	}
	return nil
}

func (c *MemoryRouteCache) Clear(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.order.Init()
	c.entries = make(map[string]*list.Element, c.capacity)
	return nil
}

// Len reports the number of cached entries.
func (c *MemoryRouteCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}
