package imagecache

import (
	"context"
	"slices"
	"sync"
)

// MemoryCache — процессно-локальный кэш изображений.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[uint64][]byte
}

var _ Cache = (*MemoryCache)(nil)

// NewMemoryCache создаёт пустой in-memory кэш.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[uint64][]byte)}
}

func (c *MemoryCache) Put(ctx context.Context, id uint64, payload []byte) error {
	if len(payload) == 0 {
		return ErrEmptyImage
	}
	cp := make([]byte, len(payload))
	copy(cp, payload)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[id] = cp
	return nil
}

func (c *MemoryCache) Get(ctx context.Context, id uint64) ([]byte, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.entries[id]
	if !ok {
		return nil, false, nil
	}
	cp := make([]byte, len(v))
	copy(cp, v)
	return cp, true, nil
}

func (c *MemoryCache) IDs(ctx context.Context) ([]uint64, error) {
	c.mu.RLock()
	ids := make([]uint64, 0, len(c.entries))
	for id := range c.entries {
		ids = append(ids, id)
	}
	c.mu.RUnlock()
	slices.Sort(ids)
	return ids, nil
}

// Len возвращает число записей.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *MemoryCache) Close() error { return nil }
