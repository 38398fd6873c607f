package cache

import (
	"context"
	"sync"
	"time"

	"newsbot/internal/model"
)

type entry struct {
	item      model.NewsItem
	expiresAt time.Time
}

// MemoryCache is the in-process ItemCache: a map keyed by link behind a
// RWMutex. Expired entries are invisible to Get and Items even before
// PurgeExpired removes them.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]entry

	// now is swappable for expiry tests
	now func() time.Time
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		entries: make(map[string]entry),
		now:     time.Now,
	}
}

func (c *MemoryCache) Get(_ context.Context, link string) (model.NewsItem, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[link]

	if !ok || !c.now().Before(e.expiresAt) {
		return model.NewsItem{}, false, nil
	}

	return e.item, true, nil
}

func (c *MemoryCache) Put(_ context.Context, item model.NewsItem, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[item.Link] = entry{
		item:      item,
		expiresAt: c.now().Add(ttl),
	}

	return nil
}

func (c *MemoryCache) Items(_ context.Context) ([]model.NewsItem, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	now := c.now()

	var items []model.NewsItem

	for _, e := range c.entries {
		if !now.Before(e.expiresAt) {
			continue
		}

		items = append(items, e.item)
	}

	return items, nil
}

func (c *MemoryCache) PurgeExpired(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()

	for link, e := range c.entries {
		if !now.Before(e.expiresAt) {
			delete(c.entries, link)
		}
	}

	return nil
}
