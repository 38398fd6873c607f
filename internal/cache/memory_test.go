package cache

import (
	"context"
	"sync"
	"testing"
	"time"

	"newsbot/internal/model"
)

func TestMemoryCacheRoundTrip(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()

	item := model.NewsItem{Link: "https://x/a", Title: "a"}

	if err := c.Put(ctx, item, time.Minute); err != nil {
		t.Fatal(err)
	}

	got, ok, err := c.Get(ctx, "https://x/a")

	if err != nil || !ok {
		t.Fatalf("Get = ok=%v err=%v, want hit", ok, err)
	}

	if got.Title != "a" {
		t.Errorf("Title = %q, want %q", got.Title, "a")
	}
}

func TestMemoryCacheExpiry(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()

	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	if err := c.Put(ctx, model.NewsItem{Link: "https://x/a"}, 5*time.Minute); err != nil {
		t.Fatal(err)
	}

	now = now.Add(5 * time.Minute)

	if _, ok, _ := c.Get(ctx, "https://x/a"); ok {
		t.Error("Get returned an entry at exactly ttl, want absent")
	}

	items, err := c.Items(ctx)

	if err != nil {
		t.Fatal(err)
	}

	if len(items) != 0 {
		t.Errorf("Items returned %d expired entries", len(items))
	}
}

func TestMemoryCachePutResetsExpiry(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()

	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	c.Put(ctx, model.NewsItem{Link: "https://x/a", Title: "old"}, 5*time.Minute)

	now = now.Add(4 * time.Minute)
	c.Put(ctx, model.NewsItem{Link: "https://x/a", Title: "new"}, 5*time.Minute)

	now = now.Add(4 * time.Minute)

	got, ok, _ := c.Get(ctx, "https://x/a")

	if !ok {
		t.Fatal("entry expired although the second Put reset its ttl")
	}

	if got.Title != "new" {
		t.Errorf("Title = %q, want upserted copy", got.Title)
	}
}

func TestMemoryCachePurgeExpired(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()

	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	c.Put(ctx, model.NewsItem{Link: "https://x/old"}, time.Minute)
	c.Put(ctx, model.NewsItem{Link: "https://x/new"}, time.Hour)

	now = now.Add(10 * time.Minute)

	if err := c.PurgeExpired(ctx); err != nil {
		t.Fatal(err)
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	if _, ok := c.entries["https://x/old"]; ok {
		t.Error("expired entry survived PurgeExpired")
	}

	if _, ok := c.entries["https://x/new"]; !ok {
		t.Error("live entry removed by PurgeExpired")
	}
}

func TestMemoryCacheConcurrentAccess(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()

	var wg sync.WaitGroup

	for i := 0; i < 8; i++ {
		wg.Add(1)

		go func(n int) {
			defer wg.Done()

			link := string(rune('a' + n))

			for j := 0; j < 100; j++ {
				c.Put(ctx, model.NewsItem{Link: link}, time.Minute)
				c.Get(ctx, link)
				c.PurgeExpired(ctx)
			}
		}(i)
	}

	wg.Wait()
}
