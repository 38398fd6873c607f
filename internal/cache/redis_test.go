package cache

import (
	"context"
	"testing"

	"github.com/redis/go-redis/v9"

	"newsbot/internal/model"
)

// A non-positive ttl means "already expired", matching the memory cache.
// Redis itself would keep a key set with expiration 0 forever, so Put must
// not write at all; with nothing reachable at the address below, a write
// attempt would surface as a connection error.
func TestRedisCachePutZeroTTLStoresNothing(t *testing.T) {
	c := NewRedisCache(redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"}))

	item := model.NewsItem{Link: "https://x/a", Title: "a"}

	if err := c.Put(context.Background(), item, 0); err != nil {
		t.Errorf("Put with zero ttl = %v, want nil without touching redis", err)
	}

	if err := c.Put(context.Background(), item, -1); err != nil {
		t.Errorf("Put with negative ttl = %v, want nil without touching redis", err)
	}
}
