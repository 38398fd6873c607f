package cache

import (
	"context"
	"time"

	"newsbot/internal/model"
)

// ItemCache stores normalized items keyed by link, each with its own
// expiry. Get never returns an expired entry; Put upserts and resets the
// entry's TTL; PurgeExpired only reclaims space and is safe to run
// concurrently with reads and writes.
type ItemCache interface {
	Get(ctx context.Context, link string) (model.NewsItem, bool, error)
	Put(ctx context.Context, item model.NewsItem, ttl time.Duration) error
	Items(ctx context.Context) ([]model.NewsItem, error)
	PurgeExpired(ctx context.Context) error
}
