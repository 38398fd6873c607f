package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"newsbot/internal/model"
)

const itemIndexKey = "news:items"

// RedisCache backs the ItemCache contract with a Redis instance.
// Per-entry expiry is delegated to Redis TTLs; an index set tracks the
// live keys so Items can enumerate them.
type RedisCache struct {
	rdb *redis.Client
}

func NewRedisCache(rdb *redis.Client) *RedisCache {
	return &RedisCache{rdb: rdb}
}

func itemKey(link string) string {
	return fmt.Sprintf("news:item:%s", link)
}

func (c *RedisCache) Get(ctx context.Context, link string) (model.NewsItem, bool, error) {
	b, err := c.rdb.Get(ctx, itemKey(link)).Bytes()

	if errors.Is(err, redis.Nil) {
		return model.NewsItem{}, false, nil
	}

	if err != nil {
		return model.NewsItem{}, false, err
	}

	var item model.NewsItem

	if err := json.Unmarshal(b, &item); err != nil {
		return model.NewsItem{}, false, err
	}

	return item, true, nil
}

func (c *RedisCache) Put(ctx context.Context, item model.NewsItem, ttl time.Duration) error {
	// redis treats expiration 0 as "no expiry"; a non-positive ttl must mean
	// "already expired" here, same as the memory cache
	if ttl <= 0 {
		return nil
	}

	b, err := json.Marshal(item)

	if err != nil {
		return err
	}

	if err := c.rdb.Set(ctx, itemKey(item.Link), b, ttl).Err(); err != nil {
		return err
	}

	return c.rdb.SAdd(ctx, itemIndexKey, item.Link).Err()
}

func (c *RedisCache) Items(ctx context.Context) ([]model.NewsItem, error) {
	links, err := c.rdb.SMembers(ctx, itemIndexKey).Result()

	if err != nil {
		return nil, err
	}

	var items []model.NewsItem

	for _, link := range links {
		item, ok, err := c.Get(ctx, link)

		if err != nil {
			return nil, err
		}

		if !ok {
			continue
		}

		items = append(items, item)
	}

	return items, nil
}

// PurgeExpired prunes index members whose backing keys have already been
// expired by Redis.
func (c *RedisCache) PurgeExpired(ctx context.Context) error {
	links, err := c.rdb.SMembers(ctx, itemIndexKey).Result()

	if err != nil {
		return err
	}

	for _, link := range links {
		n, err := c.rdb.Exists(ctx, itemKey(link)).Result()

		if err != nil {
			return err
		}

		if n == 0 {
			if err := c.rdb.SRem(ctx, itemIndexKey, link).Err(); err != nil {
				return err
			}
		}
	}

	return nil
}
