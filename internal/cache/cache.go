// Package cache keeps reconstructed scope orders in Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/thenoetrevino/projecthub/internal/models"
)

// OrderCache is a read-through cache of ordered items per scope. Writers
// evict the scopes they touched after their transaction commits. Redis
// errors never surface: a failed read is a miss and a failed write is dropped.
type OrderCache struct {
	redis *redis.Client
	ttl   time.Duration
}

// New creates a cache. A nil client or a zero ttl disables storing.
func New(client *redis.Client, ttl time.Duration) *OrderCache {
	if ttl < 0 {
		ttl = 0
	}
	return &OrderCache{redis: client, ttl: ttl}
}

// Load returns the cached order of scope.
func (c *OrderCache) Load(ctx context.Context, scope models.Scope) ([]*models.BacklogItem, bool) {
	if c == nil || c.redis == nil {
		return nil, false
	}
	key := orderCacheKey(scope)
	data, err := c.redis.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			// fall back to the database without failing
			_ = c.redis.Del(ctx, key).Err()
		}
		return nil, false
	}
	var items []*models.BacklogItem
	if err := json.Unmarshal(data, &items); err != nil {
		_ = c.redis.Del(ctx, key).Err()
		return nil, false
	}
	return items, true
}

// Store caches the order of scope.
func (c *OrderCache) Store(ctx context.Context, scope models.Scope, items []*models.BacklogItem) {
	if c == nil || c.redis == nil || c.ttl == 0 {
		return
	}
	data, err := json.Marshal(items)
	if err != nil {
		return
	}
	_ = c.redis.Set(ctx, orderCacheKey(scope), data, c.ttl).Err()
}

// Evict drops the cached order of every given scope.
func (c *OrderCache) Evict(ctx context.Context, scopes ...models.Scope) {
	if c == nil || c.redis == nil || len(scopes) == 0 {
		return
	}
	keys := make([]string, len(scopes))
	for i, s := range scopes {
		keys[i] = orderCacheKey(s)
	}
	_, _ = c.redis.Del(ctx, keys...).Result()
}

func orderCacheKey(scope models.Scope) string {
	return "projecthub:order:" + scope.Key()
}
