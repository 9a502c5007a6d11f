package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	appbilling "github.com/villahub/backend/internal/application/billing"
)

// RedisUnpaidTotalCache caches per-resident unpaid totals in Redis.
// Totals are stored as decimal strings under a resident-keyed prefix and
// expire after the configured TTL so a missed invalidation heals itself.
type RedisUnpaidTotalCache struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
}

// NewRedisUnpaidTotalCache creates a new Redis-backed unpaid total cache
func NewRedisUnpaidTotalCache(client *redis.Client, ttl time.Duration) *RedisUnpaidTotalCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &RedisUnpaidTotalCache{
		client:    client,
		keyPrefix: "unpaid-total:",
		ttl:       ttl,
	}
}

// Get returns the cached unpaid total for a resident. The second return
// value is false on a cache miss.
func (c *RedisUnpaidTotalCache) Get(ctx context.Context, residentID uuid.UUID) (decimal.Decimal, bool, error) {
	value, err := c.client.Get(ctx, c.keyPrefix+residentID.String()).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return decimal.Zero, false, nil
		}
		return decimal.Zero, false, fmt.Errorf("failed to read unpaid total: %w", err)
	}

	total, err := decimal.NewFromString(value)
	if err != nil {
		// A corrupt entry is treated as a miss so the caller recomputes it
		return decimal.Zero, false, nil
	}
	return total, true, nil
}

// Set stores the unpaid total for a resident with the configured TTL
func (c *RedisUnpaidTotalCache) Set(ctx context.Context, residentID uuid.UUID, total decimal.Decimal) error {
	if err := c.client.Set(ctx, c.keyPrefix+residentID.String(), total.String(), c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache unpaid total: %w", err)
	}
	return nil
}

// Invalidate drops the cached total for a resident
func (c *RedisUnpaidTotalCache) Invalidate(ctx context.Context, residentID uuid.UUID) error {
	if err := c.client.Del(ctx, c.keyPrefix+residentID.String()).Err(); err != nil {
		return fmt.Errorf("failed to invalidate unpaid total: %w", err)
	}
	return nil
}

// Ensure RedisUnpaidTotalCache implements UnpaidTotalCache
var _ appbilling.UnpaidTotalCache = (*RedisUnpaidTotalCache)(nil)
