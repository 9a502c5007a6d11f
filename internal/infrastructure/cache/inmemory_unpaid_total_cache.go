package cache

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	appbilling "github.com/villahub/backend/internal/application/billing"
)

type unpaidTotalEntry struct {
	total     decimal.Decimal
	expiresAt time.Time
}

// InMemoryUnpaidTotalCache caches per-resident unpaid totals in process
// memory. Suitable for single-instance deployments and testing.
type InMemoryUnpaidTotalCache struct {
	mu      sync.RWMutex
	entries map[uuid.UUID]unpaidTotalEntry
	ttl     time.Duration
}

// NewInMemoryUnpaidTotalCache creates a new in-memory unpaid total cache
func NewInMemoryUnpaidTotalCache(ttl time.Duration) *InMemoryUnpaidTotalCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &InMemoryUnpaidTotalCache{
		entries: make(map[uuid.UUID]unpaidTotalEntry),
		ttl:     ttl,
	}
}

// Get returns the cached unpaid total for a resident. The second return
// value is false on a cache miss.
func (c *InMemoryUnpaidTotalCache) Get(ctx context.Context, residentID uuid.UUID) (decimal.Decimal, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, exists := c.entries[residentID]
	if !exists || time.Now().After(entry.expiresAt) {
		return decimal.Zero, false, nil
	}
	return entry.total, true, nil
}

// Set stores the unpaid total for a resident with the configured TTL
func (c *InMemoryUnpaidTotalCache) Set(ctx context.Context, residentID uuid.UUID, total decimal.Decimal) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[residentID] = unpaidTotalEntry{
		total:     total,
		expiresAt: time.Now().Add(c.ttl),
	}
	return nil
}

// Invalidate drops the cached total for a resident
func (c *InMemoryUnpaidTotalCache) Invalidate(ctx context.Context, residentID uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, residentID)
	return nil
}

// Ensure InMemoryUnpaidTotalCache implements UnpaidTotalCache
var _ appbilling.UnpaidTotalCache = (*InMemoryUnpaidTotalCache)(nil)
