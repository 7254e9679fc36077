package catalog

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"
)

// ByteCache is a TTL cache of raw values.
type ByteCache interface {
	GetBytes(ctx context.Context, key string) ([]byte, bool, error)
	SetBytes(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

const cacheKeyPrefix = "catalog:category:"

// Cached serves category listings from a ByteCache and falls through to
// the wrapped Catalog on a miss or a cache error.
type Cached struct {
	next   Catalog
	cache  ByteCache
	ttl    time.Duration
	logger *slog.Logger
}

// NewCached decorates next with cache.
func NewCached(next Catalog, cache ByteCache, ttl time.Duration, logger *slog.Logger) *Cached {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cached{next: next, cache: cache, ttl: ttl, logger: logger}
}

// MealsByCategory returns the cached listing or fetches and stores it.
func (c *Cached) MealsByCategory(ctx context.Context, category string) ([]Meal, error) {
	key := cacheKeyPrefix + category

	raw, ok, err := c.cache.GetBytes(ctx, key)
	if err != nil {
		c.logger.Warn("catalog cache read failed", slog.String("category", category), slog.String("error", err.Error()))
	}
	if ok {
		var meals []Meal
		if err := json.Unmarshal(raw, &meals); err == nil {
			return meals, nil
		}
		c.logger.Warn("catalog cache entry unreadable", slog.String("category", category))
	}

	meals, err := c.next.MealsByCategory(ctx, category)
	if err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(meals); err == nil {
		if err := c.cache.SetBytes(ctx, key, raw, c.ttl); err != nil {
			c.logger.Warn("catalog cache write failed", slog.String("category", category), slog.String("error", err.Error()))
		}
	}

	return meals, nil
}
