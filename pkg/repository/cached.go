package repository

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/m-mizutani/ctxlog"
	"github.com/secmon-lab/rapor/pkg/domain/interfaces"
	"github.com/secmon-lab/rapor/pkg/domain/model"
	"github.com/secmon-lab/rapor/pkg/domain/types"
)

const monthsCacheKey = "months"

// Cached wraps a Source with an expiring LRU cache. Errors are not cached.
type Cached struct {
	source interfaces.Source
	cache  *expirable.LRU[string, any]
}

// NewCached wraps source with a cache of size entries living for ttl.
// A non-positive ttl disables caching and returns source unchanged.
func NewCached(source interfaces.Source, size int, ttl time.Duration) interfaces.Source {
	if ttl <= 0 {
		return source
	}
	if size <= 0 {
		size = 128
	}

	return &Cached{
		source: source,
		cache:  expirable.NewLRU[string, any](size, nil, ttl),
	}
}

// ListMonths returns the cached month list or loads it
func (c *Cached) ListMonths(ctx context.Context) ([]types.Month, error) {
	if v, ok := c.cache.Get(monthsCacheKey); ok {
		return v.([]types.Month), nil
	}

	months, err := c.source.ListMonths(ctx)
	if err != nil {
		return nil, err
	}
	c.cache.Add(monthsCacheKey, months)
	return months, nil
}

// LoadCategory returns a cached category, falling back to a cached month
func (c *Cached) LoadCategory(ctx context.Context, month types.Month, category types.Category) (any, error) {
	key := "category:" + month.String() + "/" + category.String()
	if v, ok := c.cache.Get(key); ok {
		return v, nil
	}
	if v, ok := c.cache.Get(monthKey(month)); ok {
		if data, found := v.(*model.MonthReport).Get(category); found {
			return data, nil
		}
	}

	data, err := c.source.LoadCategory(ctx, month, category)
	if err != nil {
		return nil, err
	}
	c.cache.Add(key, data)
	return data, nil
}

// LoadMonth returns the cached month report or loads it
func (c *Cached) LoadMonth(ctx context.Context, month types.Month) (*model.MonthReport, error) {
	if v, ok := c.cache.Get(monthKey(month)); ok {
		ctxlog.From(ctx).Debug("Month served from cache", "month", month)
		return v.(*model.MonthReport), nil
	}

	report, err := c.source.LoadMonth(ctx, month)
	if err != nil {
		return nil, err
	}
	c.cache.Add(monthKey(month), report)
	return report, nil
}

func monthKey(month types.Month) string {
	return "month:" + month.String()
}

var _ interfaces.Source = (*Cached)(nil)
