package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/SAP-F-2025/form-builder-service/internal/analytics"
)

// AnalyticsCache stores the analytics summary of each form.
//
// Entries are keyed by a per-form generation that Invalidate advances. A
// summary computed from storage must be stored under the generation read
// before computing it, so a write racing an invalidation lands on a key no
// reader will ask for again.
type AnalyticsCache interface {
	// Get returns the cached summary, or nil on a miss, together with the
	// generation to pass to Set.
	Get(ctx context.Context, formID string) (*analytics.Analytics, int64, error)
	Set(ctx context.Context, formID string, generation int64, summary analytics.Analytics) error
	Invalidate(ctx context.Context, formID string) error
}

type analyticsCache struct {
	cache CacheService
	ttl   time.Duration
}

func NewAnalyticsCache(cache CacheService, ttl time.Duration) AnalyticsCache {
	return &analyticsCache{
		cache: cache,
		ttl:   ttl,
	}
}

func generationKey(formID string) string {
	return fmt.Sprintf("analytics:form:%s:gen", formID)
}

func analyticsKey(formID string, generation int64) string {
	return fmt.Sprintf("analytics:form:%s:%d", formID, generation)
}

func (c *analyticsCache) generation(ctx context.Context, formID string) (int64, error) {
	var generation int64
	err := c.cache.Get(ctx, generationKey(formID), &generation)
	if errors.Is(err, ErrCacheMiss) {
		return 0, nil
	}
	return generation, err
}

func (c *analyticsCache) Get(ctx context.Context, formID string) (*analytics.Analytics, int64, error) {
	generation, err := c.generation(ctx, formID)
	if err != nil {
		return nil, 0, err
	}

	var summary analytics.Analytics
	err = c.cache.Get(ctx, analyticsKey(formID, generation), &summary)
	if errors.Is(err, ErrCacheMiss) {
		return nil, generation, nil
	}
	if err != nil {
		return nil, 0, err
	}
	return &summary, generation, nil
}

func (c *analyticsCache) Set(ctx context.Context, formID string, generation int64, summary analytics.Analytics) error {
	return c.cache.Set(ctx, analyticsKey(formID, generation), summary, c.ttl)
}

// Invalidate advances the generation, orphaning every entry stored so far.
// The entry of the previous generation is dropped right away; entries a
// racing reader writes later expire with their TTL.
func (c *analyticsCache) Invalidate(ctx context.Context, formID string) error {
	generation, err := c.cache.Incr(ctx, generationKey(formID))
	if err != nil {
		return err
	}
	return c.cache.Delete(ctx, analyticsKey(formID, generation-1))
}
