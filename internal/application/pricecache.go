package application

import (
	"context"
	"sync"
	"time"

	"btcprice-service/internal/domain"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	DefaultPriceTTL = 10 * time.Second

	refreshKey = "price"
)

// PriceCache holds the last snapshot fetched from a PriceSource and serves it
// while it is younger than the TTL. Stale reads trigger one refresh that all
// concurrent callers share.
type PriceCache struct {
	source    PriceSource
	ttl       time.Duration
	clock     Clock
	publisher SnapshotPublisher
	log       *zap.Logger

	mu        sync.RWMutex
	snapshot  *domain.PriceSnapshot
	fetchedAt time.Time

	group singleflight.Group
}

type CacheOption func(*PriceCache)

func WithTTL(ttl time.Duration) CacheOption { return func(c *PriceCache) { c.ttl = ttl } }
func WithCacheClock(clk Clock) CacheOption  { return func(c *PriceCache) { c.clock = clk } }
func WithPublisher(p SnapshotPublisher) CacheOption {
	return func(c *PriceCache) { c.publisher = p }
}
func WithCacheLogger(l *zap.Logger) CacheOption { return func(c *PriceCache) { c.log = l } }

func NewPriceCache(source PriceSource, opts ...CacheOption) *PriceCache {
	c := &PriceCache{source: source}
	for _, opt := range opts {
		opt(c)
	}
	if c.ttl <= 0 {
		c.ttl = DefaultPriceTTL
	}
	if c.clock == nil {
		c.clock = realClock{}
	}
	if c.publisher == nil {
		c.publisher = NoopPublisher{}
	}
	if c.log == nil {
		c.log = zap.NewNop()
	}
	return c
}

// Get returns the cached snapshot when fresh, otherwise refreshes it from the source.
// A failed refresh leaves the stored snapshot untouched.
func (c *PriceCache) Get(ctx context.Context) (domain.PriceSnapshot, error) {
	if snap, ok := c.fresh(); ok {
		return snap, nil
	}
	// The shared refresh outlives any single caller; the HTTP client timeout bounds it.
	ch := c.group.DoChan(refreshKey, func() (any, error) {
		return c.refresh(context.WithoutCancel(ctx))
	})
	select {
	case <-ctx.Done():
		return domain.PriceSnapshot{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return domain.PriceSnapshot{}, res.Err
		}
		return res.Val.(domain.PriceSnapshot), nil
	}
}

// Peek returns the stored snapshot and its fetch time regardless of freshness.
func (c *PriceCache) Peek() (domain.PriceSnapshot, time.Time, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.snapshot == nil {
		return domain.PriceSnapshot{}, time.Time{}, false
	}
	return *c.snapshot, c.fetchedAt, true
}

func (c *PriceCache) TTL() time.Duration { return c.ttl }

func (c *PriceCache) fresh() (domain.PriceSnapshot, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.snapshot == nil || c.clock.Now().Sub(c.fetchedAt) >= c.ttl {
		return domain.PriceSnapshot{}, false
	}
	return *c.snapshot, true
}

func (c *PriceCache) refresh(ctx context.Context) (domain.PriceSnapshot, error) {
	// A refresh that finished just before this one started already did the work.
	if snap, ok := c.fresh(); ok {
		return snap, nil
	}
	start := c.clock.Now()
	snap, err := c.source.Fetch(ctx)
	if err != nil {
		c.log.Warn("price_refresh_failed", zap.Error(err))
		return domain.PriceSnapshot{}, err
	}

	now := c.clock.Now()
	c.mu.Lock()
	// fetchedAt never moves backwards.
	if c.snapshot == nil || !now.Before(c.fetchedAt) {
		stored := snap
		c.snapshot = &stored
		c.fetchedAt = now
	}
	c.mu.Unlock()

	c.log.Info("price_refreshed",
		zap.Float64("usd", snap.Prices.USD),
		zap.String("last_updated", snap.LastUpdated),
		zap.Duration("took", now.Sub(start)),
	)
	if err := c.publisher.Publish(ctx, snap); err != nil {
		c.log.Warn("price_publish_failed", zap.Error(err))
	}
	return snap, nil
}
