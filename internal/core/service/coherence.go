package service

import (
	"context"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/rl1809/bookstore/internal/core/domain"
	"github.com/rl1809/bookstore/internal/metrics"
	"github.com/rl1809/bookstore/internal/port"
)

// CoherenceController enforces cache coherence between the ledger and the
// cache service. It exposes three policies:
//
//   - ReadTopic: plain cache-aside, no staleness check; correct until the
//     next purchase invalidates the topic key.
//   - ReadItem: versioned read-through; a cached item is served only when its
//     quantity matches the ledger's current quantity, so no read can return
//     a quantity that disagrees with the ledger.
//   - Invalidate: write-invalidate after a mutation, deleting both the id
//     key and the topic key.
//
// Cache faults never fail a request. Every cache call runs through a circuit
// breaker; when the cache is down the controller serves straight from the
// ledger, and the breaker keeps a dead cache from taxing every request.
type CoherenceController struct {
	cache  port.CacheRepository
	ledger port.LedgerRepository
	cb     *gobreaker.CircuitBreaker[any]
	group  singleflight.Group
	logger *zap.Logger
}

func NewCoherenceController(cache port.CacheRepository, ledger port.LedgerRepository, logger *zap.Logger) *CoherenceController {
	c := &CoherenceController{
		cache:  cache,
		ledger: ledger,
		logger: logger,
	}

	c.cb = gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:    "cache",
		Timeout: 10 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("cache breaker state change",
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})

	return c
}

// cacheOp runs one cache call through the breaker, logging and absorbing any
// failure. Callers fall back to the ledger on a non-nil error.
func (c *CoherenceController) cacheOp(op string, fn func() (any, error)) (any, error) {
	v, err := c.cb.Execute(fn)
	if err != nil {
		metrics.CacheFaults.Inc()
		c.logger.Warn("cache operation failed, proceeding without cache",
			zap.String("op", op), zap.Error(err))
	}
	return v, err
}

// ReadItem implements the versioned read-through policy. The cached snapshot's
// quantity doubles as its version tag: it is compared against the ledger's
// current quantity on every hit, so a stale entry is deleted and replaced
// instead of served. Returns domain.ErrNotFound for unknown ids; nothing is
// cached for them.
func (c *CoherenceController) ReadItem(ctx context.Context, id int64) (*domain.Item, error) {
	var cached *domain.Item
	if v, err := c.cacheOp("get item", func() (any, error) {
		return c.cache.GetItem(ctx, id)
	}); err == nil {
		cached, _ = v.(*domain.Item)
	}

	current, err := c.ledger.GetItem(ctx, id)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, domain.ErrNotFound
	}

	if cached != nil {
		if cached.Quantity == current.Quantity {
			metrics.CacheHits.WithLabelValues("item").Inc()
			return cached, nil
		}
		c.cacheOp("delete stale item", func() (any, error) {
			return nil, c.cache.DeleteItem(ctx, id)
		})
	}

	metrics.CacheMisses.WithLabelValues("item").Inc()
	c.cacheOp("set item", func() (any, error) {
		return nil, c.cache.SetItem(ctx, *current)
	})

	return current, nil
}

type topicEntry struct {
	items []domain.Item
	ok    bool
}

// ReadTopic implements plain cache-aside. A hit is served verbatim; a miss
// loads from the ledger and populates the topic key. Concurrent misses for
// the same topic share one ledger load.
func (c *CoherenceController) ReadTopic(ctx context.Context, topic string) ([]domain.Item, error) {
	if v, err := c.cacheOp("get topic", func() (any, error) {
		items, ok, err := c.cache.GetTopic(ctx, topic)
		return topicEntry{items: items, ok: ok}, err
	}); err == nil {
		if entry, _ := v.(topicEntry); entry.ok {
			metrics.CacheHits.WithLabelValues("topic").Inc()
			return entry.items, nil
		}
	}

	metrics.CacheMisses.WithLabelValues("topic").Inc()

	v, err, _ := c.group.Do("topic:"+topic, func() (any, error) {
		items, err := c.ledger.GetItemsByTopic(ctx, topic)
		if err != nil {
			return nil, err
		}
		c.cacheOp("set topic", func() (any, error) {
			return nil, c.cache.SetTopic(ctx, topic, items)
		})
		return items, nil
	})
	if err != nil {
		return nil, err
	}

	return v.([]domain.Item), nil
}

// Invalidate deletes the id-keyed and topic-keyed entries for a mutated item.
// Best-effort: a failed delete is absorbed, since ReadItem self-heals and the
// next purchase retries the topic key. Must be called after the mutation has
// committed and before the caller answers the client.
func (c *CoherenceController) Invalidate(ctx context.Context, id int64, topic string) {
	_, errItem := c.cacheOp("invalidate item", func() (any, error) {
		return nil, c.cache.DeleteItem(ctx, id)
	})
	_, errTopic := c.cacheOp("invalidate topic", func() (any, error) {
		return nil, c.cache.DeleteTopic(ctx, topic)
	})
	if errItem == nil && errTopic == nil {
		metrics.Invalidations.Inc()
	}
}
