package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/rl1809/bookstore/internal/core/domain"
	"github.com/rl1809/bookstore/internal/metrics"
	"github.com/rl1809/bookstore/internal/port"
)

// CatalogService implements the catalog's operations, orchestrating the
// ledger and the coherence controller. Reads go through the controller's
// policies; the purchase mutation hits the ledger directly and then
// invalidates.
type CatalogService struct {
	ledger    port.LedgerRepository
	coherence *CoherenceController
	logger    *zap.Logger
}

func NewCatalogService(ledger port.LedgerRepository, coherence *CoherenceController, logger *zap.Logger) *CatalogService {
	return &CatalogService{
		ledger:    ledger,
		coherence: coherence,
		logger:    logger,
	}
}

// Purchase buys one unit of an item: lookup, validate, atomic decrement,
// invalidate, respond. The decrement is conditional in the ledger, so a
// concurrent purchase exhausting the stock between lookup and decrement
// surfaces as domain.ErrInsufficientStock rather than driving the quantity
// negative. Returns the post-purchase item on success.
func (s *CatalogService) Purchase(ctx context.Context, id, orderCost int64) (*domain.Item, error) {
	item, err := s.ledger.GetItem(ctx, id)
	if err != nil {
		metrics.Purchases.WithLabelValues("error").Inc()
		return nil, err
	}
	if item == nil {
		metrics.Purchases.WithLabelValues("not_found").Inc()
		return nil, domain.ErrNotFound
	}

	if orderCost < item.UnitCost {
		metrics.Purchases.WithLabelValues("insufficient_funds").Inc()
		return nil, domain.ErrInsufficientFunds
	}
	if item.Quantity <= 0 {
		metrics.Purchases.WithLabelValues("insufficient_stock").Inc()
		return nil, domain.ErrInsufficientStock
	}

	updated, err := s.ledger.DecrementQuantity(ctx, id, 1)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInsufficientStock):
			metrics.Purchases.WithLabelValues("insufficient_stock").Inc()
		case errors.Is(err, domain.ErrNotFound):
			metrics.Purchases.WithLabelValues("not_found").Inc()
		default:
			metrics.Purchases.WithLabelValues("error").Inc()
		}
		return nil, err
	}

	// Invalidation runs after the decrement has committed and before the
	// response is produced, so a completed purchase is never followed by a
	// read of the pre-purchase value.
	s.coherence.Invalidate(ctx, id, updated.Topic)

	metrics.Purchases.WithLabelValues("success").Inc()
	s.logger.Info("purchase completed",
		zap.Int64("id", id),
		zap.String("title", updated.Title),
		zap.Int64("quantity", updated.Quantity),
	)

	return updated, nil
}

// GetInfo returns one item via the versioned read-through policy.
func (s *CatalogService) GetInfo(ctx context.Context, id int64) (*domain.Item, error) {
	return s.coherence.ReadItem(ctx, id)
}

// SearchByTopic returns every item under a topic via plain cache-aside.
// An empty list is a valid result, not an error.
func (s *CatalogService) SearchByTopic(ctx context.Context, topic string) ([]domain.Item, error) {
	return s.coherence.ReadTopic(ctx, strings.TrimSpace(topic))
}

// UpdateQuantity is the legacy administrative set. It writes the ledger
// directly and does NOT invalidate the cache: topic searches may serve stale
// results until the next purchase on that topic, and item reads self-heal on
// the next GetInfo. Kept for the legacy PUT /update path only.
func (s *CatalogService) UpdateQuantity(ctx context.Context, id, quantity int64) (*domain.Item, error) {
	item, err := s.ledger.SetQuantity(ctx, id, quantity)
	if err != nil {
		return nil, err
	}

	s.logger.Warn("legacy quantity update bypassed cache invalidation",
		zap.Int64("id", id),
		zap.Int64("quantity", quantity),
	)

	return item, nil
}
