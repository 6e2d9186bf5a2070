package port

import (
	"context"

	"github.com/rl1809/bookstore/internal/core/domain"
)

// LedgerRepository is the persisted source of truth for item stock and price.
type LedgerRepository interface {
	// GetItem retrieves an item by id. Returns (nil, nil) when no such id exists.
	GetItem(ctx context.Context, id int64) (*domain.Item, error)

	// GetItemsByTopic retrieves every item with the given topic, possibly none.
	GetItemsByTopic(ctx context.Context, topic string) ([]domain.Item, error)

	// DecrementQuantity atomically decreases quantity by amount, conditioned on
	// quantity >= amount at the instant of update. Returns the updated item,
	// domain.ErrNotFound, or domain.ErrInsufficientStock.
	DecrementQuantity(ctx context.Context, id, amount int64) (*domain.Item, error)

	// SetQuantity unconditionally sets quantity. Legacy administrative path;
	// callers bypass cache invalidation.
	SetQuantity(ctx context.Context, id, quantity int64) (*domain.Item, error)
}
