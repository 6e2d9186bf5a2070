package port

import (
	"context"

	"github.com/rl1809/bookstore/internal/core/domain"
)

// CacheRepository is the network key-value store holding item and topic
// snapshots. It provides no coherence guarantees of its own; the coherence
// controller enforces them.
type CacheRepository interface {
	// GetItem returns the cached snapshot for id, or (nil, nil) on miss.
	// A corrupt entry is an error, never a zero-value item.
	GetItem(ctx context.Context, id int64) (*domain.Item, error)

	// SetItem stores an item snapshot under its id key.
	SetItem(ctx context.Context, item domain.Item) error

	// GetTopic returns the cached item list for topic and whether it was
	// present. An empty cached list is a valid hit.
	GetTopic(ctx context.Context, topic string) ([]domain.Item, bool, error)

	// SetTopic stores the item list under the topic key.
	SetTopic(ctx context.Context, topic string, items []domain.Item) error

	// DeleteItem removes the id-keyed entry.
	DeleteItem(ctx context.Context, id int64) error

	// DeleteTopic removes the topic-keyed entry.
	DeleteTopic(ctx context.Context, topic string) error

	// Ping reports whether the cache service is reachable.
	Ping(ctx context.Context) error
}
