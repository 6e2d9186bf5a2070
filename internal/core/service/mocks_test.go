package service

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/rl1809/bookstore/internal/core/domain"
)

var errUnavailable = errors.New("service unavailable")

// Mock LedgerRepository. Decrement is conditional under the mutex, matching
// the atomicity the real adapter gets from its conditional UPDATE.
type mockLedger struct {
	mu         sync.Mutex
	items      map[int64]domain.Item
	failing    bool
	getCalls   int
	topicCalls int
}

func newMockLedger(items ...domain.Item) *mockLedger {
	m := &mockLedger{items: make(map[int64]domain.Item)}
	for _, it := range items {
		m.items[it.ID] = it
	}
	return m
}

func (m *mockLedger) GetItem(ctx context.Context, id int64) (*domain.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.getCalls++
	if m.failing {
		return nil, errUnavailable
	}
	it, ok := m.items[id]
	if !ok {
		return nil, nil
	}
	cp := it
	return &cp, nil
}

func (m *mockLedger) GetItemsByTopic(ctx context.Context, topic string) ([]domain.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.topicCalls++
	if m.failing {
		return nil, errUnavailable
	}
	items := make([]domain.Item, 0)
	for _, it := range m.items {
		if it.Topic == topic {
			items = append(items, it)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items, nil
}

func (m *mockLedger) DecrementQuantity(ctx context.Context, id, amount int64) (*domain.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failing {
		return nil, errUnavailable
	}
	it, ok := m.items[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if it.Quantity < amount {
		return nil, domain.ErrInsufficientStock
	}
	it.Quantity -= amount
	m.items[id] = it
	cp := it
	return &cp, nil
}

func (m *mockLedger) SetQuantity(ctx context.Context, id, quantity int64) (*domain.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failing {
		return nil, errUnavailable
	}
	it, ok := m.items[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	it.Quantity = quantity
	m.items[id] = it
	cp := it
	return &cp, nil
}

func (m *mockLedger) quantity(id int64) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.items[id].Quantity
}

// Mock CacheRepository with a kill switch to simulate a cache outage.
type mockCache struct {
	mu      sync.Mutex
	items   map[int64]domain.Item
	topics  map[string][]domain.Item
	failing bool
	calls   int
}

func newMockCache() *mockCache {
	return &mockCache{
		items:  make(map[int64]domain.Item),
		topics: make(map[string][]domain.Item),
	}
}

func (m *mockCache) GetItem(ctx context.Context, id int64) (*domain.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.failing {
		return nil, errUnavailable
	}
	it, ok := m.items[id]
	if !ok {
		return nil, nil
	}
	cp := it
	return &cp, nil
}

func (m *mockCache) SetItem(ctx context.Context, item domain.Item) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.failing {
		return errUnavailable
	}
	m.items[item.ID] = item
	return nil
}

func (m *mockCache) GetTopic(ctx context.Context, topic string) ([]domain.Item, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.failing {
		return nil, false, errUnavailable
	}
	items, ok := m.topics[topic]
	if !ok {
		return nil, false, nil
	}
	return append([]domain.Item(nil), items...), true, nil
}

func (m *mockCache) SetTopic(ctx context.Context, topic string, items []domain.Item) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.failing {
		return errUnavailable
	}
	m.topics[topic] = append([]domain.Item(nil), items...)
	return nil
}

func (m *mockCache) DeleteItem(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.failing {
		return errUnavailable
	}
	delete(m.items, id)
	return nil
}

func (m *mockCache) DeleteTopic(ctx context.Context, topic string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.failing {
		return errUnavailable
	}
	delete(m.topics, topic)
	return nil
}

func (m *mockCache) Ping(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failing {
		return errUnavailable
	}
	return nil
}

func (m *mockCache) hasItem(id int64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.items[id]
	return ok
}

func (m *mockCache) hasTopic(topic string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.topics[topic]
	return ok
}

func (m *mockCache) setFailing(failing bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failing = failing
}

func (m *mockCache) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}
