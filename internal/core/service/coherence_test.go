package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/rl1809/bookstore/internal/core/domain"
)

func newTestController(ledger *mockLedger, cache *mockCache) *CoherenceController {
	return NewCoherenceController(cache, ledger, zap.NewNop())
}

func TestReadItem_MissPopulates(t *testing.T) {
	ledger := newMockLedger(dune(3))
	cache := newMockCache()
	c := newTestController(ledger, cache)

	item, err := c.ReadItem(context.Background(), 1)
	if err != nil {
		t.Fatalf("ReadItem failed: %v", err)
	}
	if item.Quantity != 3 {
		t.Errorf("expected quantity 3, got %d", item.Quantity)
	}
	if !cache.hasItem(1) {
		t.Error("expected cache populated on miss")
	}
}

func TestReadItem_CoherentHitServedFromCache(t *testing.T) {
	ledger := newMockLedger(dune(3))
	cache := newMockCache()
	c := newTestController(ledger, cache)

	// Seed a cached snapshot whose quantity matches the ledger. The marker
	// title proves the cached copy, not the ledger row, is served.
	cached := dune(3)
	cached.Title = "cached-copy"
	cache.SetItem(context.Background(), cached)

	item, err := c.ReadItem(context.Background(), 1)
	if err != nil {
		t.Fatalf("ReadItem failed: %v", err)
	}
	if item.Title != "cached-copy" {
		t.Errorf("expected cached snapshot served, got %+v", item)
	}
}

func TestReadItem_StaleEntryRepaired(t *testing.T) {
	ledger := newMockLedger(dune(2))
	cache := newMockCache()
	c := newTestController(ledger, cache)

	// Cached quantity disagrees with the ledger.
	cache.SetItem(context.Background(), dune(5))

	item, err := c.ReadItem(context.Background(), 1)
	if err != nil {
		t.Fatalf("ReadItem failed: %v", err)
	}
	if item.Quantity != 2 {
		t.Errorf("stale quantity served: got %d, want 2", item.Quantity)
	}

	// The cache now holds the repaired snapshot.
	repaired, _ := cache.GetItem(context.Background(), 1)
	if repaired == nil || repaired.Quantity != 2 {
		t.Errorf("cache not repaired: %+v", repaired)
	}
}

func TestReadItem_NotFound(t *testing.T) {
	cache := newMockCache()
	c := newTestController(newMockLedger(), cache)

	_, err := c.ReadItem(context.Background(), 7)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got: %v", err)
	}
	if cache.hasItem(7) {
		t.Error("cache entry created for unknown id")
	}
}

func TestReadItem_CacheFaultFallsBackToLedger(t *testing.T) {
	ledger := newMockLedger(dune(3))
	cache := newMockCache()
	cache.setFailing(true)
	c := newTestController(ledger, cache)

	item, err := c.ReadItem(context.Background(), 1)
	if err != nil {
		t.Fatalf("cache fault surfaced to caller: %v", err)
	}
	if item.Quantity != 3 {
		t.Errorf("expected ledger value, got %+v", item)
	}
}

func TestReadTopic_MissThenHit(t *testing.T) {
	ledger := newMockLedger(dune(3))
	cache := newMockCache()
	c := newTestController(ledger, cache)

	ctx := context.Background()
	items, err := c.ReadTopic(ctx, "scifi")
	if err != nil {
		t.Fatalf("ReadTopic failed: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}
	if !cache.hasTopic("scifi") {
		t.Error("topic entry not populated on miss")
	}

	// Second read is a hit and must not touch the ledger.
	if _, err := c.ReadTopic(ctx, "scifi"); err != nil {
		t.Fatalf("ReadTopic failed: %v", err)
	}
	ledger.mu.Lock()
	topicCalls := ledger.topicCalls
	ledger.mu.Unlock()
	if topicCalls != 1 {
		t.Errorf("expected 1 ledger read, got %d", topicCalls)
	}
}

func TestReadTopic_CachedEmptyListIsAHit(t *testing.T) {
	ledger := newMockLedger()
	cache := newMockCache()
	c := newTestController(ledger, cache)

	ctx := context.Background()
	if _, err := c.ReadTopic(ctx, "nothing"); err != nil {
		t.Fatalf("ReadTopic failed: %v", err)
	}
	if _, err := c.ReadTopic(ctx, "nothing"); err != nil {
		t.Fatalf("ReadTopic failed: %v", err)
	}

	ledger.mu.Lock()
	topicCalls := ledger.topicCalls
	ledger.mu.Unlock()
	if topicCalls != 1 {
		t.Errorf("empty list not cached: %d ledger reads", topicCalls)
	}
}

func TestReadTopic_CacheFaultFallsBackToLedger(t *testing.T) {
	ledger := newMockLedger(dune(3))
	cache := newMockCache()
	cache.setFailing(true)
	c := newTestController(ledger, cache)

	items, err := c.ReadTopic(context.Background(), "scifi")
	if err != nil {
		t.Fatalf("cache fault surfaced to caller: %v", err)
	}
	if len(items) != 1 {
		t.Errorf("expected ledger result, got %+v", items)
	}
}

func TestReadTopic_LedgerErrorSurfaces(t *testing.T) {
	ledger := newMockLedger()
	ledger.failing = true
	c := newTestController(ledger, newMockCache())

	if _, err := c.ReadTopic(context.Background(), "scifi"); err == nil {
		t.Fatal("expected ledger error to surface")
	}
}

func TestInvalidate_RemovesBothKeys(t *testing.T) {
	ledger := newMockLedger(dune(3))
	cache := newMockCache()
	c := newTestController(ledger, cache)

	ctx := context.Background()
	cache.SetItem(ctx, dune(3))
	cache.SetTopic(ctx, "scifi", []domain.Item{dune(3)})

	c.Invalidate(ctx, 1, "scifi")

	if cache.hasItem(1) {
		t.Error("id key not deleted")
	}
	if cache.hasTopic("scifi") {
		t.Error("topic key not deleted")
	}
}

func TestInvalidate_FaultAbsorbed(t *testing.T) {
	cache := newMockCache()
	cache.setFailing(true)
	c := newTestController(newMockLedger(dune(3)), cache)

	// Must not panic or propagate; the stale entries are handled by the
	// read policies.
	c.Invalidate(context.Background(), 1, "scifi")
}

func TestCacheBreaker_OpensAndShortCircuits(t *testing.T) {
	ledger := newMockLedger(dune(3))
	cache := newMockCache()
	cache.setFailing(true)
	c := newTestController(ledger, cache)

	ctx := context.Background()
	for i := 0; i < 10; i++ {
		if _, err := c.ReadItem(ctx, 1); err != nil {
			t.Fatalf("read %d failed during cache outage: %v", i, err)
		}
	}

	// Once the breaker opens, cache calls stop reaching the adapter.
	if calls := cache.callCount(); calls >= 20 {
		t.Errorf("breaker never opened: %d cache calls for 10 reads", calls)
	}

	// Service keeps answering from the ledger while the breaker is open.
	item, err := c.ReadItem(ctx, 1)
	if err != nil {
		t.Fatalf("read failed with open breaker: %v", err)
	}
	if item.Quantity != 3 {
		t.Errorf("expected ledger value, got %+v", item)
	}
}
