package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CacheHits counts served cache hits by key type ("item", "topic").
	CacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_cache_hits_total",
		Help: "Cache hits served, by key type.",
	}, []string{"key_type"})

	// CacheMisses counts cache misses by key type. Stale or corrupt id
	// entries count as misses since they are refetched from the ledger.
	CacheMisses = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_cache_misses_total",
		Help: "Cache misses, by key type.",
	}, []string{"key_type"})

	// CacheFaults counts cache service failures absorbed by the coherence
	// controller (the request proceeded against the ledger).
	CacheFaults = promauto.NewCounter(prometheus.CounterOpts{
		Name: "catalog_cache_faults_total",
		Help: "Cache service failures absorbed without failing the request.",
	})

	// Invalidations counts write-invalidate deletions after purchases.
	Invalidations = promauto.NewCounter(prometheus.CounterOpts{
		Name: "catalog_cache_invalidations_total",
		Help: "Cache entry pairs invalidated after a purchase.",
	})

	// Purchases counts purchase outcomes ("success", "not_found",
	// "insufficient_funds", "insufficient_stock", "error").
	Purchases = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_purchases_total",
		Help: "Purchase requests, by outcome.",
	}, []string{"outcome"})
)
