package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Scope labels: finished seasons versus everything else.
const (
	scopeFinished = "finished"
	scopeCurrent  = "current"
)

var (
	cacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "f1_cache_hits_total",
			Help: "Response cache hits by scope (finished season or current)",
		},
		[]string{"scope"},
	)

	cacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "f1_cache_misses_total",
			Help: "Response cache misses (absent or expired) by scope",
		},
		[]string{"scope"},
	)

	cacheBytes = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "f1_cache_written_bytes_total",
			Help: "Bytes written to the response cache by this process",
		},
	)

	cacheErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "f1_cache_errors_total",
			Help: "Cache operation errors",
		},
		[]string{"operation"}, // get, set, delete
	)
)
