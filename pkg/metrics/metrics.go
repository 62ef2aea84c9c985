// Package metrics exposes the Prometheus registry used by the pipeline.
// All metrics are defined in their respective packages (client, cache,
// ratelimit, pagination, season) and registered through promauto, so this
// package only documents them and serves them.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry is the registerer every promauto collector of the pipeline uses.
var Registry = prometheus.DefaultRegisterer

// Gatherer is the matching gatherer for Registry.
var Gatherer = prometheus.DefaultGatherer

// Handler serves every registered metric in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Gatherer, promhttp.HandlerOpts{})
}

// Metrics Documentation
//
// Request Metrics (pkg/client):
//   - f1_requests_total{endpoint, status} (Counter): Requests by endpoint and HTTP status ("cache" for hits)
//   - f1_request_duration_seconds{endpoint} (Histogram): Request duration by endpoint
//   - f1_errors_total{class} (Counter): Errors by class (client, server, rate_limit, network, decode)
//
// Retry Metrics (pkg/client):
//   - f1_retries_total{error_class} (Counter): Retry attempts by error class
//   - f1_retry_backoff_seconds{error_class} (Histogram): Backoff duration by error class
//   - f1_retry_exhausted_total{error_class} (Counter): Requests that exhausted max retries
//
// Cache Metrics (pkg/cache):
//   - f1_cache_hits_total{scope} (Counter): Response cache hits, finished season or current
//   - f1_cache_misses_total{scope} (Counter): Response cache misses
//   - f1_cache_written_bytes_total (Counter): Bytes written to the cache
//   - f1_cache_errors_total{operation} (Counter): Cache operation errors
//
// Rate Limit Metrics (pkg/ratelimit):
//   - f1_rate_limit_waits_total (Counter): Calls that passed an interval limiter
//   - f1_rate_limit_wait_seconds (Histogram): Time spent waiting on an interval limiter
//   - f1_rate_limited_responses_total (Counter): 429 responses received
//   - f1_rate_limit_backoff_seconds (Histogram): Back-off windows requested by 429 responses
//
// Ingestion Metrics (pkg/pagination, pkg/season):
//   - f1_pages_fetched_total{resource} (Counter): Pages fetched by resource
//   - f1_partial_fetches_total{resource} (Counter): Paginated fetches that ended early
//   - f1_years_processed_total{resource, outcome} (Counter): Seasons by outcome (ok, empty, failed, cancelled)
//
// Example Prometheus Queries:
//
//   # Cache Hit Rate for finished seasons
//   sum(rate(f1_cache_hits_total{scope="finished"}[5m])) /
//   (sum(rate(f1_cache_hits_total{scope="finished"}[5m])) + sum(rate(f1_cache_misses_total{scope="finished"}[5m])))
//
//   # Skipped seasons per resource
//   sum by (resource) (f1_years_processed_total{outcome="failed"})
//
//   # P95 Request Latency
//   histogram_quantile(0.95, rate(f1_request_duration_seconds_bucket[5m]))
