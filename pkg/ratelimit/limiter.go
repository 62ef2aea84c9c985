// Package ratelimit gates requests to the statistics service.
//
// Two concerns live here: a Limiter that spaces out calls by wall-clock time
// (the service is rate-limited per interval, not per connection), and a
// Tracker that honours 429 Retry-After responses so that every caller backs
// off until the service is willing to answer again.
//
// A Limiter reaches the client through the request context (NewContext), so
// whoever owns the delay decides it once and every request below obeys it.
package ratelimit

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/time/rate"
)

// DefaultInterval is the inter-call delay used when none is configured.
const DefaultInterval = 500 * time.Millisecond

var (
	rateLimitWaitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "f1_rate_limit_waits_total",
		Help: "Total number of calls that passed through an interval limiter",
	})

	rateLimitWaitSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "f1_rate_limit_wait_seconds",
		Help:    "Time spent waiting on an interval limiter",
		Buckets: []float64{0, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
	})
)

// Limiter blocks until the next call may proceed or ctx is done.
type Limiter interface {
	Wait(ctx context.Context) error
}

// Factory builds an independent Limiter. Worker pools call it once per worker
// so that every worker keeps its own inter-call delay.
type Factory func() Limiter

// IntervalLimiter is a token bucket with burst 1: the first call passes
// immediately, every following call waits for the configured interval.
type IntervalLimiter struct {
	limiter *rate.Limiter
}

// NewIntervalLimiter creates a limiter that admits one call per interval.
// A non-positive interval admits every call without waiting.
func NewIntervalLimiter(interval time.Duration) *IntervalLimiter {
	limit := rate.Inf
	if interval > 0 {
		limit = rate.Every(interval)
	}
	return &IntervalLimiter{limiter: rate.NewLimiter(limit, 1)}
}

// Wait implements Limiter.
func (l *IntervalLimiter) Wait(ctx context.Context) error {
	start := time.Now()
	if err := l.limiter.Wait(ctx); err != nil {
		return err
	}
	rateLimitWaitsTotal.Inc()
	rateLimitWaitSeconds.Observe(time.Since(start).Seconds())
	return nil
}

// IntervalFactory returns a Factory producing fresh IntervalLimiters.
func IntervalFactory(interval time.Duration) Factory {
	return func() Limiter {
		return NewIntervalLimiter(interval)
	}
}

type unlimited struct{}

func (unlimited) Wait(ctx context.Context) error {
	return ctx.Err()
}

// Unlimited returns a Limiter that never waits. It still reports a done
// context so callers observe cancellation at the same points.
func Unlimited() Limiter {
	return unlimited{}
}

// UnlimitedFactory returns a Factory of Unlimited limiters.
func UnlimitedFactory() Factory {
	return func() Limiter { return unlimited{} }
}
