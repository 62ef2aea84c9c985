package ratelimit

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

var (
	rateLimitedResponsesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "f1_rate_limited_responses_total",
		Help: "Total number of 429 responses received from the statistics service",
	})

	rateLimitBackoffSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "f1_rate_limit_backoff_seconds",
		Help:    "Back-off windows requested by 429 responses",
		Buckets: []float64{1, 2, 5, 10, 30, 60, 120, 300},
	})
)

// Tracker records 429 responses and holds callers back until the
// Retry-After window has elapsed. It is safe for concurrent use.
type Tracker struct {
	mu     sync.Mutex
	state  State
	now    func() time.Time
	logger zerolog.Logger
}

// NewTracker creates a tracker in the unblocked state.
func NewTracker(logger zerolog.Logger) *Tracker {
	return &Tracker{
		now:    time.Now,
		logger: logger,
	}
}

// State returns a copy of the current state.
func (t *Tracker) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// UpdateFromResponse inspects a response status and headers. Only 429
// responses change the state; everything else is ignored.
func (t *Tracker) UpdateFromResponse(statusCode int, headers http.Header) {
	if statusCode != http.StatusTooManyRequests {
		return
	}

	now := t.now()
	backoff := parseRetryAfter(headers.Get("Retry-After"), now)

	t.mu.Lock()
	until := now.Add(backoff)
	if until.After(t.state.BlockedUntil) {
		t.state.BlockedUntil = until
	}
	t.state.LastUpdate = now
	t.state.RateLimitedTotal++
	total := t.state.RateLimitedTotal
	t.mu.Unlock()

	rateLimitedResponsesTotal.Inc()
	rateLimitBackoffSeconds.Observe(backoff.Seconds())

	t.logger.Warn().
		Dur("backoff", backoff).
		Time("blocked_until", until).
		Int("rate_limited_total", total).
		Msg("Statistics service rate limit hit - backing off")
}

// Wait blocks while the tracker is in a back-off window.
func (t *Tracker) Wait(ctx context.Context) error {
	state, now := t.State(), t.now()
	if !state.IsBlocked(now) {
		return ctx.Err()
	}
	wait := state.TimeUntilReset(now)

	t.logger.Debug().Dur("wait", wait).Msg("Waiting for rate limit window to reset")

	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// parseRetryAfter accepts delay-seconds or an HTTP date.
func parseRetryAfter(value string, now time.Time) time.Duration {
	value = strings.TrimSpace(value)
	if value == "" {
		return DefaultRetryAfter
	}

	var d time.Duration
	if secs, err := strconv.Atoi(value); err == nil {
		d = time.Duration(secs) * time.Second
	} else if at, err := http.ParseTime(value); err == nil {
		d = at.Sub(now)
	} else {
		return DefaultRetryAfter
	}

	if d <= 0 {
		return 0
	}
	if d > MaxRetryAfter {
		return MaxRetryAfter
	}
	return d
}
