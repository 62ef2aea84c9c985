package ratelimit

import (
	"time"
)

// DefaultRetryAfter is the back-off applied to a 429 response that carries
// no usable Retry-After header.
const DefaultRetryAfter = 5 * time.Second

// MaxRetryAfter caps a single back-off window.
const MaxRetryAfter = 5 * time.Minute

// State is a snapshot of the 429 back-off state.
type State struct {
	// BlockedUntil is when requests may resume. Zero means never blocked.
	BlockedUntil time.Time `json:"blocked_until"`

	// LastUpdate is when the state last changed.
	LastUpdate time.Time `json:"last_update"`

	// RateLimitedTotal counts 429 responses seen by the tracker.
	RateLimitedTotal int `json:"rate_limited_total"`
}

// IsBlocked reports whether requests must wait at the given instant.
func (s State) IsBlocked(now time.Time) bool {
	return now.Before(s.BlockedUntil)
}

// TimeUntilReset returns how long requests must still wait.
// Returns 0 once the back-off window has passed.
func (s State) TimeUntilReset(now time.Time) time.Duration {
	d := s.BlockedUntil.Sub(now)
	if d < 0 {
		return 0
	}
	return d
}
