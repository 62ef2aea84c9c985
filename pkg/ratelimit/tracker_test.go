package ratelimit

import (
	"context"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func newTestTracker(now time.Time) *Tracker {
	logger := zerolog.New(os.Stderr).Level(zerolog.Disabled)
	tr := NewTracker(logger)
	tr.now = func() time.Time { return now }
	return tr
}

func TestParseRetryAfter(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		value    string
		expected time.Duration
	}{
		{name: "empty uses default", value: "", expected: DefaultRetryAfter},
		{name: "seconds", value: "12", expected: 12 * time.Second},
		{name: "zero seconds", value: "0", expected: 0},
		{name: "http date", value: now.Add(30 * time.Second).Format(http.TimeFormat), expected: 30 * time.Second},
		{name: "date in the past", value: now.Add(-time.Minute).Format(http.TimeFormat), expected: 0},
		{name: "garbage uses default", value: "soon", expected: DefaultRetryAfter},
		{name: "capped", value: "3600", expected: MaxRetryAfter},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := parseRetryAfter(tt.value, now); got != tt.expected {
				t.Errorf("parseRetryAfter(%q) = %v, want %v", tt.value, got, tt.expected)
			}
		})
	}
}

func TestTracker_IgnoresNon429(t *testing.T) {
	now := time.Now()
	tr := newTestTracker(now)

	for _, status := range []int{200, 304, 404, 500, 503} {
		tr.UpdateFromResponse(status, http.Header{"Retry-After": []string{"60"}})
	}

	state := tr.State()
	if state.RateLimitedTotal != 0 {
		t.Errorf("RateLimitedTotal = %d, want 0", state.RateLimitedTotal)
	}
	if state.IsBlocked(now) {
		t.Error("tracker should not be blocked")
	}
}

func TestTracker_BlocksAfter429(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	tr := newTestTracker(now)

	tr.UpdateFromResponse(http.StatusTooManyRequests, http.Header{"Retry-After": []string{"10"}})

	state := tr.State()
	if !state.IsBlocked(now) {
		t.Fatal("tracker should be blocked after a 429")
	}
	if got := state.TimeUntilReset(now); got != 10*time.Second {
		t.Errorf("TimeUntilReset = %v, want 10s", got)
	}
	if state.RateLimitedTotal != 1 {
		t.Errorf("RateLimitedTotal = %d, want 1", state.RateLimitedTotal)
	}
	if state.TimeUntilReset(now.Add(time.Minute)) != 0 {
		t.Error("TimeUntilReset should be 0 after the window")
	}
}

func TestTracker_KeepsLongestWindow(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	tr := newTestTracker(now)

	tr.UpdateFromResponse(http.StatusTooManyRequests, http.Header{"Retry-After": []string{"30"}})
	tr.UpdateFromResponse(http.StatusTooManyRequests, http.Header{"Retry-After": []string{"5"}})

	state := tr.State()
	if got := state.TimeUntilReset(now); got != 30*time.Second {
		t.Errorf("TimeUntilReset = %v, want 30s", got)
	}
	if state.RateLimitedTotal != 2 {
		t.Errorf("RateLimitedTotal = %d, want 2", state.RateLimitedTotal)
	}
}

func TestTracker_WaitHonoursContext(t *testing.T) {
	tr := NewTracker(zerolog.Nop())
	tr.UpdateFromResponse(http.StatusTooManyRequests, http.Header{"Retry-After": []string{"60"}})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	start := time.Now()
	if err := tr.Wait(ctx); err == nil {
		t.Error("Wait() should return the context error")
	}
	if time.Since(start) > time.Second {
		t.Error("Wait() should return as soon as the context is done")
	}
}

func TestTracker_WaitUnblocked(t *testing.T) {
	tr := NewTracker(zerolog.Nop())
	if err := tr.Wait(context.Background()); err != nil {
		t.Errorf("Wait() error = %v", err)
	}
}
