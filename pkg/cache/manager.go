package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// DefaultTTL applies to the current season and to paths without one.
	DefaultTTL = 24 * time.Hour

	// FinishedSeasonTTL applies to seasons before the current year, whose
	// results no longer change.
	FinishedSeasonTTL = 30 * 24 * time.Hour
)

var (
	// ErrCacheMiss indicates the key is absent or its entry expired.
	ErrCacheMiss = errors.New("cache miss")

	// ErrInvalidEntry indicates a stored entry could not be decoded.
	ErrInvalidEntry = errors.New("invalid cache entry")
)

// Manager stores service responses in Redis.
type Manager struct {
	redis       *redis.Client
	ttl         time.Duration
	finishedTTL time.Duration
	now         func() time.Time
}

// Option configures a Manager.
type Option func(*Manager)

// WithFinishedSeasonTTL overrides FinishedSeasonTTL.
func WithFinishedSeasonTTL(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.finishedTTL = d
		}
	}
}

// WithClock sets the clock deciding which seasons are finished.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// NewManager creates a manager over redisClient. ttl <= 0 means DefaultTTL.
func NewManager(redisClient *redis.Client, ttl time.Duration, opts ...Option) *Manager {
	if redisClient == nil {
		panic("redis client cannot be nil")
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	m := &Manager{
		redis:       redisClient,
		ttl:         ttl,
		finishedTTL: FinishedSeasonTTL,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.finishedTTL < m.ttl {
		m.finishedTTL = m.ttl
	}
	return m
}

// TTL returns the lifetime of current-season entries.
func (m *Manager) TTL() time.Duration {
	return m.ttl
}

// TTLFor returns the lifetime an entry for key gets.
func (m *Manager) TTLFor(key Key) time.Duration {
	if m.finished(key) {
		return m.finishedTTL
	}
	return m.ttl
}

func (m *Manager) finished(key Key) bool {
	season, ok := key.Season()
	return ok && season < m.now().Year()
}

func (m *Manager) scope(key Key) string {
	if m.finished(key) {
		return scopeFinished
	}
	return scopeCurrent
}

// Get returns the entry for key, or ErrCacheMiss.
func (m *Manager) Get(ctx context.Context, key Key) (*Entry, error) {
	data, err := m.redis.Get(ctx, key.String()).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			cacheMisses.WithLabelValues(m.scope(key)).Inc()
			return nil, ErrCacheMiss
		}
		cacheErrors.WithLabelValues("get").Inc()
		return nil, fmt.Errorf("redis get: %w", err)
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		cacheErrors.WithLabelValues("get").Inc()
		return nil, fmt.Errorf("%w: %v", ErrInvalidEntry, err)
	}

	if entry.IsExpired() {
		_ = m.Delete(ctx, key)
		cacheMisses.WithLabelValues(m.scope(key)).Inc()
		return nil, ErrCacheMiss
	}

	cacheHits.WithLabelValues(m.scope(key)).Inc()
	return &entry, nil
}

// Put caches a response body under key with the TTL of its season.
func (m *Manager) Put(ctx context.Context, key Key, data []byte) error {
	entry := NewEntry(data, m.TTLFor(key))
	entry.Season, _ = key.Season()
	return m.Set(ctx, key, entry)
}

// Set stores entry. Redis expires the key together with the entry; an
// already expired entry is not written.
func (m *Manager) Set(ctx context.Context, key Key, entry *Entry) error {
	if entry == nil {
		return fmt.Errorf("cache entry cannot be nil")
	}

	ttl := entry.TTL()
	if ttl <= 0 {
		return nil
	}

	data, err := json.Marshal(entry)
	if err != nil {
		cacheErrors.WithLabelValues("set").Inc()
		return fmt.Errorf("marshal cache entry: %w", err)
	}

	if err := m.redis.Set(ctx, key.String(), data, ttl).Err(); err != nil {
		cacheErrors.WithLabelValues("set").Inc()
		return fmt.Errorf("redis set: %w", err)
	}

	cacheBytes.Add(float64(len(data)))
	return nil
}

// Delete removes the entry for key.
func (m *Manager) Delete(ctx context.Context, key Key) error {
	if err := m.redis.Del(ctx, key.String()).Err(); err != nil {
		cacheErrors.WithLabelValues("delete").Inc()
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}
