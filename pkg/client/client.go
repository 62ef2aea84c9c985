// Package client provides the HTTP client for the Ergast-compatible
// statistics service with retries, 429 back-off, optional response caching
// and error classification.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/Sternrassler/f1-results-pipeline/pkg/cache"
	"github.com/Sternrassler/f1-results-pipeline/pkg/logging"
	"github.com/Sternrassler/f1-results-pipeline/pkg/ratelimit"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// DefaultBaseURL is the public Ergast-compatible mirror.
const DefaultBaseURL = "https://api.jolpi.ca/ergast/f1"

// maxBodyBytes bounds a single response body.
const maxBodyBytes = 16 << 20

// Prometheus metrics for client operations.
var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "f1_requests_total",
		Help: "Total statistics service requests by endpoint and status",
	}, []string{"endpoint", "status"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "f1_request_duration_seconds",
		Help:    "Statistics service request duration in seconds by endpoint",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10},
	}, []string{"endpoint"})

	errorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "f1_errors_total",
		Help: "Total statistics service errors by class",
	}, []string{"class"})
)

// Config holds the client configuration.
type Config struct {
	// BaseURL is the service root, e.g. "https://api.jolpi.ca/ergast/f1"
	BaseURL string

	// UserAgent is sent on every request
	UserAgent string

	// Timeout bounds each HTTP call
	Timeout time.Duration

	// Retry controls retry/backoff behaviour
	Retry RetryConfig

	// Redis enables the response cache when non-nil
	Redis *redis.Client

	// CacheTTL is the lifetime of cached responses
	CacheTTL time.Duration
}

// DefaultConfig returns a safe default configuration without caching.
func DefaultConfig(userAgent string) Config {
	return Config{
		BaseURL:   DefaultBaseURL,
		UserAgent: userAgent,
		Timeout:   30 * time.Second,
		Retry:     DefaultRetryConfig(),
		CacheTTL:  cache.DefaultTTL,
	}
}

// responseCache stores successful response bodies. *cache.Manager satisfies it.
type responseCache interface {
	Get(ctx context.Context, key cache.Key) (*cache.Entry, error)
	Put(ctx context.Context, key cache.Key, data []byte) error
	Delete(ctx context.Context, key cache.Key) error
}

var _ responseCache = (*cache.Manager)(nil)

// Client is the statistics service client.
type Client struct {
	httpClient *http.Client
	baseURL    string
	cache      responseCache
	tracker    *ratelimit.Tracker
	config     Config
	logger     zerolog.Logger
}

// New creates a new client.
func New(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, fmt.Errorf("base url is required")
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if cfg.UserAgent == "" {
		return nil, fmt.Errorf("user-agent is required")
	}
	if cfg.Timeout <= 0 {
		return nil, fmt.Errorf("timeout must be > 0 (got %s)", cfg.Timeout)
	}

	logger := logging.NewLogger("f1-client")

	c := &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		tracker: ratelimit.NewTracker(logger),
		config:  cfg,
		logger:  logger,
	}
	if cfg.Redis != nil {
		c.cache = cache.NewManager(cfg.Redis, cfg.CacheTTL)
	}
	return c, nil
}

// GetJSON fetches path relative to the base URL and decodes the body into out.
// A fetched body is cached only once it decoded; a cached body that no longer
// decodes is evicted.
func (c *Client) GetJSON(ctx context.Context, path string, query url.Values, out any) error {
	key := cache.Key{Path: path, Query: query}
	body, cached, err := c.fetch(ctx, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		if cached {
			c.evict(ctx, key)
		}
		errorsTotal.WithLabelValues(string(ErrorClassDecode)).Inc()
		return &APIError{
			StatusCode: http.StatusOK,
			ErrorClass: ErrorClassDecode,
			Message:    "decode response body",
			Err:        err,
		}
	}
	if !cached {
		c.store(ctx, key, body)
	}
	return nil
}

// Get fetches path relative to the base URL and returns the body of a
// successful response. Any non-2xx outcome is returned as an *APIError.
// Bodies that are not valid JSON are returned but never cached.
func (c *Client) Get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	key := cache.Key{Path: path, Query: query}
	body, cached, err := c.fetch(ctx, key)
	if err != nil {
		return nil, err
	}
	if !cached && json.Valid(body) {
		c.store(ctx, key, body)
	}
	return body, nil
}

func (c *Client) store(ctx context.Context, key cache.Key, body []byte) {
	if c.cache == nil {
		return
	}
	if err := c.cache.Put(ctx, key, body); err != nil {
		c.logger.Warn().Err(err).Str("path", key.Path).Msg("Failed to cache response")
	}
}

func (c *Client) evict(ctx context.Context, key cache.Key) {
	if err := c.cache.Delete(ctx, key); err != nil {
		c.logger.Warn().Err(err).Str("path", key.Path).Msg("Failed to evict undecodable cache entry")
		return
	}
	c.logger.Warn().Str("path", key.Path).Msg("Evicted undecodable cache entry")
}

// fetch returns the body for key from the cache or the service. cached
// reports a cache hit. Every request sent to the service first waits on the
// Limiter carried by ctx, if any, then on the 429 tracker.
func (c *Client) fetch(ctx context.Context, key cache.Key) (body []byte, cached bool, err error) {
	path, query := key.Path, key.Query
	endpoint := endpointLabel(path)

	startTime := time.Now()
	defer func() {
		requestDuration.WithLabelValues(endpoint).Observe(time.Since(startTime).Seconds())
	}()

	if c.cache != nil {
		entry, err := c.cache.Get(ctx, key)
		switch {
		case err == nil:
			requestsTotal.WithLabelValues(endpoint, "cache").Inc()
			c.logger.Debug().Str("path", path).Msg("Cache hit")
			return entry.Data, true, nil
		case !errors.Is(err, cache.ErrCacheMiss):
			c.logger.Warn().Err(err).Str("path", path).Msg("Cache get error")
		}
	}

	target := c.baseURL + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	limiter, paced := ratelimit.FromContext(ctx)

	err = retryWithBackoff(ctx, c.config.Retry, c.logger, func() (ErrorClass, error) {
		if paced {
			if err := limiter.Wait(ctx); err != nil {
				return "", fmt.Errorf("%w: %v", ErrContextCancelled, err)
			}
		}
		if err := c.tracker.Wait(ctx); err != nil {
			return "", fmt.Errorf("%w: %v", ErrContextCancelled, err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
		if err != nil {
			return ErrorClassClient, fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("User-Agent", c.config.UserAgent)
		req.Header.Set("Accept", "application/json")

		c.logger.Debug().Str("url", target).Msg("Executing request")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return "", fmt.Errorf("%w: %v", ErrContextCancelled, ctx.Err())
			}
			errorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
			requestsTotal.WithLabelValues(endpoint, "network_error").Inc()
			c.logger.Warn().Err(err).Str("path", path).Msg("HTTP request failed")
			return ErrorClassNetwork, &APIError{ErrorClass: ErrorClassNetwork, Message: "request failed", Err: err}
		}
		defer resp.Body.Close()

		c.tracker.UpdateFromResponse(resp.StatusCode, resp.Header)
		requestsTotal.WithLabelValues(endpoint, strconv.Itoa(resp.StatusCode)).Inc()

		if class := classifyStatus(resp.StatusCode); class != "" {
			errorsTotal.WithLabelValues(string(class)).Inc()
			c.logger.Warn().
				Str("path", path).
				Int("status", resp.StatusCode).
				Str("error_class", string(class)).
				Msg("Request error")
			_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
			return class, &APIError{StatusCode: resp.StatusCode, ErrorClass: class, Message: resp.Status}
		}

		data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
		if err != nil {
			errorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
			return ErrorClassNetwork, &APIError{
				StatusCode: resp.StatusCode,
				ErrorClass: ErrorClassNetwork,
				Message:    "read response body",
				Err:        err,
			}
		}
		body = data
		return "", nil
	})
	if err != nil {
		return nil, false, err
	}
	return body, false, nil
}

// classifyStatus maps an HTTP status to an error class; "" means success.
func classifyStatus(status int) ErrorClass {
	switch {
	case status == http.StatusTooManyRequests:
		return ErrorClassRateLimit
	case status >= 500:
		return ErrorClassServer
	case status >= 400:
		return ErrorClassClient
	case status >= 300:
		// Redirects are followed by net/http; anything left over is unusable.
		return ErrorClassClient
	default:
		return ""
	}
}

var numericSegment = regexp.MustCompile(`/\d+`)

// endpointLabel collapses year/round segments so metric cardinality stays bounded.
func endpointLabel(path string) string {
	p := "/" + strings.Trim(path, "/")
	return numericSegment.ReplaceAllString(p, "/{n}")
}

// RateLimitState returns the current 429 back-off state.
func (c *Client) RateLimitState() ratelimit.State {
	return c.tracker.State()
}

// BaseURL returns the configured service root.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Close releases the cache connection when one is configured.
func (c *Client) Close() error {
	if c.config.Redis != nil {
		return c.config.Redis.Close()
	}
	return nil
}
