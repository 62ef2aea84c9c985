// Package config defines the pipeline configuration and its loader.
//
// Conventions:
//   - New returns a Config holding every default.
//   - Load layers a YAML file, a .env file and F1_* environment variables on
//     top of the defaults, then validates the result.
package config

import (
	"strings"
	"time"

	"github.com/Sternrassler/f1-results-pipeline/pkg/season"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogPretty switches to the human-readable console writer.
	LogPretty bool `koanf:"log_pretty"`

	// BaseURL is the root of the Ergast-compatible service.
	BaseURL string `koanf:"base_url"`

	// UserAgent is sent on every request.
	UserAgent string `koanf:"user_agent"`

	// StartYear and EndYear bound the closed season range.
	StartYear int `koanf:"start_year"`
	EndYear   int `koanf:"end_year"`

	// RequestDelay spaces the requests of one worker.
	RequestDelay time.Duration `koanf:"request_delay"`

	// PageSize is the limit of paginated requests.
	PageSize int `koanf:"page_size"`

	// MaxPages caps a single paginated walk; 0 disables the cap.
	MaxPages int `koanf:"max_pages"`

	// Concurrency is the number of season workers; 1 runs sequentially.
	Concurrency int `koanf:"concurrency"`

	// RequestTimeout bounds every HTTP call.
	RequestTimeout time.Duration `koanf:"request_timeout"`

	// MaxRetries is the number of attempts per request, the first included.
	MaxRetries int `koanf:"max_retries"`

	// InitialBackoff seeds the exponential retry back-off.
	InitialBackoff time.Duration `koanf:"initial_backoff"`

	// RedisAddr enables the response cache when set, e.g. "localhost:6379".
	RedisAddr string `koanf:"redis_addr"`

	// CacheTTL is the lifetime of cached responses.
	CacheTTL time.Duration `koanf:"cache_ttl"`

	// Resources is a comma-separated list of tables to collect.
	Resources string `koanf:"resources"`

	// Addr is the listen address of the serve command.
	Addr string `koanf:"addr"`
}

// New creates a Config holding the defaults.
func New() *Config {
	return &Config{
		LogLevel:       "info",
		LogPretty:      false,
		BaseURL:        "https://api.jolpi.ca/ergast/f1",
		UserAgent:      "f1-results-pipeline/0.1.0",
		StartYear:      1950,
		EndYear:        2024,
		RequestDelay:   500 * time.Millisecond,
		PageSize:       100,
		MaxPages:       1000,
		Concurrency:    1,
		RequestTimeout: 30 * time.Second,
		MaxRetries:     3,
		InitialBackoff: time.Second,
		CacheTTL:       24 * time.Hour,
		Resources:      "champion,constructor,race-results,standings,qualifying,circuits",
		Addr:           ":8080",
	}
}

// Range returns the configured season range.
func (c *Config) Range() season.YearRange {
	return season.YearRange{Start: c.StartYear, End: c.EndYear}
}

// ResourceList splits Resources into trimmed, non-empty names.
func (c *Config) ResourceList() []string {
	var out []string
	for _, r := range strings.Split(c.Resources, ",") {
		if r = strings.TrimSpace(r); r != "" {
			out = append(out, r)
		}
	}
	return out
}
