// Package logging configures the process-wide zerolog logger of the pipeline
// and derives the tagged loggers the collectors write through: one per
// component, per ingestion run, per resource and per season or race.
//
// Setup installs the global logger once at startup; everything else takes a
// zerolog.Logger and returns a child, so packages never reach for globals
// beyond NewLogger.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// LogLevel names a minimum severity, as written in configuration.
type LogLevel string

const (
	LevelDebug LogLevel = "debug"
	LevelInfo  LogLevel = "info"
	LevelWarn  LogLevel = "warn"
	LevelError LogLevel = "error"
)

// levels maps every accepted spelling to its zerolog level.
var levels = map[string]zerolog.Level{
	"debug":   zerolog.DebugLevel,
	"info":    zerolog.InfoLevel,
	"warn":    zerolog.WarnLevel,
	"warning": zerolog.WarnLevel,
	"error":   zerolog.ErrorLevel,
}

func lookupLevel(level string) (zerolog.Level, bool) {
	l, ok := levels[strings.ToLower(strings.TrimSpace(level))]
	return l, ok
}

// Config holds logger configuration.
type Config struct {
	Level LogLevel

	// Pretty switches from JSON lines to the console writer.
	Pretty bool

	// Output defaults to os.Stderr.
	Output io.Writer

	// Service, when set, is attached to every entry.
	Service string
}

// DefaultConfig returns JSON logging at info level to stderr.
func DefaultConfig() Config {
	return Config{
		Level:   LevelInfo,
		Output:  os.Stderr,
		Service: "f1-history",
	}
}

// Setup builds the root logger from cfg, installs it as the global logger
// and returns it. Unknown levels fall back to info.
func Setup(cfg Config) zerolog.Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	if cfg.Pretty {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.TimeOnly}
	}

	zerolog.SetGlobalLevel(parseLevel(cfg.Level))

	ctx := zerolog.New(out).With().Timestamp()
	if cfg.Service != "" {
		ctx = ctx.Str("service", cfg.Service)
	}
	log.Logger = ctx.Logger()
	return log.Logger
}

func parseLevel(level LogLevel) zerolog.Level {
	if l, ok := lookupLevel(string(level)); ok {
		return l
	}
	return zerolog.InfoLevel
}

// ValidLevel reports whether level names a known log level.
func ValidLevel(level string) bool {
	_, ok := lookupLevel(level)
	return ok
}

// NewLogger derives a component logger from the global logger.
func NewLogger(component string) zerolog.Logger {
	return log.With().Str("component", component).Logger()
}

// ForRun tags logger with the ingestion run ID.
func ForRun(logger zerolog.Logger, runID string) zerolog.Logger {
	return logger.With().Str("run_id", runID).Logger()
}

// Component tags logger with the emitting package.
func Component(logger zerolog.Logger, name string) zerolog.Logger {
	return logger.With().Str("component", name).Logger()
}

// ForResource tags logger with the collected resource.
func ForResource(logger zerolog.Logger, resource string) zerolog.Logger {
	return logger.With().Str("resource", resource).Logger()
}

// ForRace tags logger with a season and, when round > 0, a round.
func ForRace(logger zerolog.Logger, year, round int) zerolog.Logger {
	ctx := logger.With().Int("year", year)
	if round > 0 {
		ctx = ctx.Int("round", round)
	}
	return ctx.Logger()
}

// Levels in use:
//
//	debug  page and request flow, cache hits, per-season record counts
//	info   run start, per-resource summaries, server start and stop
//	warn   skipped seasons, partial page walks, 429s, cache errors
//	error  runs without data, invalid configuration, server failures
//
// Common fields: component, run_id, resource, year, round, error_class,
// pages, items.
