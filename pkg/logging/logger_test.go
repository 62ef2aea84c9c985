package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Level != LevelInfo {
		t.Errorf("Level = %s, want info", cfg.Level)
	}
	if cfg.Pretty {
		t.Error("Pretty should default to false")
	}
	if cfg.Service != "f1-history" {
		t.Errorf("Service = %q, want f1-history", cfg.Service)
	}
}

func TestSetup_Service(t *testing.T) {
	tests := []struct {
		service string
		want    bool
	}{
		{"f1-history", true},
		{"", false},
	}

	for _, tt := range tests {
		t.Run("service="+tt.service, func(t *testing.T) {
			buf := &bytes.Buffer{}
			logger := Setup(Config{Level: LevelInfo, Output: buf, Service: tt.service})
			logger.Info().Msg("season collected")

			got := strings.Contains(buf.String(), `"service":`)
			if got != tt.want {
				t.Errorf("service field present = %v, want %v: %s", got, tt.want, buf.String())
			}
		})
	}
}

func TestSetup_LevelFiltering(t *testing.T) {
	tests := []struct {
		level   LogLevel
		emitted []string
		dropped []string
	}{
		{LevelDebug, []string{"debug", "info", "warn", "error"}, nil},
		{LevelInfo, []string{"info", "warn", "error"}, []string{"debug"}},
		{LevelWarn, []string{"warn", "error"}, []string{"debug", "info"}},
		{LevelError, []string{"error"}, []string{"debug", "info", "warn"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.level), func(t *testing.T) {
			buf := &bytes.Buffer{}
			logger := Setup(Config{Level: tt.level, Output: buf})

			logger.Debug().Msg("debug season page")
			logger.Info().Msg("info season page")
			logger.Warn().Msg("warn season page")
			logger.Error().Msg("error season page")

			out := buf.String()
			for _, lvl := range tt.emitted {
				if !strings.Contains(out, lvl+" season page") {
					t.Errorf("%s message missing at %s level", lvl, tt.level)
				}
			}
			for _, lvl := range tt.dropped {
				if strings.Contains(out, lvl+" season page") {
					t.Errorf("%s message should be filtered at %s level", lvl, tt.level)
				}
			}
		})
	}
}

func TestSetup_Pretty(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := Setup(Config{Level: LevelInfo, Pretty: true, Output: buf})
	logger.Info().Msg("run finished")

	out := buf.String()
	if !strings.Contains(out, "run finished") {
		t.Errorf("output = %q", out)
	}
	if strings.HasPrefix(out, "{") {
		t.Error("pretty output should not be JSON")
	}
}

func TestSetup_NilOutput(t *testing.T) {
	logger := Setup(Config{Level: LevelError})
	logger.Debug().Msg("discarded")
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    LogLevel
		expected zerolog.Level
	}{
		{LevelDebug, zerolog.DebugLevel},
		{LevelInfo, zerolog.InfoLevel},
		{LevelWarn, zerolog.WarnLevel},
		{" WARN ", zerolog.WarnLevel},
		{LevelError, zerolog.ErrorLevel},
		{"invalid", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(string(tt.input), func(t *testing.T) {
			if got := parseLevel(tt.input); got != tt.expected {
				t.Errorf("parseLevel(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestValidLevel(t *testing.T) {
	for _, level := range []string{"debug", "INFO", "warn", "warning", "error"} {
		if !ValidLevel(level) {
			t.Errorf("ValidLevel(%q) = false", level)
		}
	}
	for _, level := range []string{"", "trace", "verbose"} {
		if ValidLevel(level) {
			t.Errorf("ValidLevel(%q) = true", level)
		}
	}
}

func TestContextFields(t *testing.T) {
	tests := []struct {
		name   string
		logger func(zerolog.Logger) zerolog.Logger
		want   []string
		absent []string
	}{
		{
			name:   "run",
			logger: func(l zerolog.Logger) zerolog.Logger { return ForRun(l, "3f1c2a8e-run") },
			want:   []string{`"run_id":"3f1c2a8e-run"`},
		},
		{
			name:   "component",
			logger: func(l zerolog.Logger) zerolog.Logger { return Component(l, "api") },
			want:   []string{`"component":"api"`},
		},
		{
			name:   "resource",
			logger: func(l zerolog.Logger) zerolog.Logger { return ForResource(l, "standings") },
			want:   []string{`"resource":"standings"`},
		},
		{
			name:   "race",
			logger: func(l zerolog.Logger) zerolog.Logger { return ForRace(l, 2021, 5) },
			want:   []string{`"year":2021`, `"round":5`},
		},
		{
			name:   "season only",
			logger: func(l zerolog.Logger) zerolog.Logger { return ForRace(l, 1950, 0) },
			want:   []string{`"year":1950`},
			absent: []string{`"round"`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			Setup(Config{Level: LevelInfo, Output: buf})

			l := tt.logger(NewLogger("ingest"))
			l.Info().Msg("tagged")

			out := buf.String()
			if !strings.Contains(out, `"component":`) {
				t.Errorf("component missing: %q", out)
			}
			for _, w := range tt.want {
				if !strings.Contains(out, w) {
					t.Errorf("output %q missing %s", out, w)
				}
			}
			for _, a := range tt.absent {
				if strings.Contains(out, a) {
					t.Errorf("output %q should not contain %s", out, a)
				}
			}
		})
	}
}
