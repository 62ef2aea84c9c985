package main

import (
	"context"
	"fmt"
	"os"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/Sternrassler/f1-results-pipeline/internal/config"
	"github.com/Sternrassler/f1-results-pipeline/pkg/client"
	"github.com/Sternrassler/f1-results-pipeline/pkg/ergast"
	"github.com/Sternrassler/f1-results-pipeline/pkg/ingest"
	"github.com/Sternrassler/f1-results-pipeline/pkg/logging"
	"github.com/Sternrassler/f1-results-pipeline/pkg/season"
)

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "f1-history",
		Short:         "Collect and serve Formula 1 season history",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if configPath != "" {
				return os.Setenv(config.EnvConfigFile, configPath)
			}
			return nil
		},
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "YAML configuration file (overrides "+config.EnvConfigFile+")")

	root.AddCommand(newIngestCmd(), newServeCmd())
	return root
}

// env is what every command needs once configuration is loaded.
type env struct {
	cfg    *config.Config
	logger zerolog.Logger
	client *client.Client
	source *ergast.Source
}

func (e *env) Close() error {
	return e.client.Close()
}

func setup(ctx context.Context) (*env, error) {
	cfg, err := config.Load(ctx)
	if err != nil {
		return nil, err
	}

	lcfg := logging.DefaultConfig()
	lcfg.Level = logging.LogLevel(cfg.LogLevel)
	lcfg.Pretty = cfg.LogPretty
	logger := logging.Setup(lcfg)

	ccfg := client.DefaultConfig(cfg.UserAgent)
	ccfg.BaseURL = cfg.BaseURL
	ccfg.Timeout = cfg.RequestTimeout
	ccfg.Retry.MaxAttempts = cfg.MaxRetries
	ccfg.Retry.InitialBackoff = cfg.InitialBackoff
	ccfg.CacheTTL = cfg.CacheTTL

	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis unreachable, running without response cache")
			_ = rdb.Close()
		} else {
			logger.Info().Str("addr", cfg.RedisAddr).Dur("ttl", cfg.CacheTTL).Msg("response cache enabled")
			ccfg.Redis = rdb
		}
	}

	c, err := client.New(ccfg)
	if err != nil {
		if ccfg.Redis != nil {
			_ = ccfg.Redis.Close()
		}
		return nil, fmt.Errorf("create client: %w", err)
	}

	return &env{
		cfg:    cfg,
		logger: logger,
		client: c,
		source: ergast.NewSource(c, ergast.WithMaxPages(cfg.MaxPages)),
	}, nil
}

// collect runs one ingestion over the configured range and resources.
func (e *env) collect(ctx context.Context) (*ingest.Run, error) {
	resources, err := ingest.ParseResources(e.cfg.ResourceList())
	if err != nil {
		return nil, err
	}

	run, err := ingest.NewRun(e.source, e.cfg.Range(),
		ingest.WithPageSize(e.cfg.PageSize),
		ingest.WithLogger(logging.Component(e.logger, "ingest")),
		ingest.WithSeasonOptions(
			season.WithDelay(e.cfg.RequestDelay),
			season.WithConcurrency(e.cfg.Concurrency),
		),
	)
	if err != nil {
		return nil, err
	}

	e.logger.Info().
		Str("run_id", run.ID.String()).
		Str("range", run.Range.String()).
		Strs("resources", e.cfg.ResourceList()).
		Str("base_url", e.client.BaseURL()).
		Msg("starting ingestion")

	return run, run.Collect(ctx, resources...)
}
