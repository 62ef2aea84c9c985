package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/Sternrassler/f1-results-pipeline/internal/api"
	"github.com/Sternrassler/f1-results-pipeline/pkg/logging"
)

const (
	readHeaderTimeout = 5 * time.Second
	writeTimeout      = 60 * time.Second
	idleTimeout       = 120 * time.Second
	shutdownTimeout   = 10 * time.Second
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Collect the configured seasons, then serve them over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			e, err := setup(ctx)
			if err != nil {
				return err
			}
			defer e.Close()

			run, err := e.collect(ctx)
			if err != nil {
				return err
			}

			handler, err := api.NewServer(run,
				api.WithLapSource(e.source, e.cfg.PageSize),
				api.WithRequestDelay(e.cfg.RequestDelay),
				api.WithLogger(logging.Component(e.logger, "api")),
			)
			if err != nil {
				return err
			}

			srv := &http.Server{
				Addr:              e.cfg.Addr,
				Handler:           handler,
				ReadHeaderTimeout: readHeaderTimeout,
				WriteTimeout:      writeTimeout,
				IdleTimeout:       idleTimeout,
			}
			return listen(ctx, srv, e)
		},
	}
}

// listen serves until ctx is done, then shuts srv down gracefully.
func listen(ctx context.Context, srv *http.Server, e *env) error {
	errCh := make(chan error, 1)
	go func() {
		e.logger.Info().Str("addr", srv.Addr).Msg("starting HTTP server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	e.logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		e.logger.Error().Err(err).Msg("server shutdown failed")
		return err
	}
	e.logger.Info().Msg("server stopped")
	return nil
}
