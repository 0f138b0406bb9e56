package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xiebiao/libadmin/pkg/metrics"
	"github.com/xiebiao/libadmin/pkg/tracing"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(load loader) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the console HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := load()
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			shutdownTracing, err := tracing.Init(ctx, tracing.Config{
				Enabled:     cfg.Tracing.Enabled,
				ServiceName: cfg.Tracing.ServiceName,
				Endpoint:    cfg.Tracing.Endpoint,
				Insecure:    cfg.Tracing.Insecure,
				SampleRatio: cfg.Tracing.SampleRatio,
			})
			if err != nil {
				return err
			}
			defer func() {
				sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer cancel()
				if err := shutdownTracing(sctx); err != nil {
					log.Warn("tracing shutdown", zap.Error(err))
				}
			}()

			if cfg.Metrics.Enabled {
				metrics.InitMetrics()
			}

			app, cleanup, err := InitializeApp(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer cleanup()

			return run(ctx, app, log)
		},
	}
}

// run serves until ctx is done, then drains requests and closes every
// workspace.
func run(ctx context.Context, app *App, log *zap.Logger) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		app.Spaces.Run(ctx)
		return nil
	})

	g.Go(func() error {
		log.Info("console listening",
			zap.String("addr", app.Server.Addr),
			zap.String("api", app.Config.API.BaseURL))
		if err := app.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		log.Info("shutting down")
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return app.Server.Shutdown(sctx)
	})

	return g.Wait()
}
