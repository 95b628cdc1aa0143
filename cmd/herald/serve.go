package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/xraph/herald/extension"
	"github.com/xraph/herald/internal/logger"
)

const readHeaderTimeout = 10 * time.Second

func newServeCmd(root *rootOptions) *cobra.Command {
	var (
		dryRun bool
		listen string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the relay HTTP server",
		Long:  "Loads configuration from --config and the environment, then serves producer webhooks and the admin API until interrupted.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadServeConfig(root.configPath, listen, dryRun)
			if err != nil {
				return err
			}

			log, err := logger.New(cfg.Log)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			slog.SetDefault(log)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg, log)
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "record posts instead of sending them to Discord")
	cmd.Flags().StringVar(&listen, "listen", "", "listen address (overrides config)")
	return cmd
}

// loadServeConfig reads the file and environment, applies the flags and
// validates the result. Dry run is applied before validation so that a
// workshop setup without a bot token can still be exercised.
func loadServeConfig(path, listen string, dryRun bool) (extension.Config, error) {
	cfg, err := extension.Read(path, nil)
	if err != nil {
		return cfg, fmt.Errorf("load config: %w", err)
	}
	if listen != "" {
		cfg.Listen = listen
	}
	if dryRun {
		cfg.DryRun = true
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func serve(ctx context.Context, cfg extension.Config, log *slog.Logger) error {
	app, err := extension.New(cfg, extension.WithLogger(log))
	if err != nil {
		return err
	}
	if err := app.Migrate(ctx); err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.Listen,
		Handler:           app.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("herald listening", "addr", cfg.Listen, "store", cfg.Store, "dry_run", cfg.DryRun)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			_ = app.Shutdown(context.Background())
			return err
		}
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout+readHeaderTimeout)
	defer cancel()

	log.Info("herald shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("http shutdown", "error", err.Error())
	}
	return app.Shutdown(shutdownCtx)
}
