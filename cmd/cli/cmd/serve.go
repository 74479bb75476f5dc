// Package cmd - serve command
package cmd

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	httpadapter "observatory/adapters/http"
	"observatory/api"
	"observatory/internal/logging"
	"observatory/internal/metrics"
)

const shutdownTimeout = 10 * time.Second

var serveAddr string

// serveCmd runs the HTTP read adapter
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the engine over HTTP",
	Long: `Load the datasets once and serve region summaries, layer values,
linkages and diagnostics over HTTP. PUT /filter changes the shared filter.

Examples:
  observatory serve
  observatory serve --addr 127.0.0.1:9000 --layer fdi`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides server.addr)")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := loadedConfig
	if serveAddr != "" {
		cfg.Server.Addr = serveAddr
	}

	m := metrics.New(cfg.Server.RuntimeMetrics)
	e, err := openEngine(ctx, m)
	if err != nil {
		return err
	}

	logger := logging.Named("http")
	adapter := httpadapter.New(api.NewServer(version, e, m, logger), &httpadapter.Config{
		Address:        cfg.Server.Addr,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		MaxBodySize:    cfg.Server.MaxBodySize,
		AllowedOrigins: cfg.Server.AllowedOrigins,
	}, logger)

	errc := make(chan error, 1)
	go func() { errc <- adapter.Start() }()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := adapter.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", zap.Error(err))
		return err
	}
	logger.Info("server stopped")
	return nil
}
