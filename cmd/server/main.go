// Package main - Entry point for the observatory HTTP server
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	httpadapter "observatory/adapters/http"
	"observatory/api"
	"observatory/core/engine"
	"observatory/internal/config"
	"observatory/internal/loader"
	"observatory/internal/logging"
	"observatory/internal/metrics"
)

const (
	version         = "1.0.0"
	shutdownTimeout = 10 * time.Second
)

func main() {
	cfgPath := flag.String("config", "", "Config file (JSON or YAML)")
	addr := flag.String("addr", "", "Server address (overrides server.addr)")
	flag.Parse()

	if err := run(*cfgPath, *addr); err != nil {
		fmt.Fprintf(os.Stderr, "observatory-server: %v\n", err)
		os.Exit(1)
	}
}

func run(cfgPath, addr string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	if addr != "" {
		cfg.Server.Addr = addr
	}
	if err := logging.Initialize(cfg.Logging); err != nil {
		return err
	}
	defer logging.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := loader.New(logging.Named("loader")).Load(ctx, loader.Options{
		Dir:       cfg.Data.Dir,
		GeoJSON:   cfg.GeoJSONPath(),
		AliasFile: cfg.Data.AliasFile,
	})
	if err != nil {
		return err
	}

	m := metrics.New(cfg.Server.RuntimeMetrics)
	e, err := engine.New(store, cfg.Filter,
		engine.WithLogger(logging.Named("engine")),
		engine.WithMetrics(m),
	)
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
