// API server entry point for Continuity-Map.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/turtacn/Continuity-Map/internal/config"
	"github.com/turtacn/Continuity-Map/internal/infrastructure/monitoring/logging"
	httpserver "github.com/turtacn/Continuity-Map/internal/interfaces/http"
)

// Build-time variables injected via ldflags.
var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func main() {
	configPath := flag.String("config", "", "path to configuration file (default: environment only)")
	httpPort := flag.Int("http-port", 0, "HTTP server port (overrides config)")
	flag.Parse()

	if err := run(*configPath, *httpPort); err != nil {
		fmt.Fprintf(os.Stderr, "apiserver: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string, httpPort int) error {
	cfg, err := config.LoadOrDefault(configPath)
	if err != nil {
		return err
	}
	if httpPort > 0 {
		cfg.Server.Port = httpPort
	}

	logger, err := logging.NewLogger(cfg.Log)
	if err != nil {
		return fmt.Errorf("logger initialization failed: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("starting Continuity-Map API server",
		logging.String("version", version),
		logging.String("commit", commit),
		logging.String("built", buildDate),
		logging.Int("http_port", cfg.Server.Port))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := buildApp(cfg, logger)
	if err != nil {
		return err
	}
	defer app.Close()

	srv := httpserver.NewServer(cfg.Server, app.router, logger)
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("HTTP server failed", logging.Err(err))
		}
		return err
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	if err := srv.Stop(context.Background()); err != nil {
		logger.Error("HTTP server shutdown error", logging.Err(err))
		return err
	}
	logger.Info("server stopped")
	return nil
}

//Personal.AI order the ending
