// Package main implements the entry point for the reqpool server, which
// accepts outbound request tasks over HTTP and executes them through a
// bounded-concurrency pool.
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"

	"github.com/phrazzld/reqpool/internal/config"
	"github.com/phrazzld/reqpool/internal/platform/logger"
)

// main is the entry point for the reqpool server. It loads configuration,
// sets up logging, wires the pool and transport, and starts the HTTP server.
func main() {
	app, err := initializeApp()
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	if err := app.startHTTPServer(context.Background(), app.setupRouter()); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

// initializeApp loads configuration and sets up application components.
func initializeApp() (*application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	l, err := logger.Setup(cfg.Server)
	if err != nil {
		return nil, fmt.Errorf("failed to set up logger: %w", err)
	}

	slog.Info("Server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"max_concurrency", cfg.Pool.MaxConcurrency,
		"queue_size", cfg.Pool.QueueSize)

	return newApplication(cfg, l)
}
