package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/reqpool/internal/config"
	"github.com/phrazzld/reqpool/internal/platform/httpclient"
	"github.com/phrazzld/reqpool/internal/pool"
)

// drainTimeout bounds how long shutdown waits for in-flight tasks.
const drainTimeout = 30 * time.Second

// application holds the server's wired dependencies.
type application struct {
	config *config.Config
	logger *slog.Logger
	pool   *pool.Pool
}

// newApplication builds the dependency graph: transport, pool, and the
// handlers created from them in setupRouter.
func newApplication(cfg *config.Config, logger *slog.Logger) (*application, error) {
	transport := httpclient.New(httpclient.Config{
		Timeout: cfg.Client.Timeout,
	})

	p, err := pool.New(pool.Config{
		MaxConcurrency: cfg.Pool.MaxConcurrency,
		QueueSize:      cfg.Pool.QueueSize,
		PollInterval:   cfg.Pool.PollInterval,
	}, transport, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}

	p.OnDrained(func(s pool.Stats) {
		logger.Info("pool drained",
			"total", s.Total,
			"completed", s.Completed,
			"failed", s.Failed,
			"cancelled", s.Cancelled)
	})

	return &application{
		config: cfg,
		logger: logger,
		pool:   p,
	}, nil
}

// cleanup releases application resources on shutdown. It drains the pool
// gracefully, bounded by drainTimeout, before tearing it down.
func (app *application) cleanup() {
	if !app.pool.Stop(drainTimeout) {
		app.logger.Warn("pool did not drain before timeout, stopping immediately")
	}
	if err := app.pool.Close(); err != nil {
		app.logger.Error("failed to close pool", "error", err)
	}
}
