// Package app wires the dashboard's components from configuration.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"

	"exodash/internal/archive"
	"exodash/internal/cache"
	"exodash/internal/config"
	"exodash/internal/engine"
	"exodash/internal/observability"
	"exodash/internal/service/dashboard"
)

// Deps holds the external dependencies that main() must provide.
type Deps struct {
	Cfg    *config.Config
	Logger *slog.Logger
	// Registerer receives the Prometheus metrics. Nil selects a fresh
	// registry so repeated wiring (tests) never collides.
	Registerer prometheus.Registerer
	// HTTPClient overrides the archive transport. Nil uses the default.
	HTTPClient *http.Client
}

// App holds the fully-wired application.
type App struct {
	Archive   *archive.Client
	Cache     *cache.SnapshotCache
	Dashboard *dashboard.Service
	Engine    *engine.SnapshotEngine
	Metrics   *observability.Collector
}

// New wires the archive client, snapshot cache, dashboard service, SQL
// explorer engine and metrics from deps.
func New(ctx context.Context, deps Deps) (*App, error) {
	cfg := deps.Cfg
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	reg := deps.Registerer
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	metrics, err := observability.NewCollector(reg)
	if err != nil {
		return nil, fmt.Errorf("register metrics: %w", err)
	}

	opts := []archive.ClientOption{}
	if deps.HTTPClient != nil {
		opts = append(opts, archive.WithHTTPClient(deps.HTTPClient))
	}
	opts = append(opts,
		archive.WithTimeout(cfg.Archive.Timeout),
		archive.WithRateLimit(cfg.Archive.RPS, cfg.Archive.Burst),
		archive.WithRecorder(metrics),
		archive.WithLogger(logger.With("component", "archive")),
	)
	client := archive.NewClient(cfg.Archive.URL, opts...)

	snapshots, err := cache.New(cfg.SnapshotCacheSize, metrics)
	if err != nil {
		return nil, err
	}

	svc := dashboard.NewService(client, snapshots,
		dashboard.WithMaxCurves(cfg.MaxCurves),
		dashboard.WithLogger(logger.With("component", "dashboard")),
	)
	svc.OnSnapshot(metrics.ObserveSnapshot)

	eng, err := engine.Open(ctx, logger.With("component", "engine"))
	if err != nil {
		return nil, fmt.Errorf("open snapshot engine: %w", err)
	}

	return &App{
		Archive:   client,
		Cache:     snapshots,
		Dashboard: svc,
		Engine:    eng,
		Metrics:   metrics,
	}, nil
}

// Close releases the explorer database.
func (a *App) Close() error {
	if a == nil || a.Engine == nil {
		return nil
	}
	return a.Engine.Close()
}
