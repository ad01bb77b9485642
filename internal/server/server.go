// Package server assembles the HTTP router and runs the dashboard server.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"

	"exodash/internal/api"
	"exodash/internal/app"
	"exodash/internal/config"
	"exodash/internal/middleware"
	"exodash/internal/observability"
	"exodash/internal/ui"
)

const shutdownTimeout = 10 * time.Second

// NewRouter mounts the UI under /ui, the JSON API under /v1, the API docs
// and /metrics. The rate limiter's sweeper stops when ctx is done.
func NewRouter(ctx context.Context, cfg *config.Config, a *app.App, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestID)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(a.Metrics.Middleware)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/ui", http.StatusFound)
	})
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", a.Metrics.Handler())
	r.Get("/openapi.json", api.OpenAPIHandler)
	r.Get("/docs", api.DocsHandler)

	limiter := middleware.RateLimiter(ctx, middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		Burst:             cfg.RateLimitBurst,
	})

	uiHandler := ui.NewHandler(a.Dashboard, a.Engine, cfg.DefaultLimit, cfg.IsProduction(), logger)
	r.Route("/ui", func(r chi.Router) {
		r.Use(limiter)
		ui.MountRoutes(r, uiHandler)
	})

	apiHandler := api.NewHandler(a.Dashboard, a.Engine, cfg.DefaultLimit, logger)
	r.Route("/v1", func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: cfg.CORSAllowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type", middleware.RequestIDHeader},
			ExposedHeaders: []string{middleware.RequestIDHeader, "Retry-After"},
			MaxAge:         300,
		}))
		r.Use(limiter)
		apiHandler.Routes(r)
	})

	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func Run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	logger = slog.New(middleware.NewRequestIDHandler(logger.Handler()))
	for _, w := range cfg.Warnings {
		logger.Warn(w)
	}

	shutdownTracing, err := observability.InitTracing(ctx, cfg.TracingSettings(), logger)
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	defer observability.ShutdownWithTimeout(context.WithoutCancel(ctx), shutdownTracing, logger)

	a, err := app.New(ctx, app.Deps{Cfg: cfg, Logger: logger, Registerer: prometheus.DefaultRegisterer})
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			logger.Warn("close app", "error", err)
		}
	}()

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           NewRouter(ctx, cfg, a, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", "addr", cfg.ListenAddr, "archive", a.Archive.Endpoint())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
