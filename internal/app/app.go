// Package app provides the main application struct for centralized dependency
// management and lifecycle control of the catalog addon server.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"indcat/config"
	"indcat/internal/catalog"
	"indcat/internal/languages"
	"indcat/internal/observability"
	"indcat/internal/server"
	"indcat/internal/store"
	"indcat/internal/tmdb"
)

// App represents the application with all its dependencies.
// The caller must call Shutdown to release resources.
type App struct {
	config *config.Config
	store  store.Store
	server *server.Server

	shutdownMu sync.Mutex
	shutdown   bool
}

// New creates an App with all dependencies initialized.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	registry, err := languages.Load(cfg.Catalog.LanguagesFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load language registry: %w", err)
	}

	st, err := store.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cache store: %w", err)
	}

	var hooks observability.Hooks
	if cfg.Metrics.Enabled {
		hooks = observability.NewPrometheusHooks()
		slog.Info("prometheus metrics enabled", "endpoint", cfg.Metrics.Endpoint)
	} else {
		hooks = observability.NopHooks{}
		slog.Info("prometheus metrics disabled")
	}

	source := tmdb.New(cfg.TMDB.BaseURL, cfg.TMDB.Region)
	pipeline := catalog.NewPipeline(source, catalog.NewBuilder(cfg.TMDB.ImageBaseURL), cfg.Catalog.PageCeiling, hooks)
	service := catalog.NewService(st, pipeline, catalog.ServiceConfig{
		PageSize:             cfg.Catalog.PageSize,
		EmptyRetryInterval:   cfg.Catalog.EmptyRetryInterval,
		MaxConcurrentFetches: cfg.Catalog.MaxConcurrentFetches,
	}, hooks)

	app := &App{
		config: cfg,
		store:  st,
		server: server.New(service, registry, &server.Config{
			MetricsEnabled:  cfg.Metrics.Enabled,
			MetricsEndpoint: cfg.Metrics.Endpoint,
			BodySizeLimit:   cfg.Server.BodySizeLimit,
		}),
	}

	app.logStartupInfo()

	return app, nil
}

// Start starts the HTTP server on the given address.
// This is a blocking call that returns when the server stops.
func (a *App) Start(addr string) error {
	if a.server == nil {
		return fmt.Errorf("server is not initialized")
	}
	slog.Info("starting server", "address", addr)
	if err := a.server.Start(addr); err != nil {
		if errors.Is(err, http.ErrServerClosed) {
			slog.Info("server stopped gracefully")
			return nil
		}
		return fmt.Errorf("server failed to start: %w", err)
	}
	return nil
}

// Shutdown gracefully tears down app components: first the HTTP server, so no
// new reads arrive, then the cache store. In-flight populate runs are
// detached goroutines; their final store write may be lost on exit, which
// only costs a repopulation on the next start.
//
// Shutdown is idempotent; after the first call, subsequent calls are no-ops.
func (a *App) Shutdown(ctx context.Context) error {
	a.shutdownMu.Lock()
	if a.shutdown {
		a.shutdownMu.Unlock()
		return nil
	}
	a.shutdown = true
	a.shutdownMu.Unlock()

	slog.Info("shutting down application...")

	var errs []error

	if a.server != nil {
		if err := a.server.Shutdown(ctx); err != nil {
			slog.Error("server shutdown error", "error", err)
			errs = append(errs, fmt.Errorf("server shutdown: %w", err))
		}
	}

	if a.store != nil {
		if err := a.store.Close(); err != nil {
			slog.Error("store close error", "error", err)
			errs = append(errs, fmt.Errorf("store close: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("shutdown errors: %w", errors.Join(errs...))
	}

	slog.Info("application shutdown complete")
	return nil
}

// logStartupInfo logs the effective configuration on startup.
func (a *App) logStartupInfo() {
	cfg := a.config

	slog.Info("cache store configured", "backend", cfg.Cache.Backend)
	slog.Info("catalog policy configured",
		"page_size", cfg.Catalog.PageSize,
		"page_ceiling", cfg.Catalog.PageCeiling,
		"empty_retry_interval", cfg.Catalog.EmptyRetryInterval,
		"max_concurrent_fetches", cfg.Catalog.MaxConcurrentFetches,
	)
	slog.Info("metadata source configured", "region", cfg.TMDB.Region)
}
