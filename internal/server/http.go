package server

import (
	"context"
	"log/slog"
	"net/http"
	"path"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"indcat/config"
	"indcat/internal/catalog"
	"indcat/internal/languages"
)

// Server wraps the Echo server
type Server struct {
	echo    *echo.Echo
	handler *Handler
}

// Config holds server configuration options
type Config struct {
	MetricsEnabled  bool   // Whether to expose Prometheus metrics endpoint
	MetricsEndpoint string // HTTP path for metrics endpoint (default: /metrics)
	BodySizeLimit   int64  // Max request body size in bytes (default: 1MB)
}

// New creates a new HTTP server
func New(service *catalog.Service, registry *languages.Registry, cfg *Config) *Server {
	e := echo.New()
	e.HideBanner = true

	handler := NewHandler(service, registry)

	// Global middleware stack (order matters)
	e.Use(requestLogger())
	e.Use(middleware.Recover())
	// The media-center web client calls the addon cross-origin.
	e.Use(middleware.CORS())

	bodySizeLimit := config.DefaultBodySizeLimit
	if cfg != nil && cfg.BodySizeLimit > 0 {
		bodySizeLimit = cfg.BodySizeLimit
	}
	e.Use(middleware.BodyLimit(strconv.FormatInt(bodySizeLimit, 10)))

	// Public routes
	e.GET("/", handler.Home)
	e.GET("/configure", handler.ConfigureForm)
	e.POST("/configure", handler.ConfigureSubmit)
	e.GET("/manifest.json", handler.DefaultManifest)
	e.GET("/health", handler.Health)

	if cfg != nil && cfg.MetricsEnabled {
		metricsPath := "/metrics"
		if cfg.MetricsEndpoint != "" {
			// Normalize path to prevent traversal attacks
			metricsPath = path.Clean(cfg.MetricsEndpoint)
		}
		e.GET(metricsPath, echo.WrapHandler(promhttp.Handler()))
	}

	// Configured addon routes
	e.GET("/:config/manifest.json", handler.Manifest)
	e.GET("/:config/catalog/movie/:id", handler.Catalog)
	e.GET("/:config/refresh", handler.Refresh)

	return &Server{
		echo:    e,
		handler: handler,
	}
}

// requestLogger logs one slog line per request. It logs the route pattern
// rather than the raw URI: the :config path segment encodes the caller's
// API key and must not reach the logs.
func requestLogger() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:    true,
		LogMethod:    true,
		LogRoutePath: true,
		LogLatency:   true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			slog.Info("request",
				"method", v.Method,
				"route", v.RoutePath,
				"status", v.Status,
				"latency", v.Latency,
			)
			return nil
		},
	})
}

// Start starts the HTTP server on the given address
func (s *Server) Start(addr string) error {
	return s.echo.Start(addr)
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// ServeHTTP implements the http.Handler interface, allowing Server to be used with httptest
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.echo.ServeHTTP(w, r)
}
