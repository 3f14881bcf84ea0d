// Package http provides the reader's status server: health, readiness,
// reader status, and Prometheus metrics.
package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/allisson/badgereader/internal/errors"
	"github.com/allisson/badgereader/internal/httputil"
	"github.com/allisson/badgereader/internal/metrics"
	scanDomain "github.com/allisson/badgereader/internal/scan/domain"
)

// StatusSource provides reader state snapshots.
type StatusSource interface {
	Status() scanDomain.ReaderStatus
}

// StatusServerConfig holds status server configuration.
type StatusServerConfig struct {
	Host             string
	Port             int
	MetricsNamespace string
	CORSEnabled      bool
	CORSAllowOrigins string
}

// StatusServer is a read-only HTTP server reporting on the reader.
type StatusServer struct {
	server *http.Server
	logger *slog.Logger
	source StatusSource
}

// NewStatusServer creates a StatusServer. metricsProvider may be nil, in which
// case /metrics is not served.
func NewStatusServer(
	config StatusServerConfig,
	source StatusSource,
	metricsProvider *metrics.Provider,
	logger *slog.Logger,
) *StatusServer {
	s := &StatusServer{
		logger: logger,
		source: source,
	}

	router := gin.New()
	router.Use(gin.CustomRecovery(func(c *gin.Context, recovered any) {
		httputil.HandleErrorGin(c, fmt.Errorf("panic: %v", recovered), logger)
	}))
	router.Use(requestid.New(requestid.WithGenerator(func() string {
		return uuid.Must(uuid.NewV7()).String()
	})))
	router.Use(CustomLoggerMiddleware(logger))
	if corsMiddleware := createCORSMiddleware(config.CORSEnabled, config.CORSAllowOrigins, logger); corsMiddleware != nil {
		router.Use(corsMiddleware)
	}
	if metricsProvider != nil {
		router.Use(metrics.HTTPMetricsMiddleware(metricsProvider.MeterProvider(), config.MetricsNamespace))
		router.GET("/metrics", gin.WrapH(metricsProvider.Handler()))
	}

	router.GET("/health", s.healthHandler)
	router.GET("/ready", s.readinessHandler)
	router.GET("/status", s.statusHandler)
	router.NoRoute(func(c *gin.Context) {
		httputil.HandleErrorGin(c, errors.Wrap(errors.ErrNotFound, c.Request.URL.Path), nil)
	})

	s.server = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", config.Host, config.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// GetHandler returns the http.Handler for testing purposes.
func (s *StatusServer) GetHandler() http.Handler {
	return s.server.Handler
}

// Start serves until Shutdown is called.
func (s *StatusServer) Start(ctx context.Context) error {
	s.logger.Info("starting status server", slog.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start status server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the status server.
func (s *StatusServer) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down status server")
	return s.server.Shutdown(ctx)
}
