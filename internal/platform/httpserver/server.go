// Package httpserver owns the gin engine and http.Server lifecycle shared by
// both ledger binaries.
package httpserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/finnova-banking-ledger/internal/config"
	"github.com/finnova-banking-ledger/internal/platform/httpserver/middleware"
	"github.com/finnova-banking-ledger/internal/platform/metrics"
	"github.com/gin-gonic/gin"
)

// HealthCheck reports an error when a dependency is unreachable
type HealthCheck func(ctx context.Context) error

// Server handles HTTP requests and manages the listener lifecycle
type Server struct {
	logger          *slog.Logger
	httpServer      *http.Server
	router          *gin.Engine
	shutdownTimeout time.Duration
}

// NewServer builds the engine with the standard middleware chain, /health and
// /metrics. Callers register their routes on Router().
func NewServer(logger *slog.Logger, cfg *config.Config, checks map[string]HealthCheck) *Server {
	if cfg.Application.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(middleware.CorrelationID())
	router.Use(middleware.Recovery(logger))
	router.Use(middleware.Logger(logger))
	router.Use(middleware.Metrics())

	router.GET("/health", healthHandler(checks))
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	return &Server{
		logger: logger,
		router: router,
		httpServer: &http.Server{
			Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
			Handler:      router,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
			IdleTimeout:  cfg.Server.IdleTimeout,
		},
		shutdownTimeout: cfg.Server.ShutdownTimeout,
	}
}

func (s *Server) Router() *gin.Engine {
	return s.router
}

// Start blocks until the listener fails or the server is stopped
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}
	return nil
}

// Stop drains in-flight requests within the configured shutdown timeout
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("stopping HTTP server")

	shutdownCtx, cancel := context.WithTimeout(ctx, s.shutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop HTTP server: %w", err)
	}
	return nil
}

func healthHandler(checks map[string]HealthCheck) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		deps := make(map[string]string, len(checks))
		for name, check := range checks {
			if err := check(ctx); err != nil {
				deps[name] = err.Error()
				status = http.StatusServiceUnavailable
				continue
			}
			deps[name] = "ok"
		}

		state := "ok"
		if status != http.StatusOK {
			state = "degraded"
		}
		c.JSON(status, gin.H{
			"status":       state,
			"dependencies": deps,
			"timestamp":    time.Now().UTC(),
		})
	}
}
