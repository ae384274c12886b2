package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/nextup-labs/nxt-ledger/internal/api/middleware"
	"github.com/nextup-labs/nxt-ledger/internal/api/rest"
	"github.com/nextup-labs/nxt-ledger/internal/api/shared/executor"
	"github.com/nextup-labs/nxt-ledger/internal/logger"
	"github.com/nextup-labs/nxt-ledger/internal/ratelimit"
	"github.com/nextup-labs/nxt-ledger/internal/registry"
)

// Config holds the server configuration
type Config struct {
	Debug        bool
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	CORSOrigins  []string
	Auth         middleware.AuthConfig
	// MetricsEnabled serves Prometheus metrics on GET /metrics
	MetricsEnabled bool
	// Limiter throttles mutating routes per caller; nil disables it
	Limiter ratelimit.Limiter
	// Denylist bars callers from mutating routes; nil disables it
	Denylist registry.Denylist
}

// Server wraps the HTTP server
type Server struct {
	config     Config
	executor   executor.Executor
	httpServer *http.Server
}

// New creates a new API server
func New(cfg Config, exec executor.Executor) *Server {
	s := &Server{
		config:   cfg,
		executor: exec,
	}
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      s.Router(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
	return s
}

// Router builds the gin engine with middleware and routes
func (s *Server) Router() *gin.Engine {
	if s.config.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	router.Use(middleware.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger())
	router.Use(middleware.SetupCORS(s.config.CORSOrigins))

	if s.config.MetricsEnabled {
		router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	rest.SetupRoutes(router, rest.NewHandler(s.executor), s.config.Auth, s.config.Limiter, s.config.Denylist)

	return router
}

// Start initializes and starts the HTTP server
func (s *Server) Start() error {
	logger.Info("Starting API server",
		zap.String("address", s.httpServer.Addr),
	)

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	logger.Info("Shutting down API server")

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}

	return nil
}
