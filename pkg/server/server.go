// Package server hosts the HTTP surface for serve mode: health, status,
// manual report triggers and scheduler introspection.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"costwatch/pkg/config"
	"costwatch/pkg/handlers"
	"costwatch/pkg/logger"
	"costwatch/pkg/middleware"
)

// Server constants
const (
	DefaultReadTimeout  = 30 * time.Second
	DefaultWriteTimeout = 30 * time.Second
	DefaultIdleTimeout  = 120 * time.Second
	DefaultVersion      = "1.0.0"
	ServiceName         = "costwatch"
)

// HTTPServer represents the HTTP server component
type HTTPServer struct {
	server     *http.Server
	engine     *gin.Engine
	config     *config.Config
	handlerSvc *handlers.HandlerService
}

// NewHTTPServer creates a new HTTP server instance
func NewHTTPServer(cfg *config.Config, handlerSvc *handlers.HandlerService) *HTTPServer {
	if !cfg.App.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.GinZapLogger(),
		middleware.ErrorHandler(),
		cors.Default(),
	)

	s := &HTTPServer{
		engine:     engine,
		config:     cfg,
		handlerSvc: handlerSvc,
	}
	s.setupRoutes()

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	s.server = &http.Server{
		Addr:         addr,
		Handler:      engine,
		ReadTimeout:  DefaultReadTimeout,
		WriteTimeout: DefaultWriteTimeout,
		IdleTimeout:  DefaultIdleTimeout,
	}

	logger.Info("HTTP server initialized", zap.String("listen_addr", addr))
	return s
}

// setupRoutes configures all HTTP routes
func (s *HTTPServer) setupRoutes() {
	s.engine.GET("/health", s.handleHealth)

	api := s.engine.Group("/api/v1")
	{
		api.GET("/status", s.handlerSvc.GetStatus)
		api.GET("/config", s.handlerSvc.GetAppConfig)
		api.POST("/reports/run", s.handlerSvc.RunReports)
		api.GET("/scheduler/status", s.handlerSvc.GetSchedulerStatus)
		api.GET("/scheduler/jobs", s.handlerSvc.GetScheduledJobs)
		api.POST("/notifications/slack/test", s.handlerSvc.TestNotification)
	}

	logger.Info("HTTP routes configured")
}

// Start starts the HTTP server
func (s *HTTPServer) Start() error {
	logger.Info("Starting HTTP server", zap.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("HTTP server failed: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the HTTP server
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	logger.Info("Shutting down HTTP server")

	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("HTTP server shutdown failed: %w", err)
	}

	return nil
}

// handleHealth handles health check requests
func (s *HTTPServer) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
		"service":   ServiceName,
		"version":   DefaultVersion,
	})
}
