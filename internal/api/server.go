// Package api provides stormgrab's optional, read-only management REST
// API: process health, live scan counters, and a Swagger UI. It is off
// unless api.addr is set, binds exactly that address (no host is
// substituted), and never exposes a control surface over the running
// scan (spec §4.K).
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/stormgrab/stormgrab/internal/api/handlers"
	"github.com/stormgrab/stormgrab/internal/api/middleware"
	"github.com/stormgrab/stormgrab/internal/config"
)

// Server is the management REST API server.
type Server struct {
	logger     *slog.Logger
	engine     *gin.Engine
	httpServer *http.Server
}

// New builds a Server bound to cfg.API.Addr. scan and store back the
// stats/health handlers directly; store may be nil.
func New(cfg *config.Config, logger *slog.Logger, runID string, scan handlers.RunnerStats, store handlers.HealthChecker) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(middleware.SlogRequestLogger(logger))

	h := handlers.New(cfg, logger, runID, scan, store)
	RegisterRoutes(engine, h)

	httpServer := &http.Server{
		Addr:              cfg.API.Addr,
		Handler:           engine,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return &Server{logger: logger, engine: engine, httpServer: httpServer}
}

// Addr returns the configured bind address.
func (s *Server) Addr() string {
	if s.httpServer == nil {
		return ""
	}
	return s.httpServer.Addr
}

// Engine exposes the underlying gin.Engine, e.g. for tests.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// ListenAndServe blocks serving the API until the listener errors or is shut down.
func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the API server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
