// Package handlers implements stormgrab's management API endpoint
// handlers.
//
// @title stormgrab Management API
// @version 1.0
// @description Read-only REST API exposing live scan counters and process health.
//
// @license.name MIT
// @license.url https://opensource.org/licenses/MIT
//
// @host localhost:8080
// @BasePath /api/v1
package handlers

import (
	"log/slog"
	"time"

	"github.com/stormgrab/stormgrab/internal/config"
	"github.com/stormgrab/stormgrab/internal/scanner"
)

// RunnerStats is the subset of *scanner.Runner the API reads from. The
// management API is read-only by design (spec §4.K): handlers only ever
// call the two accessor methods below, never anything that could
// influence an in-progress scan.
type RunnerStats interface {
	Counters() *scanner.Counters
	InFlight() int
}

// HealthChecker is implemented by the optional store so /health can
// report its connectivity too.
type HealthChecker interface {
	Health() error
}

// Handler contains dependencies for API handlers.
type Handler struct {
	cfg       *config.Config
	logger    *slog.Logger
	startTime time.Time
	runID     string

	scan  RunnerStats
	store HealthChecker
}

// New creates a new Handler. store may be nil when persistence is disabled.
func New(cfg *config.Config, logger *slog.Logger, runID string, scan RunnerStats, store HealthChecker) *Handler {
	return &Handler{
		cfg:       cfg,
		logger:    logger,
		startTime: time.Now(),
		runID:     runID,
		scan:      scan,
		store:     store,
	}
}
