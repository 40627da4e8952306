// Package handlers_test provides behavior tests for the API handlers package.
package handlers_test

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stormgrab/stormgrab/internal/api/handlers"
	"github.com/stormgrab/stormgrab/internal/api/models"
	"github.com/stormgrab/stormgrab/internal/config"
	"github.com/stormgrab/stormgrab/internal/scanner"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeHealthChecker struct {
	err error
}

func (f fakeHealthChecker) Health() error { return f.err }

func performRequest(r http.Handler, method, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func newRunner(t *testing.T) *scanner.Runner {
	t.Helper()
	cfg := &config.Config{Scan: config.ScanConfig{Port: 80, ConnectTimeoutSec: 1, ReadTimeoutSec: 1, MaxConcurrency: 4, MaxReadSize: 1024}}
	matcher, err := scanner.NewMatcher(config.SearchConfig{})
	require.NoError(t, err)
	emitter := scanner.NewEmitter(new(nopWriter), cfg.Scan.Format, nil, "run-test", slog.Default())
	return scanner.NewRunner(cfg, slog.Default(), matcher, emitter)
}

type nopWriter struct{}

func (nopWriter) Write(p []byte) (int, error) { return len(p), nil }

func TestHealthReturnsOK(t *testing.T) {
	h := handlers.New(&config.Config{}, slog.Default(), "run-1", newRunner(t), nil)
	router := gin.New()
	router.GET("/health", h.Health)

	w := performRequest(router, http.MethodGet, "/health")

	assert.Equal(t, http.StatusOK, w.Code)
	var resp models.StatusResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
}

func TestHealthReportsStoreFailure(t *testing.T) {
	h := handlers.New(&config.Config{}, slog.Default(), "run-1", newRunner(t), fakeHealthChecker{err: errors.New("disk full")})
	router := gin.New()
	router.GET("/health", h.Health)

	w := performRequest(router, http.MethodGet, "/health")

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestStatsReturnsScanCounters(t *testing.T) {
	runner := newRunner(t)
	h := handlers.New(&config.Config{}, slog.Default(), "run-1", runner, nil)
	router := gin.New()
	router.GET("/stats", h.Stats)

	w := performRequest(router, http.MethodGet, "/stats")

	assert.Equal(t, http.StatusOK, w.Code)
	var resp models.ServerStatsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "run-1", resp.RunID)
	assert.NotEmpty(t, resp.Uptime)
	assert.Positive(t, resp.CPU.NumCPU)
}
