package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOutputFormat(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want OutputFormat
	}{
		{"ip only", "ip_only", FormatIPOnly},
		{"ip and body", "ip_and_body", FormatIPAndBody},
		{"unknown falls back to ip_and_body", "garbage", FormatIPAndBody},
		{"empty falls back to ip_and_body", "", FormatIPAndBody},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseOutputFormat(tt.raw))
		})
	}
}

func TestResolveConfigPath(t *testing.T) {
	tests := []struct {
		name     string
		flag     string
		envValue string
		want     string
	}{
		{"flag takes precedence", "/path/from/flag", "/path/from/env", "/path/from/flag"},
		{"env when no flag", "", "/path/from/env", "/path/from/env"},
		{"empty when neither", "", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("STORMGRAB_CONFIG", tt.envValue)
			assert.Equal(t, tt.want, ResolveConfigPath(tt.flag))
		})
	}
}

func TestLoadDefault(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 80, cfg.Scan.Port)
	assert.Equal(t, 5, cfg.Scan.ConnectTimeoutSec)
	assert.Equal(t, 5, cfg.Scan.ReadTimeoutSec)
	assert.Equal(t, 10000, cfg.Scan.MaxConcurrency)
	assert.Equal(t, 1048576, cfg.Scan.MaxReadSize)
	assert.Equal(t, FormatIPAndBody, cfg.Scan.Format)
	assert.False(t, cfg.Search.Enabled)
	assert.Equal(t, "INFO", cfg.Logging.Level)
	assert.Equal(t, "", cfg.Store.Path)
	assert.Equal(t, "", cfg.API.Addr)
}

func TestLoadFromFile(t *testing.T) {
	content := `
scan:
  port: 443
  connect_timeout: 2
  read_timeout: 6
  max_concurrency: 4096
  max_read_size: 1024
  format: "ip_only"

search:
  enabled: true
  pattern: "SSH-2\\.0"
  case_insensitive: true

logging:
  level: "DEBUG"
  structured: true
  structured_format: "keyvalue"

store:
  path: "/tmp/stormgrab.db"

api:
  addr: "127.0.0.1:9090"
`
	dir := t.TempDir()
	path := filepath.Join(dir, "test-config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 443, cfg.Scan.Port)
	assert.Equal(t, 2, cfg.Scan.ConnectTimeoutSec)
	assert.Equal(t, 6, cfg.Scan.ReadTimeoutSec)
	assert.Equal(t, 4096, cfg.Scan.MaxConcurrency)
	assert.Equal(t, 1024, cfg.Scan.MaxReadSize)
	assert.Equal(t, FormatIPOnly, cfg.Scan.Format)
	assert.True(t, cfg.Search.Enabled)
	assert.Equal(t, "SSH-2\\.0", cfg.Search.Pattern)
	assert.True(t, cfg.Search.CaseInsensitive)
	assert.Equal(t, "DEBUG", cfg.Logging.Level)
	assert.True(t, cfg.Logging.Structured)
	assert.Equal(t, "keyvalue", cfg.Logging.StructuredFormat)
	assert.Equal(t, "/tmp/stormgrab.db", cfg.Store.Path)
	assert.Equal(t, "127.0.0.1:9090", cfg.API.Addr)
}

func TestLoadInvalidPath(t *testing.T) {
	_, err := Load("/nonexistent/path/to/config.yaml")
	assert.Error(t, err)
}

func TestLoadInvalidYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("scan:\n  port: [invalid"), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestNormalizeInvalidPort(t *testing.T) {
	content := "scan:\n  port: 0\n"
	dir := t.TempDir()
	path := filepath.Join(dir, "test.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestNormalizeInvalidConcurrency(t *testing.T) {
	content := "scan:\n  max_concurrency: -1\n"
	dir := t.TempDir()
	path := filepath.Join(dir, "test.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestNormalizeSearchRequiresPattern(t *testing.T) {
	content := "search:\n  enabled: true\n"
	dir := t.TempDir()
	path := filepath.Join(dir, "test.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestNormalizeRejectsBadPattern(t *testing.T) {
	content := "search:\n  enabled: true\n  pattern: \"(unclosed\"\n"
	dir := t.TempDir()
	path := filepath.Join(dir, "test.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestNormalizeLoadsRequestFile(t *testing.T) {
	dir := t.TempDir()
	reqPath := filepath.Join(dir, "req.txt")
	require.NoError(t, os.WriteFile(reqPath, []byte("HEAD / HTTP/1.0\r\n\r\n"), 0644))

	content := "scan:\n  request_file: \"" + reqPath + "\"\n"
	path := filepath.Join(dir, "test.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "HEAD / HTTP/1.0\r\n\r\n", string(cfg.Scan.SendTemplate))
}

func TestNormalizeMissingRequestFile(t *testing.T) {
	content := "scan:\n  request_file: \"/nonexistent/request.txt\"\n"
	dir := t.TempDir()
	path := filepath.Join(dir, "test.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("STORMGRAB_SCAN_PORT", "2222")
	t.Setenv("STORMGRAB_SCAN_MAX_CONCURRENCY", "2048")
	t.Setenv("STORMGRAB_LOGGING_LEVEL", "debug")
	t.Setenv("STORMGRAB_API_ADDR", "127.0.0.1:8081")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 2222, cfg.Scan.Port)
	assert.Equal(t, 2048, cfg.Scan.MaxConcurrency)
	assert.Equal(t, "DEBUG", cfg.Logging.Level)
	assert.Equal(t, "127.0.0.1:8081", cfg.API.Addr)
}
