// Package config provides configuration loading and validation for stormgrab.
//
// Configuration is loaded with the following priority (highest to lowest):
//  1. Command-line flags (not handled here, see cmd/stormgrab/main.go)
//  2. Environment variables (STORMGRAB_* prefix)
//  3. YAML config file (if specified with --config)
//  4. Hardcoded defaults
//
// Environment variables are mapped from STORMGRAB_CATEGORY_SETTING format,
// e.g., STORMGRAB_SCAN_PORT maps to scan.port in YAML.
//
// All configuration is validated during Load() to ensure correctness early.
package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/spf13/viper"

	"github.com/stormgrab/stormgrab/internal/helpers"
)

// ErrBadSearchPattern marks a regex compile failure in search.pattern, so
// callers can distinguish it from other configuration errors (spec §7:
// a bad pattern exits with its own status code, not a generic config error).
var ErrBadSearchPattern = errors.New("invalid search pattern")

// initConfig sets up the config loader with defaults, env binding, and config file.
func initConfig(configPath string) (*viper.Viper, error) {
	v := viper.New()

	setDefaults(v)

	// Environment variable binding.
	// Uses STORMGRAB_ prefix: STORMGRAB_SCAN_PORT -> scan.port
	v.SetEnvPrefix("STORMGRAB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	return v, nil
}

// setDefaults configures all default values.
func setDefaults(v *viper.Viper) {
	// Scan defaults
	v.SetDefault("scan.port", 80)
	v.SetDefault("scan.connect_timeout", 5)
	v.SetDefault("scan.read_timeout", 5)
	v.SetDefault("scan.max_concurrency", 10000)
	v.SetDefault("scan.max_read_size", 1048576)
	v.SetDefault("scan.request_file", "")
	v.SetDefault("scan.format", "ip_and_body")

	// Search defaults
	v.SetDefault("search.enabled", false)
	v.SetDefault("search.pattern", "")
	v.SetDefault("search.case_insensitive", false)
	v.SetDefault("search.extended", false)

	// Logging defaults
	v.SetDefault("logging.level", "INFO")
	v.SetDefault("logging.structured", false)
	v.SetDefault("logging.structured_format", "json")
	v.SetDefault("logging.include_pid", false)

	// Store defaults (disabled unless a path is given)
	v.SetDefault("store.path", "")

	// Management API defaults (disabled unless an addr is given)
	v.SetDefault("api.addr", "")

	// Startup defaults. Matches the original tool's unconditional
	// ulimit(4, 1000000) at startup (spec §6).
	v.SetDefault("startup.fd_limit", 1000000)
}

// loadFromSource loads configuration from file and environment.
func loadFromSource(configPath string) (*Config, error) {
	v, err := initConfig(configPath)
	if err != nil {
		return nil, err
	}

	cfg := &Config{}

	loadScanConfig(v, cfg)
	loadSearchConfig(v, cfg)
	loadLoggingConfig(v, cfg)
	loadStoreConfig(v, cfg)
	loadAPIConfig(v, cfg)
	loadStartupConfig(v, cfg)

	if err := normalizeConfig(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func loadScanConfig(v *viper.Viper, cfg *Config) {
	cfg.Scan.Port = v.GetInt("scan.port")
	cfg.Scan.ConnectTimeoutSec = v.GetInt("scan.connect_timeout")
	cfg.Scan.ReadTimeoutSec = v.GetInt("scan.read_timeout")
	cfg.Scan.MaxConcurrency = v.GetInt("scan.max_concurrency")
	cfg.Scan.MaxReadSize = v.GetInt("scan.max_read_size")
	cfg.Scan.RequestFile = v.GetString("scan.request_file")
	cfg.Scan.FormatRaw = v.GetString("scan.format")
	cfg.Scan.Format = ParseOutputFormat(cfg.Scan.FormatRaw)
}

func loadSearchConfig(v *viper.Viper, cfg *Config) {
	cfg.Search.Enabled = v.GetBool("search.enabled")
	cfg.Search.Pattern = v.GetString("search.pattern")
	cfg.Search.CaseInsensitive = v.GetBool("search.case_insensitive")
	cfg.Search.Extended = v.GetBool("search.extended")
}

func loadLoggingConfig(v *viper.Viper, cfg *Config) {
	cfg.Logging.Level = strings.ToUpper(v.GetString("logging.level"))
	cfg.Logging.Structured = v.GetBool("logging.structured")
	cfg.Logging.StructuredFormat = v.GetString("logging.structured_format")
	cfg.Logging.IncludePID = v.GetBool("logging.include_pid")
}

func loadStoreConfig(v *viper.Viper, cfg *Config) {
	cfg.Store.Path = v.GetString("store.path")
}

func loadAPIConfig(v *viper.Viper, cfg *Config) {
	cfg.API.Addr = v.GetString("api.addr")
}

func loadStartupConfig(v *viper.Viper, cfg *Config) {
	cfg.Startup.FDLimit = v.GetInt("startup.fd_limit")
}

// normalizeConfig validates and normalizes the configuration. Loading a
// syntactically valid but semantically impossible config (bad port, a
// pattern that doesn't compile) fails here rather than surfacing as a
// confusing runtime error once the scan is already underway.
func normalizeConfig(cfg *Config) error {
	// A TCP port is a uint16 wire value; clamp-then-compare catches
	// anything outside 0..65535 in one step instead of a second bounds
	// check duplicating what the clamp already computed.
	if cfg.Scan.Port <= 0 || int(helpers.ClampIntToUint16(cfg.Scan.Port)) != cfg.Scan.Port {
		return errors.New("scan.port must be 1..65535")
	}
	if cfg.Scan.ConnectTimeoutSec <= 0 {
		return errors.New("scan.connect_timeout must be positive")
	}
	if cfg.Scan.ReadTimeoutSec <= 0 {
		return errors.New("scan.read_timeout must be positive")
	}
	if cfg.Scan.MaxConcurrency <= 0 {
		return errors.New("scan.max_concurrency must be positive")
	}
	if cfg.Scan.MaxReadSize <= 0 {
		return errors.New("scan.max_read_size must be positive")
	}
	// A negative or absurdly large fd_limit can only come from a
	// miswritten config/env value; clamp it into the range netlimit's
	// rlimit call can sanely accept rather than pass garbage to the
	// syscall.
	cfg.Startup.FDLimit = int(helpers.ClampIntToUint32(cfg.Startup.FDLimit))

	if cfg.Scan.RequestFile != "" {
		body, err := os.ReadFile(cfg.Scan.RequestFile)
		if err != nil {
			return fmt.Errorf("scan.request_file: %w", err)
		}
		cfg.Scan.SendTemplate = body
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "INFO"
	}
	if cfg.Logging.StructuredFormat == "" {
		cfg.Logging.StructuredFormat = "json"
	}

	// A pattern that fails to compile is a configuration error, not a
	// runtime one: fail at Load() instead of exit(0)-ing silently once
	// the first connection completes.
	if cfg.Search.Enabled {
		if cfg.Search.Pattern == "" {
			return errors.New("search.pattern must be set when search.enabled is true")
		}
		if _, err := compileSearchPattern(cfg.Search.Pattern, cfg.Search.CaseInsensitive); err != nil {
			return fmt.Errorf("search.pattern: %v: %w", err, ErrBadSearchPattern)
		}
	}

	return nil
}

// compileSearchPattern compiles the response-matching pattern, applying the
// case-insensitivity flag the same way at config time as the matcher does
// at scan time, so a bad pattern is caught before any connection is made.
func compileSearchPattern(pattern string, caseInsensitive bool) (*regexp.Regexp, error) {
	if caseInsensitive {
		pattern = "(?i)" + pattern
	}
	return regexp.Compile(pattern)
}
