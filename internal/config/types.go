// Package config provides configuration loading for stormgrab using Viper.
// Configuration is loaded from an optional YAML file with automatic
// environment variable binding; command-line flags are applied on top as
// the highest-priority source (see cmd/stormgrab/main.go).
//
// Environment variables use the STORMGRAB_ prefix and underscore-separated
// keys:
//   - STORMGRAB_SCAN_PORT -> scan.port
//   - STORMGRAB_SCAN_MAX_CONCURRENCY -> scan.max_concurrency
//   - STORMGRAB_API_ADDR -> api.addr
package config

import "os"

// OutputFormat selects the emitter's line layout (spec §4.F).
type OutputFormat int

const (
	// FormatIPAndBody emits "<ip>:<port> <response>\n\n".
	FormatIPAndBody OutputFormat = iota
	// FormatIPOnly emits "<ip>:<port>\n".
	FormatIPOnly
)

// String returns the flag-compatible spelling of the format.
func (f OutputFormat) String() string {
	if f == FormatIPOnly {
		return "ip_only"
	}
	return "ip_and_body"
}

// ParseOutputFormat maps the -f/--format flag value onto an OutputFormat.
// Only the exact value "ip_only" selects the compact layout; any other
// value (including one that merely contains "ip_only") selects the
// default ip_and_body layout.
func ParseOutputFormat(raw string) OutputFormat {
	if raw == "ip_only" {
		return FormatIPOnly
	}
	return FormatIPAndBody
}

// ScanConfig holds the parameters of the core connection pipeline (spec §3).
type ScanConfig struct {
	Port              int          `yaml:"port"            mapstructure:"port"`
	ConnectTimeoutSec int          `yaml:"connect_timeout" mapstructure:"connect_timeout"`
	ReadTimeoutSec    int          `yaml:"read_timeout"    mapstructure:"read_timeout"`
	MaxConcurrency    int          `yaml:"max_concurrency" mapstructure:"max_concurrency"`
	MaxReadSize       int          `yaml:"max_read_size"   mapstructure:"max_read_size"`
	RequestFile       string       `yaml:"request_file"    mapstructure:"request_file"`
	FormatRaw         string       `yaml:"format"           mapstructure:"format"`
	Format            OutputFormat `yaml:"-"                mapstructure:"-"`
	SendTemplate      []byte       `yaml:"-"                mapstructure:"-"`
}

// SearchConfig holds the optional response-matching parameters (spec §4.E).
type SearchConfig struct {
	Enabled         bool   `yaml:"enabled"          mapstructure:"enabled"`
	Pattern         string `yaml:"pattern"          mapstructure:"pattern"`
	CaseInsensitive bool   `yaml:"case_insensitive" mapstructure:"case_insensitive"`
	Extended        bool   `yaml:"extended"         mapstructure:"extended"`
}

// LoggingConfig contains logging settings (ambient, spec §4.I).
type LoggingConfig struct {
	Level            string `yaml:"level"             mapstructure:"level"`
	Structured       bool   `yaml:"structured"        mapstructure:"structured"`
	StructuredFormat string `yaml:"structured_format" mapstructure:"structured_format"`
	IncludePID       bool   `yaml:"include_pid"       mapstructure:"include_pid"`
}

// StoreConfig controls the optional SQLite persistence side channel (spec §4.J).
type StoreConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// APIConfig controls the optional read-only management API (spec §4.K).
type APIConfig struct {
	Addr string `yaml:"addr" mapstructure:"addr"`
}

// StartupConfig holds one-time startup parameters that are not tied to any one task.
type StartupConfig struct {
	FDLimit int `yaml:"fd_limit" mapstructure:"fd_limit"`
}

// Config is the root, immutable-after-load configuration structure.
// Every scan goroutine holds a read-only pointer to the same Config.
type Config struct {
	Scan    ScanConfig    `yaml:"scan"    mapstructure:"scan"`
	Search  SearchConfig  `yaml:"search"  mapstructure:"search"`
	Logging LoggingConfig `yaml:"logging" mapstructure:"logging"`
	Store   StoreConfig   `yaml:"store"   mapstructure:"store"`
	API     APIConfig     `yaml:"api"     mapstructure:"api"`
	Startup StartupConfig `yaml:"startup" mapstructure:"startup"`

	// RunID identifies this process invocation. Set once by the caller
	// after Load returns; never populated from a config source.
	RunID string `yaml:"-" mapstructure:"-"`
}

// ResolveConfigPath determines the config file path from flag or environment.
func ResolveConfigPath(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if v := os.Getenv("STORMGRAB_CONFIG"); v != "" {
		return v
	}
	return ""
}

// Load loads configuration from an optional YAML file with environment
// variable overrides. This is the main entry point for loading configuration;
// command-line flag overrides are applied by the caller afterward.
//
// Configuration priority (highest to lowest) at this stage:
//  1. Environment variables (STORMGRAB_*)
//  2. Config file values
//  3. Default values
func Load(path string) (*Config, error) {
	return loadFromSource(path)
}
