// Command stormgrab is a high-concurrency TCP banner grabber. It reads
// IPv4 addresses from stdin, connects to a fixed port, optionally sends a
// payload, reads a bounded response, optionally matches it against a
// pattern, and emits results to stdout.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/stormgrab/stormgrab/internal/api"
	"github.com/stormgrab/stormgrab/internal/config"
	"github.com/stormgrab/stormgrab/internal/logging"
	"github.com/stormgrab/stormgrab/internal/netlimit"
	"github.com/stormgrab/stormgrab/internal/scanner"
	"github.com/stormgrab/stormgrab/internal/store"
)

// Exit codes follow the error-handling taxonomy (spec §7): 1 for generic
// startup failure, 2 for a configuration value that is syntactically
// valid but semantically wrong (a search pattern that fails to compile).
const (
	exitOK            = 0
	exitStartupError  = 1
	exitBadConfigValue = 2
)

func main() {
	os.Exit(run())
}

// cliFlags holds parsed command-line flag values. Every flag overrides
// its config.yaml/environment-variable counterpart (spec §4.H); a flag
// left at its zero value never overrides a configured one.
type cliFlags struct {
	configPath  string
	port        int
	concurrency int
	connectSec  int
	readSec     int
	maxRead     int
	requestFile string
	pattern     string
	caseInsens  bool
	extended    bool
	format      string
	verbosity   int
	fdLimit     int
	storePath   string
	apiAddr     string
}

func parseFlags() cliFlags {
	var f cliFlags
	flag.StringVar(&f.configPath, "config", "", "Path to YAML config file")
	flag.IntVar(&f.port, "p", 0, "Destination TCP port (shorthand)")
	flag.IntVar(&f.port, "port", 0, "Destination TCP port")
	flag.IntVar(&f.concurrency, "c", 0, "Maximum concurrent connections (shorthand)")
	flag.IntVar(&f.concurrency, "concurrent", 0, "Maximum concurrent connections")
	flag.IntVar(&f.connectSec, "t", 0, "Connect timeout in seconds (shorthand)")
	flag.IntVar(&f.connectSec, "connect-timeout", 0, "Connect timeout in seconds")
	flag.IntVar(&f.readSec, "r", 0, "Read timeout in seconds (shorthand)")
	flag.IntVar(&f.readSec, "read-timeout", 0, "Read timeout in seconds")
	flag.IntVar(&f.maxRead, "m", 0, "Maximum bytes read per connection (shorthand)")
	flag.IntVar(&f.maxRead, "max-read-size", 0, "Maximum bytes read per connection")
	flag.StringVar(&f.requestFile, "d", "", "Path to a request template to send after connect (shorthand)")
	flag.StringVar(&f.requestFile, "request", "", "Path to a request template to send after connect")
	flag.StringVar(&f.pattern, "s", "", "Regular expression the response must match (shorthand)")
	flag.StringVar(&f.pattern, "search-string", "", "Regular expression the response must match")
	flag.BoolVar(&f.caseInsens, "i", false, "Case-insensitive pattern matching")
	flag.BoolVar(&f.extended, "x", false, "Extended regular expression syntax (accepted for compatibility; no effect, the pattern is always RE2)")
	flag.StringVar(&f.format, "f", "", "Output format: ip_and_body or ip_only (shorthand)")
	flag.StringVar(&f.format, "format", "", "Output format: ip_and_body or ip_only")
	flag.IntVar(&f.verbosity, "v", 0, "Verbosity 0..5 (higher is chattier)")
	flag.IntVar(&f.verbosity, "verbosity", 0, "Verbosity 0..5 (higher is chattier)")
	flag.IntVar(&f.fdLimit, "fd-limit", 0, "Raise RLIMIT_NOFILE to at least this value at startup")
	flag.StringVar(&f.storePath, "store", "", "Path to an optional SQLite database recording matches")
	flag.StringVar(&f.apiAddr, "api-addr", "", "Bind address for the optional read-only management API")
	flag.Parse()
	return f
}

// applyCLIOverrides applies command-line overrides to the config. Flags
// are the highest-priority source; a zero/empty flag value leaves the
// file/environment-sourced value untouched.
func applyCLIOverrides(cfg *config.Config, f cliFlags) {
	if f.port != 0 {
		cfg.Scan.Port = f.port
	}
	if f.concurrency != 0 {
		cfg.Scan.MaxConcurrency = f.concurrency
	}
	if f.connectSec != 0 {
		cfg.Scan.ConnectTimeoutSec = f.connectSec
	}
	if f.readSec != 0 {
		cfg.Scan.ReadTimeoutSec = f.readSec
	}
	if f.maxRead != 0 {
		cfg.Scan.MaxReadSize = f.maxRead
	}
	if f.requestFile != "" {
		cfg.Scan.RequestFile = f.requestFile
	}
	if f.pattern != "" {
		cfg.Search.Enabled = true
		cfg.Search.Pattern = f.pattern
	}
	if f.caseInsens {
		cfg.Search.CaseInsensitive = true
	}
	if f.extended {
		cfg.Search.Extended = true
	}
	if f.format != "" {
		cfg.Scan.FormatRaw = f.format
		cfg.Scan.Format = config.ParseOutputFormat(f.format)
	}
	if f.verbosity != 0 {
		cfg.Logging.Level = logging.LevelForVerbosity(f.verbosity)
	}
	if f.fdLimit != 0 {
		cfg.Startup.FDLimit = f.fdLimit
	}
	if f.storePath != "" {
		cfg.Store.Path = f.storePath
	}
	if f.apiAddr != "" {
		cfg.API.Addr = f.apiAddr
	}
}

func run() int {
	f := parseFlags()

	cfg, err := config.Load(config.ResolveConfigPath(f.configPath))
	if err != nil {
		fmt.Fprintf(os.Stderr, "stormgrab: config: %v\n", err)
		if errors.Is(err, config.ErrBadSearchPattern) {
			return exitBadConfigValue
		}
		return exitStartupError
	}
	applyCLIOverrides(cfg, f)

	// Flag overrides can reintroduce a bad search pattern that the file
	// load never saw; re-validate rather than let it fail mid-scan.
	if cfg.Search.Enabled {
		if _, matchErr := scanner.NewMatcher(cfg.Search); matchErr != nil {
			if errors.Is(matchErr, config.ErrBadSearchPattern) {
				fmt.Fprintf(os.Stderr, "stormgrab: %v\n", matchErr)
				return exitBadConfigValue
			}
			fmt.Fprintf(os.Stderr, "stormgrab: %v\n", matchErr)
			return exitStartupError
		}
	}

	cfg.RunID = uuid.New().String()

	logger := logging.Configure(logging.Config{
		Level:            cfg.Logging.Level,
		Structured:       cfg.Logging.Structured,
		StructuredFormat: cfg.Logging.StructuredFormat,
		IncludePID:       cfg.Logging.IncludePID,
		RunID:            cfg.RunID,
	})

	if cfg.Startup.FDLimit > 0 {
		cur, max, raiseErr := netlimit.Raise(cfg.Startup.FDLimit)
		if raiseErr != nil {
			logger.Error("failed to raise file descriptor limit", "want", cfg.Startup.FDLimit, "err", raiseErr)
			return exitStartupError
		}
		logger.Info("file descriptor limit", "current", cur, "max", max)
	}

	matcher, err := scanner.NewMatcher(cfg.Search)
	if err != nil {
		logger.Error("invalid search configuration", "err", err)
		return exitBadConfigValue
	}

	var st *store.Store
	var scanStore scanner.Store
	if cfg.Store.Path != "" {
		st, err = store.Open(cfg.Store.Path)
		if err != nil {
			logger.Error("failed to open store", "path", cfg.Store.Path, "err", err)
			return exitStartupError
		}
		defer st.Close()
		scanStore = st
	}

	emitter := scanner.NewEmitter(os.Stdout, cfg.Scan.Format, scanStore, cfg.RunID, logger)
	runner := scanner.NewRunner(cfg, logger, matcher, emitter)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logger.Info("stormgrab starting",
		"run_id", cfg.RunID,
		"port", cfg.Scan.Port,
		"max_concurrency", cfg.Scan.MaxConcurrency,
		"search_enabled", cfg.Search.Enabled,
	)

	var apiSrv *api.Server
	if cfg.API.Addr != "" {
		// Passed as nil explicitly, not as a typed-nil *store.Store, so the
		// handler's "store == nil" check behaves correctly when no store
		// was configured.
		if st != nil {
			apiSrv = api.New(cfg, logger, cfg.RunID, runner, st)
		} else {
			apiSrv = api.New(cfg, logger, cfg.RunID, runner, nil)
		}
		logger.Info("management API starting", "addr", apiSrv.Addr())
		go func() {
			if serveErr := apiSrv.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
				logger.Error("management API error", "err", serveErr)
			}
		}()
	}

	reporter := scanner.NewReporter(os.Stderr, runner.Counters(), cfg.Scan.MaxConcurrency, reporterPattern(cfg))
	go reporter.Run(ctx, runner.InFlight)

	scanErr := runner.Run(ctx, os.Stdin)

	if apiSrv != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		_ = apiSrv.Shutdown(shutdownCtx)
		shutdownCancel()
	}

	final := runner.Counters().Snapshot()
	if scanErr == nil {
		logger.Info("Scan completed")
	}
	logger.Info("stormgrab finished",
		"initiated", final.Initiated,
		"connected", final.Connected,
		"completed", final.Completed,
		"matched", final.Matched,
	)

	if scanErr != nil {
		logger.Error("input feed error", "err", scanErr)
		return exitStartupError
	}
	return exitOK
}

func reporterPattern(cfg *config.Config) string {
	if cfg.Search.Enabled {
		return cfg.Search.Pattern
	}
	return ""
}
