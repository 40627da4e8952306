package scanner

import (
	"bytes"
	"fmt"
	"regexp"

	"github.com/stormgrab/stormgrab/internal/config"
)

// Matcher decides whether a completed task's response buffer counts as a
// match. It deliberately exposes two distinct tests instead of one:
// MatchGrowth is a cheap substring probe run in the hot accumulation path
// the instant a buffer crosses max_read_size, while MatchFinal is a single
// compiled-regexp evaluation run once per task at termination. Unifying
// these into one code path would either make the hot path pay for regexp
// evaluation on every full buffer, or make the termination check miss
// patterns a plain substring test can't express — both are regressions.
type Matcher struct {
	enabled bool
	pattern []byte
	re      *regexp.Regexp
}

// NewMatcher compiles the configured search pattern once. Compile failure
// is returned to the caller rather than swallowed, since the original
// tool's silent exit-0-on-bad-pattern is a corrected behavior here.
func NewMatcher(cfg config.SearchConfig) (*Matcher, error) {
	if !cfg.Enabled {
		return &Matcher{enabled: false}, nil
	}

	expr := cfg.Pattern
	if cfg.CaseInsensitive {
		expr = "(?i)" + expr
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("matcher: compile pattern %q: %v: %w", cfg.Pattern, err, config.ErrBadSearchPattern)
	}

	return &Matcher{
		enabled: true,
		pattern: []byte(cfg.Pattern),
		re:      re,
	}, nil
}

// Enabled reports whether search matching is active. When false, every
// task that produced at least one byte or reached a non-dial-error
// terminal state counts as a match (spec §4.E).
func (m *Matcher) Enabled() bool {
	return m.enabled
}

// MatchGrowth runs the cheap substring test used the instant a task's
// buffer fills to max_read_size, before the connection is torn down.
// It intentionally does not use the compiled regexp: a raw substring
// scan is orders of magnitude cheaper and is run on the hot path for
// every one of tens of thousands of concurrent tasks.
func (m *Matcher) MatchGrowth(buf []byte) bool {
	if !m.enabled {
		return true
	}
	return bytes.Contains(buf, m.pattern)
}

// MatchFinal runs the compiled-regexp test used exactly once per task, at
// termination, against the full accumulated buffer. When search is
// disabled every task that reaches this point already connected (dial
// failures never call MatchFinal), so it always matches — per spec §4.E,
// reaching any non-dial-error terminal state is sufficient, independent
// of response length.
func (m *Matcher) MatchFinal(buf []byte) bool {
	if !m.enabled {
		return true
	}
	return m.re.Match(buf)
}
