package scanner

import (
	"context"
	"fmt"
	"io"
	"time"
)

// Reporter writes a one-line progress summary to w every second, matching
// the original tool's fixed stderr cadence. It rearms itself with a
// ticker rather than a one-shot timer, the idiomatic Go replacement for
// the reactor's repeating libevent timer (see REDESIGN FLAGS).
type Reporter struct {
	w           io.Writer
	ctrs        *Counters
	maxInFlight int
	pattern     string
}

// NewReporter builds a Reporter. pattern is printed only when search
// matching is enabled, echoing the original's behavior of showing the
// active pattern alongside progress.
func NewReporter(w io.Writer, ctrs *Counters, maxInFlight int, pattern string) *Reporter {
	return &Reporter{w: w, ctrs: ctrs, maxInFlight: maxInFlight, pattern: pattern}
}

// Run blocks, printing a status line every second until ctx is
// cancelled. inFlight reports the current number of admitted-but-not-yet-
// completed tasks.
func (r *Reporter) Run(ctx context.Context, inFlight func() int) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.print(inFlight())
		}
	}
}

func (r *Reporter) print(current int) {
	s := r.ctrs.Snapshot()
	if r.pattern != "" {
		fmt.Fprintf(r.w, "(%d/%d descriptors in use) matched=%d initiated=%d connected=%d completed=%d pattern=%q\n",
			current, r.maxInFlight, s.Matched, s.Initiated, s.Connected, s.Completed, r.pattern)
		return
	}
	fmt.Fprintf(r.w, "(%d/%d descriptors in use) matched=%d initiated=%d connected=%d completed=%d\n",
		current, r.maxInFlight, s.Matched, s.Initiated, s.Connected, s.Completed)
}
