// Package scanner implements stormgrab's core connection pipeline: an
// input feeder, an admission-controlled pool of per-target connection
// tasks, response matching, and result emission.
package scanner

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/semaphore"

	"github.com/stormgrab/stormgrab/internal/config"
)

// Runner ties the feeder, admission controller, connection tasks,
// matcher, and emitter into one scan. One Runner corresponds to one
// process invocation (spec §2's data-flow diagram).
type Runner struct {
	cfg     *config.Config
	logger  *slog.Logger
	matcher *Matcher
	ctrs    *Counters
	emitter *Emitter

	sem      *semaphore.Weighted
	wg       sync.WaitGroup
	inFlight atomic.Int64
}

// NewRunner builds a Runner. The semaphore is sized to
// cfg.Scan.MaxConcurrency — acquiring a slot here, before the task
// goroutine is spawned, is the admission controller's enforcement point
// (spec §4.D): it is not a best-effort limit applied after the fact.
func NewRunner(cfg *config.Config, logger *slog.Logger, matcher *Matcher, emitter *Emitter) *Runner {
	return &Runner{
		cfg:     cfg,
		logger:  logger,
		matcher: matcher,
		ctrs:    &Counters{},
		emitter: emitter,
		sem:     semaphore.NewWeighted(int64(cfg.Scan.MaxConcurrency)),
	}
}

// Counters exposes the live counters, e.g. for the management API and
// the status reporter.
func (r *Runner) Counters() *Counters {
	return r.ctrs
}

// InFlight returns the number of admitted-but-not-yet-completed tasks.
func (r *Runner) InFlight() int {
	return int(r.inFlight.Load())
}

// Run drains stdin (or any reader), spawning one goroutine per admitted
// target, and blocks until every spawned task has completed. It returns
// the input feeder's error, if any; per-task errors never surface here
// (spec §7 — they resolve to a Result.Classification instead).
func (r *Runner) Run(ctx context.Context, input io.Reader) error {
	feedErr := feed(input, func(peer string) {
		if err := r.sem.Acquire(ctx, 1); err != nil {
			// Context cancelled (shutdown signal); stop admitting.
			return
		}
		r.inFlight.Add(1)
		r.wg.Add(1)
		go func() {
			defer r.wg.Done()
			defer r.sem.Release(1)
			defer r.inFlight.Add(-1)

			t := newTask(peer, r.cfg, r.ctrs, r.matcher)
			result := t.run(ctx, r.logger)
			if result.Matched {
				r.emitter.Emit(ctx, result)
			}
		}()
	})

	r.wg.Wait()
	return feedErr
}
