package scanner

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/stormgrab/stormgrab/internal/config"
)

// Store is the optional persistence side channel (spec §4.F expansion,
// §4.J). Its implementation lives in internal/store; Emitter depends only
// on this narrow interface so the scanner package never imports the
// sqlite/migrate stack directly.
type Store interface {
	RecordMatch(ctx context.Context, runID, peer string, port int, body []byte, class string) error
}

// Emitter formats matched results to stdout and, when a Store is
// configured, mirrors every match to it as a side channel that can never
// block or gate stdout emission (spec §4.F).
type Emitter struct {
	w      *bufio.Writer
	format config.OutputFormat
	store  Store
	runID  string
	logger *slog.Logger
}

// NewEmitter builds an Emitter writing to w, flushing after every write
// to preserve the original tool's "flush stdout after every match" line
// discipline under output redirection.
func NewEmitter(w io.Writer, format config.OutputFormat, store Store, runID string, logger *slog.Logger) *Emitter {
	return &Emitter{
		w:      bufio.NewWriter(w),
		format: format,
		store:  store,
		runID:  runID,
		logger: logger,
	}
}

// Emit writes one matched result and, if configured, appends it to the
// store. Store failures are logged and otherwise ignored; they never
// affect the stdout write that already happened (spec §7).
func (e *Emitter) Emit(ctx context.Context, r Result) {
	switch e.format {
	case config.FormatIPOnly:
		fmt.Fprintf(e.w, "%s:%d\n", r.Peer, r.Port)
	default:
		fmt.Fprintf(e.w, "%s:%d %s\n\n", r.Peer, r.Port, r.Body)
	}
	_ = e.w.Flush()

	if e.store == nil {
		return
	}
	if err := e.store.RecordMatch(ctx, e.runID, r.Peer, r.Port, r.Body, string(r.Classification)); err != nil {
		e.logger.Warn("store write failed", "peer", r.Peer, "err", err)
	}
}
