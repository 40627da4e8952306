package scanner

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"strconv"
	"time"

	"github.com/stormgrab/stormgrab/internal/config"
	"github.com/stormgrab/stormgrab/internal/pool"
)

// bufPool recycles the byte slices backing each task's response buffer,
// the same pattern the teacher uses for its length-prefix buffers
// (internal/pool.Pool), generalized here to a growable accumulation
// buffer reused across tasks instead of a fixed 2-byte one.
var bufPool = pool.New(func() *[]byte {
	b := make([]byte, 0, 4096)
	return &b
})

// classification is the terminal disposition of a task, used for
// logging and for the store's "classification" column (spec §4.F expansion).
type classification string

const (
	classDialError   classification = "dial_error"
	classBufferFull  classification = "buffer_full"
	classPeerClosed  classification = "peer_closed"
	classReadError   classification = "read_error"
	classReadTimeout classification = "read_timeout"
)

// Result is what a finished task reports back to the scanner runtime for
// matching, emission, and counter bookkeeping.
type Result struct {
	Peer           string
	Port           int
	Body           []byte
	Classification classification
	Connected      bool
	Matched        bool
}

// task drives one connection's full lifecycle: dial, optional send,
// bounded read, classify. It owns exactly one goroutine for its entire
// life and frees its buffer exactly once, per spec invariants.
type task struct {
	peer string
	cfg  *config.Config
	ctrs *Counters
	mt   *Matcher

	bufPtr *[]byte
}

func newTask(peer string, cfg *config.Config, ctrs *Counters, mt *Matcher) *task {
	return &task{peer: peer, cfg: cfg, ctrs: ctrs, mt: mt}
}

// run executes the full connect -> send -> read -> classify pipeline and
// returns the Result for the emitter. It never panics on task-local
// errors: every failure resolves to a terminal classification instead of
// propagating past this goroutine (spec §7).
func (t *task) run(ctx context.Context, logger *slog.Logger) Result {
	t.ctrs.incInitiated()

	addr := net.JoinHostPort(t.peer, strconv.Itoa(t.cfg.Scan.Port))
	dialCtx, cancel := context.WithTimeout(ctx, time.Duration(t.cfg.Scan.ConnectTimeoutSec)*time.Second)
	defer cancel()

	var d net.Dialer
	conn, err := d.DialContext(dialCtx, "tcp4", addr)
	if err != nil {
		if ne, ok := err.(net.Error); ok && ne.Timeout() {
			logger.Debug("dial timed out", "peer", t.peer, "err", err)
		} else {
			logger.Warn("dial failed", "peer", t.peer, "err", err)
		}
		t.ctrs.incCompleted()
		return Result{Peer: t.peer, Port: t.cfg.Scan.Port, Classification: classDialError}
	}
	defer conn.Close()

	t.ctrs.incConnected()

	if len(t.cfg.Scan.SendTemplate) > 0 {
		payload := expandTemplate(t.cfg.Scan.SendTemplate, t.peer)
		_ = conn.SetWriteDeadline(time.Now().Add(time.Duration(t.cfg.Scan.ConnectTimeoutSec) * time.Second))
		if _, err := conn.Write(payload); err != nil {
			logger.Debug("send failed", "peer", t.peer, "err", err)
		}
	}

	t.bufPtr = bufPool.Get()
	buf := (*t.bufPtr)[:0]
	class := classPeerClosed
	var growthMatched bool

	readBuf := make([]byte, 4096)
	for {
		remaining := t.cfg.Scan.MaxReadSize - len(buf)
		if remaining <= 0 {
			// Hot-path substring check, run the instant the buffer
			// fills; this never touches the compiled regexp.
			growthMatched = t.mt.MatchGrowth(buf)
			class = classBufferFull
			break
		}

		_ = conn.SetReadDeadline(time.Now().Add(time.Duration(t.cfg.Scan.ReadTimeoutSec) * time.Second))
		n, err := conn.Read(readBuf)
		if n > 0 {
			want := n
			if want > remaining {
				want = remaining
			}
			buf = append(buf, readBuf[:want]...)
			if len(buf) >= t.cfg.Scan.MaxReadSize {
				growthMatched = t.mt.MatchGrowth(buf)
				class = classBufferFull
				break
			}
		}
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				class = classReadTimeout
			} else if errors.Is(err, io.EOF) {
				class = classPeerClosed
			} else {
				class = classReadError
			}
			break
		}
	}
	t.ctrs.incCompleted()

	// The length-triggered (buffer-full) path decides its match from the
	// cheap growth-time substring test; MatchFinal's compiled regexp only
	// ever runs for a natural termination (peer close, read error/timeout),
	// per the asymmetry this package's docs describe — the two must never
	// be unified.
	var matched bool
	if class == classBufferFull {
		matched = growthMatched
	} else {
		matched = t.mt.MatchFinal(buf)
	}
	if matched {
		t.ctrs.incMatched()
	}

	body := bytes.Clone(buf)
	t.release()

	return Result{
		Peer:           t.peer,
		Port:           t.cfg.Scan.Port,
		Body:           body,
		Classification: class,
		Connected:      true,
		Matched:        matched,
	}
}

// release returns the task's accumulation buffer to the pool exactly
// once, matching the spec's "frees its buffer exactly once" invariant.
func (t *task) release() {
	if t.bufPtr == nil {
		return
	}
	*t.bufPtr = (*t.bufPtr)[:0]
	bufPool.Put(t.bufPtr)
	t.bufPtr = nil
}
