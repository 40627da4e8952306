// Package netlimit queries and raises the process's open-file-descriptor
// limit. A high-concurrency scanner opens one socket per in-flight
// connection task, so the default per-process soft limit (often 1024 on
// Linux) caps concurrency well below what scan.max_concurrency requests
// unless it is bumped at startup.
package netlimit

import (
	"fmt"
	"math"

	"golang.org/x/sys/unix"
)

// Current returns the process's current (soft) and maximum (hard) open
// file descriptor limits.
func Current() (current int, max int, err error) {
	var rlimit unix.Rlimit
	if err := unix.Getrlimit(unix.RLIMIT_NOFILE, &rlimit); err != nil {
		return 0, 0, fmt.Errorf("netlimit: getrlimit: %w", err)
	}
	return clampInt(rlimit.Cur), clampInt(rlimit.Max), nil
}

// Raise attempts to set the soft RLIMIT_NOFILE to want, growing the hard
// limit first if required. It never lowers an existing limit: if the
// current soft limit already meets want, it is a no-op. Raising beyond
// the hard limit without CAP_SYS_RESOURCE (or root) fails; callers should
// treat the returned current value, not want, as authoritative.
func Raise(want int) (current int, max int, err error) {
	if want <= 0 {
		return Current()
	}

	var rlimit unix.Rlimit
	if err := unix.Getrlimit(unix.RLIMIT_NOFILE, &rlimit); err != nil {
		return 0, 0, fmt.Errorf("netlimit: getrlimit: %w", err)
	}

	if uint64(want) <= rlimit.Cur {
		return clampInt(rlimit.Cur), clampInt(rlimit.Max), nil
	}

	if uint64(want) > rlimit.Max {
		rlimit.Max = uint64(want)
	}
	rlimit.Cur = uint64(want)

	if err := unix.Setrlimit(unix.RLIMIT_NOFILE, &rlimit); err != nil {
		return 0, 0, fmt.Errorf("netlimit: setrlimit(%d): %w", want, err)
	}

	return Current()
}

func clampInt(v uint64) int {
	if v > uint64(math.MaxInt) {
		return math.MaxInt
	}
	return int(v)
}
