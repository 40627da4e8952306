package scanner

import (
	"bufio"
	"io"
	"net/netip"
	"strings"
)

// parsePeer validates a line from the input feeder as a dotted-quad IPv4
// address. Malformed lines are dropped rather than treated as a fatal
// error (Open Question (b): see DESIGN.md), since mass-scan input lists
// routinely contain blank lines or stray whitespace.
func parsePeer(line string) (string, bool) {
	line = strings.TrimSpace(line)
	if line == "" {
		return "", false
	}
	addr, err := netip.ParseAddr(line)
	if err != nil || !addr.Is4() {
		return "", false
	}
	return addr.String(), true
}

// feed reads LF-terminated lines from r, calling emit for every line that
// parses as an IPv4 address. It returns only once r is exhausted or a read
// fails; it does not watch any context, so after cancellation it keeps
// reading lines and handing them to emit until r ends. feed itself has
// no admission logic, since gating happens at emit's call site
// (the admission controller's semaphore acquire), matching spec §4.B's
// "poke() pulls lines while in_flight < max_concurrent" description
// realized as blocking-acquire-then-spawn instead of explicit polling.
func feed(r io.Reader, emit func(peer string)) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		peer, ok := parsePeer(scanner.Text())
		if !ok {
			continue
		}
		emit(peer)
	}
	return scanner.Err()
}
