package scanner

import "sync/atomic"

// Counters tracks process-wide scan progress. Every field is updated from
// many task goroutines concurrently, so each is a separate atomic word
// rather than a struct behind a mutex — the status reporter and the
// management API both read a consistent Snapshot without blocking any
// in-flight task.
type Counters struct {
	initiated atomic.Uint64
	connected atomic.Uint64
	completed atomic.Uint64
	matched   atomic.Uint64
}

// Snapshot is a point-in-time copy of Counters, safe to format or
// marshal without racing further updates.
type Snapshot struct {
	Initiated uint64 `json:"initiated"`
	Connected uint64 `json:"connected"`
	Completed uint64 `json:"completed"`
	Matched   uint64 `json:"matched"`
}

func (c *Counters) incInitiated() { c.initiated.Add(1) }
func (c *Counters) incConnected() { c.connected.Add(1) }
func (c *Counters) incCompleted() { c.completed.Add(1) }
func (c *Counters) incMatched()   { c.matched.Add(1) }

// Snapshot returns the current values of all counters.
func (c *Counters) Snapshot() Snapshot {
	return Snapshot{
		Initiated: c.initiated.Load(),
		Connected: c.connected.Load(),
		Completed: c.completed.Load(),
		Matched:   c.matched.Load(),
	}
}
