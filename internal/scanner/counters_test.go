package scanner

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCountersSnapshot(t *testing.T) {
	c := &Counters{}
	c.incInitiated()
	c.incInitiated()
	c.incConnected()
	c.incCompleted()
	c.incMatched()

	s := c.Snapshot()
	assert.Equal(t, uint64(2), s.Initiated)
	assert.Equal(t, uint64(1), s.Connected)
	assert.Equal(t, uint64(1), s.Completed)
	assert.Equal(t, uint64(1), s.Matched)
}

func TestCountersConcurrentIncrements(t *testing.T) {
	c := &Counters{}
	var wg sync.WaitGroup
	const n = 1000

	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.incInitiated()
		}()
	}
	wg.Wait()

	assert.Equal(t, uint64(n), c.Snapshot().Initiated)
}
