// Package testutil provides deterministic helpers shared by the harness
// and its tests: a resettable logical clock for trace sequencing and
// run-ID generators.
package testutil

import "sync"

// SeqClock is a resettable monotonic logical clock.
//
// Trace events are stamped with seq numbers from this clock instead of
// wall-clock timestamps, so the same scenario produces the same trace on
// every run. Reset allows one clock to be reused across scenarios.
//
// Thread-safety: all methods are safe for concurrent use via an internal
// mutex, although scenario execution itself is single-goroutine.
type SeqClock struct {
	mu  sync.Mutex
	seq int64
}

// NewSeqClock creates a clock starting at 0; the first Next returns 1.
func NewSeqClock() *SeqClock {
	return &SeqClock{}
}

// Next increments and returns the next sequence number.
func (c *SeqClock) Next() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	return c.seq
}

// Current returns the current sequence number without incrementing.
func (c *SeqClock) Current() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.seq
}

// Reset returns the clock to 0.
func (c *SeqClock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq = 0
}
