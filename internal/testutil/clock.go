package testutil

import "sync/atomic"

// DeterministicClock is a logical clock that numbers hook calls.
//
// The first call to Next returns 1. Hook traces carry these sequence numbers
// instead of wall-clock time, so two runs of the same manifest produce
// identical traces. Safe for concurrent use.
type DeterministicClock struct {
	seq atomic.Int64
}

// NewDeterministicClock returns a clock at 0.
func NewDeterministicClock() *DeterministicClock {
	return &DeterministicClock{}
}

// Next advances the clock and returns the new value.
func (c *DeterministicClock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the last value handed out, or 0.
func (c *DeterministicClock) Current() int64 {
	return c.seq.Load()
}

// Reset rewinds the clock so the next call to Next returns 1.
func (c *DeterministicClock) Reset() {
	c.seq.Store(0)
}
