package testutil

import (
	"sync"
	"time"
)

// Epoch is the first timestamp a DeterministicClock returns.
var Epoch = time.Date(2024, time.March, 1, 9, 0, 0, 0, time.UTC)

// DeterministicClock hands out measurement timestamps for tests.
//
// Each Next() is one second after the previous one, starting at Epoch.
// Timestamps are whole milliseconds in UTC, so they survive a store
// round-trip unchanged.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type DeterministicClock struct {
	mu   sync.Mutex
	tick int64
}

// NewDeterministicClock creates a clock whose first Next() returns Epoch.
func NewDeterministicClock() *DeterministicClock {
	return &DeterministicClock{}
}

// Next returns the next timestamp.
func (c *DeterministicClock) Next() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	ts := Epoch.Add(time.Duration(c.tick) * time.Second)
	c.tick++
	return ts
}

// Ticks returns how many timestamps have been handed out.
func (c *DeterministicClock) Ticks() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tick
}

// Reset rewinds the clock. The next call to Next() returns Epoch.
func (c *DeterministicClock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tick = 0
}
