package host

import (
	"sync"
	"time"
)

// Clock abstracts wall-clock reads and sleeping.
type Clock interface {
	Now() (time.Time, error)
	Sleep(d time.Duration) error
}

// RealClock reads the host clock and sleeps with the host primitive.
type RealClock struct{}

// Now returns the current wall-clock time.
func (RealClock) Now() (time.Time, error) { return Now() }

// Sleep blocks for d.
func (RealClock) Sleep(d time.Duration) error { return Sleep(d) }

// ManualClock only moves when Sleep or Advance is called.
type ManualClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewManualClock returns a clock reading start.
func NewManualClock(start time.Time) *ManualClock {
	return &ManualClock{now: start}
}

// Now returns the clock's current reading.
func (c *ManualClock) Now() (time.Time, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now, nil
}

// Sleep advances the clock by d without blocking.
func (c *ManualClock) Sleep(d time.Duration) error {
	c.Advance(d)
	return nil
}

// Advance moves the clock forward by d. Negative durations are ignored.
func (c *ManualClock) Advance(d time.Duration) {
	if d <= 0 {
		return
	}
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

var (
	_ Clock = RealClock{}
	_ Clock = (*ManualClock)(nil)
)
