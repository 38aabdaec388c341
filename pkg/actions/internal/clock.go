// Package internal holds helpers shared by the actions packages.
package internal

import "time"

// Clock supplies timestamps for dispatch timing.
type Clock interface {
	Now() time.Time
}

// SystemClock reads time.Now, which carries a monotonic reading.
type SystemClock struct{}

// Now returns the current time.
func (SystemClock) Now() time.Time {
	return time.Now()
}

// ManualClock only moves when told to. It is not safe for concurrent use.
type ManualClock struct {
	now time.Time
}

// NewManualClock returns a ManualClock at t, or at a fixed epoch if t is zero.
func NewManualClock(t time.Time) *ManualClock {
	if t.IsZero() {
		t = time.Unix(1000000000, 0)
	}
	return &ManualClock{now: t}
}

// Now returns the clock's current time.
func (c *ManualClock) Now() time.Time {
	return c.now
}

// Advance moves the clock forward by d. Negative durations panic.
func (c *ManualClock) Advance(d time.Duration) {
	if d < 0 {
		panic("ManualClock.Advance: negative duration")
	}
	c.now = c.now.Add(d)
}
