package canopy

import "time"

// Clock supplies the current time to the Kernel. Tests substitute a
// ManualClock to drive deterministic frame timestamps.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the monotonic wall clock.
type SystemClock struct{}

// Now returns time.Now.
func (SystemClock) Now() time.Time {
	return time.Now()
}

// ManualClock is a Clock that only moves when told to.
type ManualClock struct {
	current time.Time
}

// NewManualClock creates a ManualClock starting at start.
func NewManualClock(start time.Time) *ManualClock {
	return &ManualClock{current: start}
}

// Now returns the current mocked time.
func (c *ManualClock) Now() time.Time {
	return c.current
}

// Set jumps the clock to t.
func (c *ManualClock) Set(t time.Time) {
	c.current = t
}

// Advance moves the clock forward by d.
func (c *ManualClock) Advance(d time.Duration) {
	c.current = c.current.Add(d)
}

// millisSince converts the interval between epoch and t to fractional
// milliseconds, the unit used by every frame timestamp in canopy.
func millisSince(epoch, t time.Time) float64 {
	return float64(t.Sub(epoch)) / float64(time.Millisecond)
}
