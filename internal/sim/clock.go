package sim

import "time"

// Clock is the simulated calendar time. It advances by whatever the caller
// passes per tick, independently of the tick rate.
type Clock struct {
	now time.Time
}

// NewClock returns a clock starting at start.
func NewClock(start time.Time) *Clock {
	return &Clock{now: start}
}

// Advance moves the clock forward by d.
func (c *Clock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

// Now returns the current simulated time.
func (c *Clock) Now() time.Time {
	return c.now
}

// Hour returns the simulated hour of day, 0-23.
func (c *Clock) Hour() int {
	return c.now.Hour()
}
