package nav

import "time"

// Clock supplies the current time for timer deadlines.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// ManualClock only moves when told to. Tests and replays use it to fire
// controller timers deterministically.
type ManualClock struct {
	now time.Time
}

// NewManualClock returns a clock stopped at start.
func NewManualClock(start time.Time) *ManualClock {
	return &ManualClock{now: start}
}

func (c *ManualClock) Now() time.Time { return c.now }

// Advance moves the clock forward by d.
func (c *ManualClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

// Set moves the clock to t.
func (c *ManualClock) Set(t time.Time) { c.now = t }
