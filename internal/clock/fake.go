package clock

import (
	"sync"
	"time"
)

type FakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func NewFakeClock(t time.Time) *FakeClock {
	return &FakeClock{now: t.UTC()}
}

func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// SetPeriod jumps to noon UTC on the first day of the given month.
func (c *FakeClock) SetPeriod(year, month int) {
	c.mu.Lock()
	c.now = time.Date(year, time.Month(month), 1, 12, 0, 0, 0, time.UTC)
	c.mu.Unlock()
}

var _ Clock = (*FakeClock)(nil)
