package ledger

import (
	"sync"
	"time"
)

// SecondsPerDay is the length of one ledger day.
const SecondsPerDay = 86400

// Clock is the authoritative time source. Callers never supply the day.
type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// DayOf returns floor(unix seconds / 86400).
func DayOf(t time.Time) int64 {
	s := t.Unix()
	d := s / SecondsPerDay
	if s%SecondsPerDay < 0 {
		d--
	}
	return d
}

// StartOfDay returns the first instant of the given day in UTC.
func StartOfDay(day int64) time.Time {
	return time.Unix(day*SecondsPerDay, 0).UTC()
}

// ManualClock is a settable clock for tests and tooling.
type ManualClock struct {
	mu  sync.Mutex
	now time.Time
}

func NewManualClock(t time.Time) *ManualClock {
	return &ManualClock{now: t}
}

func (c *ManualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *ManualClock) Set(t time.Time) {
	c.mu.Lock()
	c.now = t
	c.mu.Unlock()
}

func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}
