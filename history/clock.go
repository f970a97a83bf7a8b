package history

import (
	"sync"
	"time"
)

// A Clock is the source of the current time. All timestamps of a store derive from it.
type Clock interface {
	Now() time.Time
}

// SystemClock returns the current system time.
type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now()
}

// NewTestClock creates a settable clock, starting at the given time.
func NewTestClock(t time.Time) *TestClock {
	return &TestClock{t: t}
}

// TestClock is a settable clock for tests. It is safe for concurrent use.
type TestClock struct {
	mu sync.Mutex
	t  time.Time
}

// Add moves the clock forward (or backward, if d is negative).
func (c *TestClock) Add(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func (c *TestClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *TestClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = t
}
