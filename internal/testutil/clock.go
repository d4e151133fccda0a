package testutil

import (
	"sync"
	"time"
)

// Epoch is the time a Clock starts at unless told otherwise.
var Epoch = time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)

// Clock is a manually advanced time source. Pass its Now method wherever a
// component accepts a func() time.Time, such as session token expiry or
// wishlist and alert timestamps.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

func NewClock(start ...time.Time) *Clock {
	c := &Clock{now: Epoch}
	if len(start) > 0 {
		c.now = start[0]
	}
	return c
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d and returns the new time.
func (c *Clock) Advance(d time.Duration) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
	return c.now
}
