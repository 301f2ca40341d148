package testing

import (
	"sync"
	"time"

	"github.com/lmiller1990/huddle/types"
)

// Clock is a manually controlled types.Clock for deterministic liveness
// tests: advance simulated time instead of sleeping.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

var _ types.Clock = (*Clock)(nil)

// NewClock creates a fake clock starting at the given instant.
//
// Parameters:
//   - start: Initial time returned by Now
//
// Returns:
//   - *Clock: Manually controlled clock
//
// Example:
//
//	clock := huddletesting.NewClock(time.Unix(0, 0))
//	coord, _ := huddle.New(&cfg, src, huddle.WithClock(clock))
//	clock.Advance(11 * time.Second) // alice's heartbeat is now stale
func NewClock(start time.Time) *Clock {
	return &Clock{now: start}
}

// Now returns the current simulated time.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.now
}

// Advance moves the simulated time forward.
//
// Parameters:
//   - d: Duration to add to the current simulated time
func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.now = c.now.Add(d)
}

// Set jumps the simulated time to an absolute instant.
//
// Parameters:
//   - now: New simulated time
func (c *Clock) Set(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.now = now
}
