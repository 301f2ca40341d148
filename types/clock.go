package types

import "time"

// Clock supplies the current time to liveness tracking.
//
// Injecting a Clock keeps eviction deterministic in tests: simulated time
// replaces sleeping. Production code uses the system clock.
type Clock interface {
	// Now returns the current time.
	Now() time.Time
}

// SystemClock is a Clock backed by time.Now.
type SystemClock struct{}

// Compile-time assertion that SystemClock implements Clock.
var _ Clock = SystemClock{}

// Now returns the current system time.
func (SystemClock) Now() time.Time {
	return time.Now()
}
