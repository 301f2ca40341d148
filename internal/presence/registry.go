package presence

import (
	"sort"
	"time"

	"github.com/puzpuzpuz/xsync/v4"
)

// Registry maps user IDs to their last-liveness timestamp.
type Registry struct {
	entries *xsync.Map[string, time.Time]
}

// New creates an empty registry.
//
// Returns:
//   - *Registry: Registry with no tracked users
func New() *Registry {
	return &Registry{
		entries: xsync.NewMap[string, time.Time](),
	}
}

// Record upserts the user's last-liveness timestamp.
//
// Idempotent: recording the same instant twice has no additional effect.
//
// Parameters:
//   - userID: User identity
//   - now: Timestamp of the liveness signal
func (r *Registry) Record(userID string, now time.Time) {
	r.entries.Store(userID, now)
}

// IsPresent reports whether the user has a tracked liveness entry.
//
// Unknown users are simply absent; this never fails.
//
// Parameters:
//   - userID: User identity
//
// Returns:
//   - bool: true if the user is currently tracked
func (r *Registry) IsPresent(userID string) bool {
	_, ok := r.entries.Load(userID)
	return ok
}

// Remove drops the user's entry, if any.
//
// Used by explicit logout. Removing an unknown user is a no-op.
//
// Parameters:
//   - userID: User identity
//
// Returns:
//   - bool: true if an entry was removed
func (r *Registry) Remove(userID string) bool {
	_, ok := r.entries.LoadAndDelete(userID)
	return ok
}

// Online returns the IDs of all tracked users, sorted for stable output.
//
// Returns:
//   - []string: Sorted user IDs
func (r *Registry) Online() []string {
	users := make([]string, 0, r.entries.Size())
	r.entries.Range(func(userID string, _ time.Time) bool {
		users = append(users, userID)
		return true
	})
	sort.Strings(users)

	return users
}

// Count returns the number of tracked users.
//
// Returns:
//   - int: Current entry count
func (r *Registry) Count() int {
	return r.entries.Size()
}

// SweepExpired removes and returns every user whose last liveness signal is
// older than timeout relative to now.
//
// The check-and-remove is last-write-consistent per user: LoadAndDelete
// observes the latest stored timestamp, and if a concurrent heartbeat
// refreshed the entry between the scan and the delete, the fresh timestamp
// is stored back and the user survives the sweep.
//
// Parameters:
//   - now: Current time from the injected clock
//   - timeout: Liveness timeout; entries older than now-timeout expire
//
// Returns:
//   - []string: IDs of evicted users (empty when nothing expired)
func (r *Registry) SweepExpired(now time.Time, timeout time.Duration) []string {
	deadline := now.Add(-timeout)

	var candidates []string
	r.entries.Range(func(userID string, last time.Time) bool {
		if last.Before(deadline) {
			candidates = append(candidates, userID)
		}

		return true
	})

	expired := make([]string, 0, len(candidates))
	for _, userID := range candidates {
		last, ok := r.entries.LoadAndDelete(userID)
		if !ok {
			continue
		}
		if !last.Before(deadline) {
			// A heartbeat won the race; reinstate the fresh entry.
			r.entries.Store(userID, last)
			continue
		}
		expired = append(expired, userID)
	}

	return expired
}
