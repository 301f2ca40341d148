// Package presence tracks user liveness for the Coordinator.
//
// Each user has a last-liveness timestamp refreshed on every heartbeat. The
// periodic sweep removes entries whose signal has gone stale and reports
// them for eviction.
//
// # Liveness Model
//
//   - Heartbeats refresh the timestamp at the sweep's "now"
//   - A user is present while now - lastLiveness <= timeout
//   - The sweep removes and returns every expired entry
//
// A heartbeat racing the sweep is last-write-consistent per user: a refresh
// observed before the sweep reads the entry wins, otherwise the eviction
// wins. Neither outcome leaves a user both refreshed and evicted.
//
// # Thread Safety
//
// All methods are safe for concurrent use.
package presence
