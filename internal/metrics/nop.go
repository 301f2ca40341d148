// Package metrics provides MetricsCollector implementations.
package metrics

import "github.com/lmiller1990/huddle/types"

// NopMetrics implements a no-op metrics collector.
//
// All metrics are discarded. Useful for testing or when external
// metrics collection is used.
type NopMetrics struct{}

// Compile-time assertion that NopMetrics implements MetricsCollector.
var _ types.MetricsCollector = (*NopMetrics)(nil)

// NewNop creates a new no-op metrics collector.
//
// Returns:
//   - *NopMetrics: A new no-op metrics collector instance
func NewNop() *NopMetrics {
	return &NopMetrics{}
}

// PresenceMetrics implementation

// RecordHeartbeat discards the heartbeat metric.
func (n *NopMetrics) RecordHeartbeat(_ /* userID */ string) {
	// No-op
}

// RecordEviction discards the eviction metric.
func (n *NopMetrics) RecordEviction(_ /* count */ int) {
	// No-op
}

// SetOnlineUsers discards the online users gauge.
func (n *NopMetrics) SetOnlineUsers(_ /* count */ int) {
	// No-op
}

// StoreMetrics implementation

// RecordClaim discards the claim metric.
func (n *NopMetrics) RecordClaim(_ /* jobID */ string) {
	// No-op
}

// RecordRelease discards the release metric.
func (n *NopMetrics) RecordRelease(_ /* jobID */ string) {
	// No-op
}

// BusMetrics implementation

// RecordPublish discards the publish metric.
func (n *NopMetrics) RecordPublish(_ /* topic */ string) {
	// No-op
}

// RecordDroppedEvent discards the dropped event metric.
func (n *NopMetrics) RecordDroppedEvent(_ /* topic */ string) {
	// No-op
}

// SetSubscribers discards the subscribers gauge.
func (n *NopMetrics) SetSubscribers(_ /* count */ int) {
	// No-op
}
