package types

// MetricsCollector receives operational metrics from Huddle components.
//
// Implementations must be safe for concurrent use. All methods are called
// on hot paths and must not block; expensive work belongs behind a queue
// owned by the implementation.
//
// Two implementations ship with the library:
//   - metrics.NewNop(): discards everything (the default)
//   - metrics.NewPrometheus(reg, namespace): Prometheus counters and gauges
type MetricsCollector interface {
	// PresenceMetrics

	// RecordHeartbeat records a liveness signal from a user.
	RecordHeartbeat(userID string)

	// RecordEviction records users evicted by one sweep pass.
	RecordEviction(count int)

	// SetOnlineUsers sets the current number of present users.
	SetOnlineUsers(count int)

	// StoreMetrics

	// RecordClaim records a task claim in the given job.
	RecordClaim(jobID string)

	// RecordRelease records a claim release in the given job.
	RecordRelease(jobID string)

	// BusMetrics

	// RecordPublish records an event delivered to the bus on a topic.
	RecordPublish(topic string)

	// RecordDroppedEvent records an event dropped because a subscriber's
	// queue was full.
	RecordDroppedEvent(topic string)

	// SetSubscribers sets the current number of attached subscribers.
	SetSubscribers(count int)
}
