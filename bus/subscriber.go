package bus

import (
	"slices"
	"sync"

	"github.com/lmiller1990/huddle/types"
)

// subscriber is one attached consumer's queue.
type subscriber struct {
	topic string
	ch    chan types.Event

	mu     sync.Mutex
	closed bool
}

// trySend queues the event without blocking.
//
// A full queue means the subscriber is too slow; the event is dropped for
// this subscriber only and the drop is recorded.
func (s *subscriber) trySend(event types.Event, metrics types.MetricsCollector) {
	// Each subscriber gets its own Tasks backing array; Task holds no
	// pointers, so a shallow clone is a full copy.
	event.Tasks = slices.Clone(event.Tasks)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	select {
	case s.ch <- event:
	default:
		metrics.RecordDroppedEvent(s.topic)
	}
}

// close safely closes the subscriber's channel. Idempotent.
func (s *subscriber) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	close(s.ch)
}
