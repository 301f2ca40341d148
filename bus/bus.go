package bus

import (
	"sync"
	"sync/atomic"

	"github.com/puzpuzpuz/xsync/v4"
	"github.com/zeebo/xxh3"

	"github.com/lmiller1990/huddle/internal/logging"
	"github.com/lmiller1990/huddle/internal/metrics"
	"github.com/lmiller1990/huddle/types"
)

// shardCount is the number of topic lock shards. Publishes within one shard
// serialize; the count only bounds contention, not correctness.
const shardCount = 16

// DefaultBuffer is the per-subscriber queue capacity used when no override
// is configured.
const DefaultBuffer = 256

// shard owns a subset of topics. The shard lock is held across the fanout
// of a publish, which is what guarantees FIFO per topic.
type shard struct {
	mu     sync.Mutex
	topics map[string]*xsync.Map[uint64, *subscriber]
}

// Bus is a topic-based event fanout.
//
// All methods are safe for concurrent use.
type Bus struct {
	shards  [shardCount]*shard
	buffer  int
	logger  types.Logger
	metrics types.MetricsCollector

	nextID      atomic.Uint64
	subscribers atomic.Int64
	closed      atomic.Bool
}

// Option configures a Bus.
type Option func(*Bus)

// WithBuffer sets the per-subscriber queue capacity.
//
// Parameters:
//   - n: Queue capacity; values < 1 fall back to DefaultBuffer
//
// Returns:
//   - Option: Functional option for New
func WithBuffer(n int) Option {
	return func(b *Bus) {
		if n > 0 {
			b.buffer = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger types.Logger) Option {
	return func(b *Bus) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(collector types.MetricsCollector) Option {
	return func(b *Bus) {
		if collector != nil {
			b.metrics = collector
		}
	}
}

// New creates an event bus.
//
// Parameters:
//   - opts: Optional configuration (buffer size, logger, metrics)
//
// Returns:
//   - *Bus: Ready-to-use bus
func New(opts ...Option) *Bus {
	b := &Bus{
		buffer:  DefaultBuffer,
		logger:  logging.NewNop(),
		metrics: metrics.NewNop(),
	}
	for i := range b.shards {
		b.shards[i] = &shard{topics: make(map[string]*xsync.Map[uint64, *subscriber])}
	}
	for _, opt := range opts {
		opt(b)
	}

	return b
}

// Publish delivers the event to every subscriber currently attached to the
// topic.
//
// Non-blocking from the publisher's perspective: slow subscribers drop, they
// never stall the publish. Publishing to a topic with no subscribers, or to
// a closed bus, is a silent no-op.
//
// Parameters:
//   - topic: Target topic
//   - event: Event to deliver; each subscriber receives the same value
func (b *Bus) Publish(topic string, event types.Event) {
	if b.closed.Load() {
		return
	}

	event.Topic = topic

	sh := b.shardFor(topic)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	b.metrics.RecordPublish(topic)

	subs, ok := sh.topics[topic]
	if !ok {
		return
	}

	subs.Range(func(_ uint64, sub *subscriber) bool {
		sub.trySend(event, b.metrics)
		return true
	})
}

// Subscribe attaches a new subscriber to the topic.
//
// The returned channel is a live, infinite sequence: it yields every event
// published to the topic after attachment and ends only when the cancel
// function is called or the bus is closed. The cancel function deregisters
// the subscriber, closes the channel, and is safe to call multiple times
// and concurrently with Publish.
//
// Subscribing to a closed bus yields an already-closed channel.
//
// Parameters:
//   - topic: Topic to attach to
//
// Returns:
//   - <-chan types.Event: Live event sequence
//   - func(): Cancel function releasing the subscription's resources
func (b *Bus) Subscribe(topic string) (<-chan types.Event, func()) {
	sub := &subscriber{topic: topic, ch: make(chan types.Event, b.buffer)}

	if b.closed.Load() {
		sub.close()
		return sub.ch, func() {}
	}

	id := b.nextID.Add(1)

	sh := b.shardFor(topic)
	sh.mu.Lock()
	subs, ok := sh.topics[topic]
	if !ok {
		subs = xsync.NewMap[uint64, *subscriber]()
		sh.topics[topic] = subs
	}
	subs.Store(id, sub)
	sh.mu.Unlock()

	b.metrics.SetSubscribers(int(b.subscribers.Add(1)))
	b.logger.Debug("subscriber attached", "topic", topic, "id", id)

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.detach(topic, id)
		})
	}

	return sub.ch, cancel
}

// SubscriberCount returns the number of currently attached subscribers
// across all topics.
//
// Returns:
//   - int: Attached subscriber count
func (b *Bus) SubscriberCount() int {
	return int(b.subscribers.Load())
}

// Close shuts the bus down: every subscriber channel is closed and
// subsequent publishes are dropped.
//
// Idempotent. Safe to call concurrently with Publish and Subscribe.
func (b *Bus) Close() {
	if !b.closed.CompareAndSwap(false, true) {
		return
	}

	for _, sh := range b.shards {
		sh.mu.Lock()
		for topic, subs := range sh.topics {
			subs.Range(func(_ uint64, sub *subscriber) bool {
				sub.close()
				return true
			})
			delete(sh.topics, topic)
		}
		sh.mu.Unlock()
	}

	b.subscribers.Store(0)
	b.metrics.SetSubscribers(0)
}

// detach removes one subscriber and closes its channel.
func (b *Bus) detach(topic string, id uint64) {
	sh := b.shardFor(topic)

	sh.mu.Lock()
	subs, ok := sh.topics[topic]
	var sub *subscriber
	if ok {
		sub, _ = subs.LoadAndDelete(id)
		if subs.Size() == 0 {
			delete(sh.topics, topic)
		}
	}
	sh.mu.Unlock()

	if sub == nil {
		return
	}

	sub.close()
	b.metrics.SetSubscribers(int(b.subscribers.Add(-1)))
	b.logger.Debug("subscriber detached", "topic", topic, "id", id)
}

// shardFor maps a topic to its lock shard.
func (b *Bus) shardFor(topic string) *shard {
	return b.shards[xxh3.HashString(topic)%shardCount]
}
