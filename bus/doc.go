// Package bus provides topic-based publish/subscribe fanout for Huddle
// events.
//
// # Delivery Model
//
//   - Publish is non-blocking: a slow or absent subscriber never stalls or
//     fails the publisher
//   - Each subscriber has its own buffered queue; events that arrive while
//     the queue is full are dropped for that subscriber only
//   - Delivery order to a single subscriber matches publish order for that
//     topic (FIFO per topic); cross-topic ordering is unspecified
//   - Every subscriber attached at publish time receives its own copy;
//     publishing to a topic with zero subscribers is a silent no-op
//
// Events are fire-and-forget. There is no retention or replay: a subscriber
// that attaches after a publish never sees that event.
//
// # Subscriptions
//
// Subscribe returns a live channel plus a cancel function:
//
//	ch, cancel := b.Subscribe(types.TopicGlobal)
//	defer cancel()
//	for ev := range ch {
//	    handle(ev)
//	}
//
// Cancel deregisters the subscriber and closes its channel; it is safe to
// call at any time, including concurrently with Publish, and more than once.
//
// # Sharding
//
// Topics are distributed over a fixed set of lock shards by hash, so
// publishes to unrelated topics do not serialize against each other while
// per-topic FIFO is preserved.
package bus
