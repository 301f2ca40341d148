// Package bridge republishes coordinator events onto NATS subjects so
// processes outside this one can observe presence and assignment changes.
//
// The in-process bus stays the source of truth; the bridge is a one-way
// mirror. Each bus topic maps to one NATS subject under a configurable
// prefix, with the topic's ":" separator rewritten to the NATS token
// separator:
//
//	global              -> huddle.global
//	activeTasks:job-1   -> huddle.activeTasks.job-1
//	jobUpdate:job-1     -> huddle.jobUpdate.job-1
//
// Payloads are the JSON encoding of types.Event. Delivery is best-effort,
// matching the bus's own semantics: a failed publish is logged and dropped,
// never retried.
package bridge

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/nats-io/nats.go"

	"github.com/lmiller1990/huddle"
	"github.com/lmiller1990/huddle/internal/logging"
	"github.com/lmiller1990/huddle/types"
)

// DefaultSubjectPrefix is the NATS subject prefix used when none is
// configured.
const DefaultSubjectPrefix = "huddle"

var (
	// ErrConnRequired is returned when the NATS connection is nil.
	ErrConnRequired = errors.New("nats connection is required")

	// ErrCoordinatorRequired is returned when the coordinator is nil.
	ErrCoordinatorRequired = errors.New("coordinator is required")
)

// Bridge mirrors coordinator events to NATS.
//
// It subscribes to the global topic and to both per-job topics of every job
// in the coordinator's catalog, so the catalog must be loaded (Start the
// coordinator first).
type Bridge struct {
	coord  *huddle.Coordinator
	nc     *nats.Conn
	prefix string
	logger types.Logger

	mu      sync.Mutex
	started bool
	cancels []func()
	wg      sync.WaitGroup
}

// Option configures a Bridge.
type Option func(*Bridge)

// WithSubjectPrefix sets the NATS subject prefix.
//
// Parameters:
//   - prefix: Subject prefix; empty values keep DefaultSubjectPrefix
//
// Returns:
//   - Option: Functional option for New
func WithSubjectPrefix(prefix string) Option {
	return func(b *Bridge) {
		if prefix != "" {
			b.prefix = prefix
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger types.Logger) Option {
	return func(b *Bridge) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// New creates a bridge for the given coordinator and NATS connection.
//
// Parameters:
//   - coord: Started coordinator whose events to mirror
//   - nc: Established NATS connection; the bridge does not own it
//   - opts: Optional configuration (subject prefix, logger)
//
// Returns:
//   - *Bridge: Bridge ready to Start
//   - error: ErrCoordinatorRequired or ErrConnRequired
func New(coord *huddle.Coordinator, nc *nats.Conn, opts ...Option) (*Bridge, error) {
	if coord == nil {
		return nil, ErrCoordinatorRequired
	}
	if nc == nil {
		return nil, ErrConnRequired
	}

	b := &Bridge{
		coord:  coord,
		nc:     nc,
		prefix: DefaultSubjectPrefix,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(b)
	}

	return b, nil
}

// Start attaches to the coordinator's topics and begins mirroring.
//
// Returns:
//   - error: huddle.ErrAlreadyStarted if already running
func (b *Bridge) Start() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.started {
		return huddle.ErrAlreadyStarted
	}
	b.started = true

	topics := []string{types.TopicGlobal}
	for _, job := range b.coord.Jobs() {
		topics = append(topics,
			types.ActiveTasksTopic(job.ID),
			types.JobUpdateTopic(job.ID),
		)
	}

	bus := b.coord.Bus()
	for _, topic := range topics {
		ch, cancel := bus.Subscribe(topic)
		b.cancels = append(b.cancels, cancel)

		b.wg.Add(1)
		go b.mirror(ch)
	}

	b.logger.Info("bridge started", "topics", len(topics), "prefix", b.prefix)

	return nil
}

// Stop detaches from the coordinator and waits for in-flight publishes.
//
// Idempotent. The NATS connection is left open for its owner to close.
func (b *Bridge) Stop() {
	b.mu.Lock()
	if !b.started {
		b.mu.Unlock()
		return
	}
	b.started = false
	cancels := b.cancels
	b.cancels = nil
	b.mu.Unlock()

	for _, cancel := range cancels {
		cancel()
	}
	b.wg.Wait()

	b.logger.Info("bridge stopped")
}

// mirror pumps one topic's events to NATS until the subscription closes.
func (b *Bridge) mirror(ch <-chan types.Event) {
	defer b.wg.Done()

	for event := range ch {
		payload, err := json.Marshal(event)
		if err != nil {
			b.logger.Error("failed to encode event", "topic", event.Topic, "error", err)
			continue
		}

		subject := b.subjectFor(event.Topic)
		if err := b.nc.Publish(subject, payload); err != nil {
			b.logger.Warn("failed to publish event", "subject", subject, "error", err)
		}
	}
}

// subjectFor maps a bus topic to its NATS subject.
func (b *Bridge) subjectFor(topic string) string {
	return fmt.Sprintf("%s.%s", b.prefix, strings.ReplaceAll(topic, ":", "."))
}
