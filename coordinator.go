package huddle

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lmiller1990/huddle/bus"
	"github.com/lmiller1990/huddle/internal/hooks"
	"github.com/lmiller1990/huddle/internal/logging"
	"github.com/lmiller1990/huddle/internal/metrics"
	"github.com/lmiller1990/huddle/internal/presence"
	"github.com/lmiller1990/huddle/internal/store"
	"github.com/lmiller1990/huddle/types"
)

// Coordinator is the presence and collaborative-assignment engine.
//
// It is the single writer to both the presence registry and the assignment
// store, so "mutate state" and "publish derived view" happen as one logical
// step: subscribers never observe a mutation without its event, and never
// receive an event without a completed mutation.
//
// Responsibilities:
//   - Track user liveness via heartbeats and evict stale users
//   - Maintain task claims per job (last-writer-wins)
//   - Fan out every state change on the event bus, scoped per job or global
//
// Thread Safety:
//   - All public methods are safe for concurrent use
//   - Mutations serialize per affected entity (per user, per job)
//
// Lifecycle:
//   - Create with New()
//   - Call Start() to load the job catalog and begin the sweep
//   - Call Stop() for graceful shutdown
type Coordinator struct {
	cfg    Config
	source JobSource

	// Optional dependencies
	hooks   *Hooks
	metrics MetricsCollector
	logger  Logger
	clock   Clock

	// Internal components
	registry *presence.Registry
	store    *store.Store
	bus      *bus.Bus

	// Lifecycle management
	ctx     context.Context
	cancel  context.CancelFunc
	mu      sync.Mutex
	started atomic.Bool
	stopped bool
	stopCh  chan struct{}
	doneCh  chan struct{}
	hookWG  sync.WaitGroup
}

// New creates a new Coordinator instance with the provided configuration.
//
// Returns a concrete *Coordinator struct following the "accept interfaces,
// return structs" principle. Consumers can define their own interfaces for
// testing if needed.
//
// Parameters:
//   - cfg: Runtime configuration with parsed durations
//   - source: Job catalog source, read once during Start
//   - opts: Optional configuration (hooks, metrics, logger, clock)
//
// Returns:
//   - *Coordinator: Initialized coordinator instance
//   - error: Validation error if configuration is invalid
//
// Example:
//
//	cfg := huddle.DefaultConfig()
//	src := source.NewStatic(jobs)
//	coord, err := huddle.New(&cfg, src)
func New(cfg *Config, source JobSource, opts ...Option) (*Coordinator, error) {
	if cfg == nil {
		return nil, ErrInvalidConfig
	}
	if source == nil {
		return nil, ErrJobSourceRequired
	}

	// Fill in missing configuration values with defaults
	ApplyDefaults(cfg)

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	// Apply options
	options := &coordinatorOptions{}
	for _, opt := range opts {
		opt(options)
	}

	// Provide safe defaults for optional dependencies to avoid nil checks everywhere
	metricsCollector := options.metrics
	if metricsCollector == nil {
		metricsCollector = metrics.NewNop()
	}

	loggerInstance := options.logger
	if loggerInstance == nil {
		loggerInstance = logging.NewNop()
	}

	// Validate with warnings after logger is available
	cfg.ValidateWithWarnings(loggerInstance)

	clock := options.clock
	if clock == nil {
		clock = types.SystemClock{}
	}

	hooksInstance := options.hooks
	if hooksInstance == nil {
		nop := hooks.NewNop()
		hooksInstance = &nop
	}

	c := &Coordinator{
		cfg:      *cfg,
		source:   source,
		hooks:    hooksInstance,
		metrics:  metricsCollector,
		logger:   loggerInstance,
		clock:    clock,
		registry: presence.New(),
		bus: bus.New(
			bus.WithBuffer(cfg.SubscriberBuffer),
			bus.WithLogger(loggerInstance),
			bus.WithMetrics(metricsCollector),
		),
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}

	return c, nil
}

// Start loads the job catalog and begins the background sweep.
//
// Parameters:
//   - ctx: Context for catalog loading; the sweep uses an internal
//     lifecycle context cancelled by Stop
//
// Returns:
//   - error: ErrAlreadyStarted, or a catalog load/validation failure
func (c *Coordinator) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.started.Load() || c.stopped {
		return ErrAlreadyStarted
	}

	jobs, err := c.source.ListJobs(ctx)
	if err != nil {
		return fmt.Errorf("failed to load job catalog: %w", err)
	}

	c.store, err = store.New(jobs)
	if err != nil {
		return fmt.Errorf("invalid job catalog: %w", err)
	}

	c.ctx, c.cancel = context.WithCancel(context.Background())
	c.started.Store(true)

	go c.sweepLoop()

	c.logger.Info("coordinator started",
		"jobs", len(jobs),
		"sweepInterval", c.cfg.SweepInterval,
		"livenessTimeout", c.cfg.LivenessTimeout,
	)

	return nil
}

// Stop shuts the coordinator down: the sweep loop exits, hook goroutines
// are waited for (bounded by ShutdownTimeout), and every bus subscriber
// channel is closed.
//
// Safe to call multiple times; subsequent calls return nil. A stopped
// coordinator cannot be restarted.
//
// Returns:
//   - error: ErrNotStarted if Stop is called before Start
func (c *Coordinator) Stop() error {
	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()
		return nil // Already stopped - idempotent
	}
	if !c.started.Load() {
		c.mu.Unlock()
		return ErrNotStarted
	}
	c.stopped = true
	c.started.Store(false)
	c.mu.Unlock()

	close(c.stopCh)
	<-c.doneCh

	c.cancel()

	// Bounded wait for in-flight hook goroutines.
	hooksDone := make(chan struct{})
	go func() {
		c.hookWG.Wait()
		close(hooksDone)
	}()
	select {
	case <-hooksDone:
	case <-time.After(c.cfg.ShutdownTimeout):
		c.logger.Warn("hooks still running at shutdown timeout")
	}

	c.bus.Close()
	c.logger.Info("coordinator stopped")

	return nil
}

// Heartbeat records a liveness signal for the user, creating or refreshing
// their presence entry.
//
// Parameters:
//   - ctx: Context (reserved; the operation itself never blocks)
//   - userID: User identity
//
// Returns:
//   - error: ErrMissingUserID or ErrNotStarted
func (c *Coordinator) Heartbeat(_ context.Context, userID string) error {
	if userID == "" {
		return ErrMissingUserID
	}
	if !c.started.Load() {
		return ErrNotStarted
	}

	c.registry.Record(userID, c.clock.Now())
	c.metrics.RecordHeartbeat(userID)
	c.metrics.SetOnlineUsers(c.registry.Count())

	return nil
}

// Login marks the user present (same as a heartbeat) and announces the
// login on the global topic.
//
// Parameters:
//   - ctx: Context (reserved)
//   - userID: User identity
//
// Returns:
//   - error: ErrMissingUserID or ErrNotStarted
func (c *Coordinator) Login(ctx context.Context, userID string) error {
	if err := c.Heartbeat(ctx, userID); err != nil {
		return err
	}

	c.logger.Info("user logged in", "user", userID)
	c.bus.Publish(types.TopicGlobal, types.Event{
		Kind:    types.KindLog,
		UserID:  userID,
		Message: fmt.Sprintf("%s logged in", userID),
	})

	return nil
}

// Logout removes the user's presence entry, clears all their claims, and
// publishes refreshed active-task views for every affected job plus a
// global log line.
//
// A task's claimant must be a present user, so any Present -> Absent
// transition clears claims; logout differs from eviction only in being
// voluntary (no FORCE_LOGOUT event).
//
// Logging out an absent user still clears stray claims and is never an
// error.
//
// Parameters:
//   - ctx: Context (reserved)
//   - userID: User identity
//
// Returns:
//   - error: ErrMissingUserID or ErrNotStarted
func (c *Coordinator) Logout(_ context.Context, userID string) error {
	if userID == "" {
		return ErrMissingUserID
	}
	if !c.started.Load() {
		return ErrNotStarted
	}

	c.registry.Remove(userID)
	c.metrics.SetOnlineUsers(c.registry.Count())

	affected := c.store.ClearUser(userID)
	for _, jobID := range affected {
		c.publishActiveTasks(jobID, types.KindTaskLeave, userID, "")
	}

	c.logger.Info("user logged out", "user", userID, "affected_jobs", len(affected))
	c.bus.Publish(types.TopicGlobal, types.Event{
		Kind:    types.KindLog,
		UserID:  userID,
		Message: fmt.Sprintf("%s logged out", userID),
	})

	return nil
}

// JoinJob announces that the user started viewing a job.
//
// No presence or assignment state changes; the event goes to both the
// job-scoped jobUpdate topic and the global topic. Unknown job IDs are not
// rejected here: join/leave is pure signalling.
//
// Parameters:
//   - ctx: Context (reserved)
//   - userID: User identity
//   - jobID: Job being viewed
//
// Returns:
//   - error: ErrMissingUserID, ErrMissingJobID or ErrNotStarted
func (c *Coordinator) JoinJob(_ context.Context, userID, jobID string) error {
	return c.publishJobPresence(types.KindJobJoin, userID, jobID, "joined")
}

// LeaveJob announces that the user stopped viewing a job.
//
// The mirror of JoinJob; see its documentation.
func (c *Coordinator) LeaveJob(_ context.Context, userID, jobID string) error {
	return c.publishJobPresence(types.KindJobLeave, userID, jobID, "left")
}

// publishJobPresence emits a join/leave event to the job topic and global.
func (c *Coordinator) publishJobPresence(kind types.ChangeKind, userID, jobID, verb string) error {
	if userID == "" {
		return ErrMissingUserID
	}
	if jobID == "" {
		return ErrMissingJobID
	}
	if !c.started.Load() {
		return ErrNotStarted
	}

	event := types.Event{
		Kind:    kind,
		UserID:  userID,
		JobID:   jobID,
		Message: fmt.Sprintf("%s %s job %s", userID, verb, jobID),
	}
	c.bus.Publish(types.JobUpdateTopic(jobID), event)
	c.bus.Publish(types.TopicGlobal, event)

	return nil
}

// JoinTask claims the task for the user and publishes the job's refreshed
// active-task view.
//
// Last-writer-wins: an existing claim by another user is silently
// superseded. The global topic receives a human-readable log line.
//
// Parameters:
//   - ctx: Context (reserved)
//   - userID: New claimant
//   - jobID: Owning job
//   - taskID: Task to claim
//
// Returns:
//   - error: ErrMissing* for absent identities, ErrJobNotFound /
//     ErrTaskNotFound for unknown references (no mutation happened), or
//     ErrNotStarted
func (c *Coordinator) JoinTask(_ context.Context, userID, jobID, taskID string) error {
	if err := validateTaskArgs(userID, jobID, taskID); err != nil {
		return err
	}
	if !c.started.Load() {
		return ErrNotStarted
	}

	active, err := c.store.Claim(jobID, taskID, userID)
	if err != nil {
		return err
	}

	c.metrics.RecordClaim(jobID)
	c.logger.Info("task claimed", "user", userID, "job", jobID, "task", taskID)

	c.bus.Publish(types.ActiveTasksTopic(jobID), types.Event{
		Kind:   types.KindTaskJoin,
		UserID: userID,
		JobID:  jobID,
		TaskID: taskID,
		Tasks:  active,
	})
	c.bus.Publish(types.TopicGlobal, types.Event{
		Kind:    types.KindLog,
		UserID:  userID,
		JobID:   jobID,
		TaskID:  taskID,
		Message: fmt.Sprintf("%s joined task %s in job %s", userID, taskID, jobID),
	})

	return nil
}

// LeaveTask releases the task's claim and publishes the refreshed view.
//
// Releasing a task that is not claimed is a silent no-op: no event is
// published. The claimant is not verified against userID — the permissive
// claim policy applies symmetrically.
//
// Parameters:
//   - ctx: Context (reserved)
//   - userID: User releasing the task (used for the log line only)
//   - jobID: Owning job
//   - taskID: Task to release
//
// Returns:
//   - error: ErrMissing*, ErrJobNotFound / ErrTaskNotFound, or ErrNotStarted
func (c *Coordinator) LeaveTask(_ context.Context, userID, jobID, taskID string) error {
	if err := validateTaskArgs(userID, jobID, taskID); err != nil {
		return err
	}
	if !c.started.Load() {
		return ErrNotStarted
	}

	active, changed, err := c.store.Release(jobID, taskID)
	if err != nil {
		return err
	}
	if !changed {
		return nil
	}

	c.metrics.RecordRelease(jobID)
	c.logger.Info("task released", "user", userID, "job", jobID, "task", taskID)

	c.bus.Publish(types.ActiveTasksTopic(jobID), types.Event{
		Kind:   types.KindTaskLeave,
		UserID: userID,
		JobID:  jobID,
		TaskID: taskID,
		Tasks:  active,
	})
	c.bus.Publish(types.TopicGlobal, types.Event{
		Kind:    types.KindLog,
		UserID:  userID,
		JobID:   jobID,
		TaskID:  taskID,
		Message: fmt.Sprintf("%s left task %s in job %s", userID, taskID, jobID),
	})

	return nil
}

// ClearAllAssignments clears every claim across every job, regardless of
// owner.
//
// Every job's activeTasks topic receives an empty-claims publish and the
// global topic receives exactly one ASSIGNMENTS_CLEARED event. This is the
// administrative counterpart of the per-user clear that eviction performs.
//
// Parameters:
//   - ctx: Context (reserved)
//
// Returns:
//   - error: ErrNotStarted
func (c *Coordinator) ClearAllAssignments(_ context.Context) error {
	if !c.started.Load() {
		return ErrNotStarted
	}

	jobIDs := c.store.ClearAll()
	for _, jobID := range jobIDs {
		c.bus.Publish(types.ActiveTasksTopic(jobID), types.Event{
			Kind:  types.KindAssignmentsCleared,
			JobID: jobID,
			Tasks: []types.Task{},
		})
	}

	c.logger.Info("all assignments cleared", "jobs", len(jobIDs))
	c.bus.Publish(types.TopicGlobal, types.Event{
		Kind:    types.KindAssignmentsCleared,
		Message: "all assignments cleared",
	})

	c.runHook(func(ctx context.Context, h *Hooks) error {
		if h.OnAssignmentsCleared == nil {
			return nil
		}
		return h.OnAssignmentsCleared(ctx)
	})

	return nil
}

// IsOnline reports whether the user currently has a live presence entry.
//
// Parameters:
//   - userID: User identity
//
// Returns:
//   - bool: true if present; unknown users are simply absent
func (c *Coordinator) IsOnline(userID string) bool {
	return c.registry.IsPresent(userID)
}

// OnlineUsers returns the IDs of all present users, sorted.
//
// Returns:
//   - []string: Sorted user IDs
func (c *Coordinator) OnlineUsers() []string {
	return c.registry.Online()
}

// ActiveTasks returns the job's currently claimed tasks in task order.
//
// Parameters:
//   - jobID: Job to inspect
//
// Returns:
//   - []Task: Snapshot of claimed tasks
//   - error: ErrJobNotFound, or ErrNotStarted before Start
func (c *Coordinator) ActiveTasks(jobID string) ([]Task, error) {
	if !c.started.Load() {
		return nil, ErrNotStarted
	}

	return c.store.ActiveTasks(jobID)
}

// Job returns a snapshot of one job including current claims.
//
// Parameters:
//   - jobID: Job to inspect
//
// Returns:
//   - Job: Deep copy of the job
//   - error: ErrJobNotFound, or ErrNotStarted before Start
func (c *Coordinator) Job(jobID string) (Job, error) {
	if !c.started.Load() {
		return Job{}, ErrNotStarted
	}

	return c.store.Job(jobID)
}

// Jobs returns snapshots of all jobs in catalog order.
//
// Returns:
//   - []Job: Deep copies including current claims (nil before Start)
func (c *Coordinator) Jobs() []Job {
	if !c.started.Load() {
		return nil
	}

	return c.store.Jobs()
}

// SubscribeGlobal attaches a subscriber to the global topic carrying
// administrative and log events.
//
// Returns:
//   - <-chan Event: Live event sequence
//   - func(): Cancel function releasing the subscription
func (c *Coordinator) SubscribeGlobal() (<-chan Event, func()) {
	return c.bus.Subscribe(types.TopicGlobal)
}

// SubscribeActiveTasks attaches a subscriber to one job's task-claim
// change topic.
//
// Parameters:
//   - jobID: Job whose claim changes to observe
//
// Returns:
//   - <-chan Event: Live event sequence
//   - func(): Cancel function releasing the subscription
func (c *Coordinator) SubscribeActiveTasks(jobID string) (<-chan Event, func()) {
	return c.bus.Subscribe(types.ActiveTasksTopic(jobID))
}

// SubscribeJobUpdates attaches a subscriber to one job's join/leave topic.
//
// Parameters:
//   - jobID: Job whose viewer changes to observe
//
// Returns:
//   - <-chan Event: Live event sequence
//   - func(): Cancel function releasing the subscription
func (c *Coordinator) SubscribeJobUpdates(jobID string) (<-chan Event, func()) {
	return c.bus.Subscribe(types.JobUpdateTopic(jobID))
}

// Bus exposes the underlying event bus for extensions such as the NATS
// bridge. Core callers should prefer the Subscribe* helpers.
//
// Returns:
//   - *bus.Bus: The coordinator's event bus
func (c *Coordinator) Bus() *bus.Bus {
	return c.bus
}

// sweepLoop periodically evicts users whose liveness signal went stale.
func (c *Coordinator) sweepLoop() {
	defer close(c.doneCh)

	ticker := time.NewTicker(c.cfg.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.evictExpired()
		case <-c.stopCh:
			return
		case <-c.ctx.Done():
			return
		}
	}
}

// evictExpired runs one sweep pass: every user silent longer than
// LivenessTimeout is removed, their claims cleared, and the changes
// published.
func (c *Coordinator) evictExpired() {
	expired := c.registry.SweepExpired(c.clock.Now(), c.cfg.LivenessTimeout)
	if len(expired) == 0 {
		return
	}

	c.metrics.RecordEviction(len(expired))
	c.metrics.SetOnlineUsers(c.registry.Count())

	for _, userID := range expired {
		// Claims cleared before the events go out: subscribers never see a
		// FORCE_LOGOUT for a user that still holds tasks.
		affected := c.store.ClearUser(userID)

		c.logger.Warn("user evicted after liveness timeout",
			"user", userID,
			"timeout", c.cfg.LivenessTimeout,
			"affected_jobs", len(affected),
		)

		c.bus.Publish(types.TopicGlobal, types.Event{
			Kind:    types.KindForceLogout,
			UserID:  userID,
			Message: fmt.Sprintf("%s was logged out after %s of inactivity", userID, c.cfg.LivenessTimeout),
		})

		for _, jobID := range affected {
			c.publishActiveTasks(jobID, types.KindTaskLeave, userID, "")
		}

		c.runHook(func(ctx context.Context, h *Hooks) error {
			if h.OnForceLogout == nil {
				return nil
			}
			return h.OnForceLogout(ctx, userID)
		})
	}
}

// publishActiveTasks publishes the job's refreshed active-task view.
func (c *Coordinator) publishActiveTasks(jobID string, kind types.ChangeKind, userID, taskID string) {
	active, err := c.store.ActiveTasks(jobID)
	if err != nil {
		// Only reachable if a job vanished, which the static catalog rules out.
		c.logger.Error("failed to read active tasks for publish", "job", jobID, "error", err)
		return
	}

	c.bus.Publish(types.ActiveTasksTopic(jobID), types.Event{
		Kind:   kind,
		UserID: userID,
		JobID:  jobID,
		TaskID: taskID,
		Tasks:  active,
	})
}

// runHook invokes a hook callback asynchronously, logging failures.
func (c *Coordinator) runHook(fn func(ctx context.Context, h *Hooks) error) {
	c.hookWG.Add(1)
	go func() {
		defer c.hookWG.Done()
		if err := fn(c.ctx, c.hooks); err != nil {
			c.logger.Error("hook failed", "error", err)
		}
	}()
}

// validateTaskArgs checks the identity triple for task operations.
func validateTaskArgs(userID, jobID, taskID string) error {
	if userID == "" {
		return ErrMissingUserID
	}
	if jobID == "" {
		return ErrMissingJobID
	}
	if taskID == "" {
		return ErrMissingTaskID
	}

	return nil
}
