package huddle_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/lmiller1990/huddle"
	"github.com/lmiller1990/huddle/source"
	huddletesting "github.com/lmiller1990/huddle/testing"
	"github.com/lmiller1990/huddle/types"
)

func testCatalog() []types.Job {
	return []types.Job{
		{
			ID:    "job-1",
			Title: "Paint the fence",
			Tasks: []types.Task{
				{ID: "t1", Title: "Sand"},
				{ID: "t2", Title: "Prime"},
				{ID: "t3", Title: "Paint"},
			},
		},
		{
			ID:    "job-2",
			Title: "Mow the lawn",
			Tasks: []types.Task{
				{ID: "t1", Title: "Front yard"},
				{ID: "t2", Title: "Back yard"},
			},
		},
	}
}

type testHarness struct {
	coord *huddle.Coordinator
	clock *huddletesting.Clock
}

func newTestCoordinator(t *testing.T, opts ...huddle.Option) *testHarness {
	t.Helper()

	cfg := huddle.TestConfig()
	clock := huddletesting.NewClock(time.Unix(1000, 0))

	opts = append(opts,
		huddle.WithClock(clock),
		huddle.WithLogger(huddletesting.NewTestLogger(t)),
	)

	coord, err := huddle.New(&cfg, source.NewStatic(testCatalog()), opts...)
	require.NoError(t, err)
	require.NoError(t, coord.Start(context.Background()))
	t.Cleanup(func() {
		_ = coord.Stop()
	})

	return &testHarness{coord: coord, clock: clock}
}

// drainUntil reads events from ch until pred matches or the timeout elapses.
func drainUntil(t *testing.T, ch <-chan types.Event, pred func(types.Event) bool) types.Event {
	t.Helper()

	deadline := time.After(2 * time.Second)
	for {
		select {
		case ev, ok := <-ch:
			require.True(t, ok, "subscription closed while waiting for event")
			if pred(ev) {
				return ev
			}
		case <-deadline:
			t.Fatal("timed out waiting for event")
			return types.Event{}
		}
	}
}

func TestNew(t *testing.T) {
	t.Run("nil config", func(t *testing.T) {
		_, err := huddle.New(nil, source.NewStatic(nil))
		require.ErrorIs(t, err, huddle.ErrInvalidConfig)
	})

	t.Run("nil source", func(t *testing.T) {
		cfg := huddle.TestConfig()
		_, err := huddle.New(&cfg, nil)
		require.ErrorIs(t, err, huddle.ErrJobSourceRequired)
	})

	t.Run("invalid config", func(t *testing.T) {
		cfg := huddle.TestConfig()
		cfg.LivenessTimeout = cfg.SweepInterval // below 2x floor
		_, err := huddle.New(&cfg, source.NewStatic(testCatalog()))
		require.Error(t, err)
	})

	t.Run("defaults applied", func(t *testing.T) {
		cfg := huddle.Config{}
		coord, err := huddle.New(&cfg, source.NewStatic(testCatalog()))
		require.NoError(t, err)
		require.NotNil(t, coord)
		require.Equal(t, huddle.DefaultConfig().SweepInterval, cfg.SweepInterval)
	})
}

func TestLifecycle(t *testing.T) {
	t.Run("double start", func(t *testing.T) {
		cfg := huddle.TestConfig()
		coord, err := huddle.New(&cfg, source.NewStatic(testCatalog()))
		require.NoError(t, err)

		require.NoError(t, coord.Start(context.Background()))
		require.ErrorIs(t, coord.Start(context.Background()), huddle.ErrAlreadyStarted)
		require.NoError(t, coord.Stop())
	})

	t.Run("stop before start", func(t *testing.T) {
		cfg := huddle.TestConfig()
		coord, err := huddle.New(&cfg, source.NewStatic(testCatalog()))
		require.NoError(t, err)
		require.ErrorIs(t, coord.Stop(), huddle.ErrNotStarted)
	})

	t.Run("stop is idempotent", func(t *testing.T) {
		cfg := huddle.TestConfig()
		coord, err := huddle.New(&cfg, source.NewStatic(testCatalog()))
		require.NoError(t, err)
		require.NoError(t, coord.Start(context.Background()))
		require.NoError(t, coord.Stop())
		require.NoError(t, coord.Stop())
	})

	t.Run("no restart after stop", func(t *testing.T) {
		cfg := huddle.TestConfig()
		coord, err := huddle.New(&cfg, source.NewStatic(testCatalog()))
		require.NoError(t, err)
		require.NoError(t, coord.Start(context.Background()))
		require.NoError(t, coord.Stop())
		require.ErrorIs(t, coord.Start(context.Background()), huddle.ErrAlreadyStarted)
	})

	t.Run("operations before start", func(t *testing.T) {
		cfg := huddle.TestConfig()
		coord, err := huddle.New(&cfg, source.NewStatic(testCatalog()))
		require.NoError(t, err)

		ctx := context.Background()
		require.ErrorIs(t, coord.Heartbeat(ctx, "alice"), huddle.ErrNotStarted)
		require.ErrorIs(t, coord.JoinTask(ctx, "alice", "job-1", "t1"), huddle.ErrNotStarted)
		_, err = coord.ActiveTasks("job-1")
		require.ErrorIs(t, err, huddle.ErrNotStarted)
	})

	t.Run("subscriptions closed on stop", func(t *testing.T) {
		cfg := huddle.TestConfig()
		coord, err := huddle.New(&cfg, source.NewStatic(testCatalog()))
		require.NoError(t, err)
		require.NoError(t, coord.Start(context.Background()))

		ch, _ := coord.SubscribeGlobal()
		require.NoError(t, coord.Stop())

		require.Eventually(t, func() bool {
			_, ok := <-ch
			return !ok
		}, time.Second, 10*time.Millisecond)
	})

	t.Run("catalog load failure", func(t *testing.T) {
		cfg := huddle.TestConfig()
		catalog := testCatalog()
		catalog = append(catalog, catalog[0]) // duplicate job ID
		coord, err := huddle.New(&cfg, source.NewStatic(catalog))
		require.NoError(t, err)
		require.ErrorIs(t, coord.Start(context.Background()), huddle.ErrDuplicateJob)
	})
}

func TestPresence(t *testing.T) {
	t.Run("heartbeat marks online", func(t *testing.T) {
		h := newTestCoordinator(t)
		ctx := context.Background()

		require.False(t, h.coord.IsOnline("alice"))
		require.NoError(t, h.coord.Heartbeat(ctx, "alice"))
		require.True(t, h.coord.IsOnline("alice"))
		require.Equal(t, []string{"alice"}, h.coord.OnlineUsers())
	})

	t.Run("empty user rejected", func(t *testing.T) {
		h := newTestCoordinator(t)
		require.ErrorIs(t, h.coord.Heartbeat(context.Background(), ""), huddle.ErrMissingUserID)
	})

	t.Run("login announces on global", func(t *testing.T) {
		h := newTestCoordinator(t)
		ch, cancel := h.coord.SubscribeGlobal()
		defer cancel()

		require.NoError(t, h.coord.Login(context.Background(), "alice"))
		require.True(t, h.coord.IsOnline("alice"))

		ev := drainUntil(t, ch, func(ev types.Event) bool {
			return ev.Kind == types.KindLog && ev.UserID == "alice"
		})
		require.Contains(t, ev.Message, "logged in")
	})

	t.Run("logout removes presence", func(t *testing.T) {
		h := newTestCoordinator(t)
		ctx := context.Background()

		require.NoError(t, h.coord.Heartbeat(ctx, "alice"))
		require.NoError(t, h.coord.Logout(ctx, "alice"))
		require.False(t, h.coord.IsOnline("alice"))
	})

	t.Run("logout of absent user is no error", func(t *testing.T) {
		h := newTestCoordinator(t)
		require.NoError(t, h.coord.Logout(context.Background(), "ghost"))
	})
}

// Scenario: a user stops heartbeating; the next sweep after the liveness
// window evicts them, clears their claims, and publishes FORCE_LOGOUT plus
// refreshed views on every affected job.
func TestEviction(t *testing.T) {
	t.Run("stale user evicted with claims cleared", func(t *testing.T) {
		var forcedOut []string
		hookCh := make(chan string, 4)
		h := newTestCoordinator(t, huddle.WithHooks(&huddle.Hooks{
			OnForceLogout: func(_ context.Context, userID string) error {
				hookCh <- userID
				return nil
			},
		}))
		ctx := context.Background()

		require.NoError(t, h.coord.Heartbeat(ctx, "alice"))
		require.NoError(t, h.coord.JoinTask(ctx, "alice", "job-1", "t1"))
		require.NoError(t, h.coord.JoinTask(ctx, "alice", "job-2", "t2"))

		global, cancelGlobal := h.coord.SubscribeGlobal()
		defer cancelGlobal()
		job1, cancelJob1 := h.coord.SubscribeActiveTasks("job-1")
		defer cancelJob1()
		job2, cancelJob2 := h.coord.SubscribeActiveTasks("job-2")
		defer cancelJob2()

		// Push simulated time past the liveness window; the real ticker
		// drives the sweep.
		h.clock.Advance(huddle.TestConfig().LivenessTimeout + time.Millisecond)

		ev := drainUntil(t, global, func(ev types.Event) bool {
			return ev.Kind == types.KindForceLogout
		})
		require.Equal(t, "alice", ev.UserID)

		ev = drainUntil(t, job1, func(ev types.Event) bool {
			return ev.Kind == types.KindTaskLeave
		})
		require.Empty(t, ev.Tasks)

		ev = drainUntil(t, job2, func(ev types.Event) bool {
			return ev.Kind == types.KindTaskLeave
		})
		require.Empty(t, ev.Tasks)

		require.False(t, h.coord.IsOnline("alice"))

		active, err := h.coord.ActiveTasks("job-1")
		require.NoError(t, err)
		require.Empty(t, active)

		select {
		case u := <-hookCh:
			forcedOut = append(forcedOut, u)
		case <-time.After(2 * time.Second):
			t.Fatal("OnForceLogout hook never fired")
		}
		require.Equal(t, []string{"alice"}, forcedOut)
	})

	t.Run("heartbeat resets the window", func(t *testing.T) {
		h := newTestCoordinator(t)
		ctx := context.Background()
		timeout := huddle.TestConfig().LivenessTimeout

		require.NoError(t, h.coord.Heartbeat(ctx, "alice"))

		// Keep heartbeating just inside the window across several sweeps.
		for i := 0; i < 5; i++ {
			h.clock.Advance(timeout / 2)
			require.NoError(t, h.coord.Heartbeat(ctx, "alice"))
			time.Sleep(3 * huddle.TestConfig().SweepInterval)
			require.True(t, h.coord.IsOnline("alice"))
		}
	})

	t.Run("unaffected jobs receive nothing", func(t *testing.T) {
		h := newTestCoordinator(t)
		ctx := context.Background()

		require.NoError(t, h.coord.Heartbeat(ctx, "alice"))
		require.NoError(t, h.coord.JoinTask(ctx, "alice", "job-1", "t1"))

		job2, cancel := h.coord.SubscribeActiveTasks("job-2")
		defer cancel()
		global, cancelGlobal := h.coord.SubscribeGlobal()
		defer cancelGlobal()

		h.clock.Advance(huddle.TestConfig().LivenessTimeout + time.Millisecond)

		drainUntil(t, global, func(ev types.Event) bool {
			return ev.Kind == types.KindForceLogout
		})

		select {
		case ev := <-job2:
			t.Fatalf("job-2 should stay quiet, got %+v", ev)
		case <-time.After(5 * huddle.TestConfig().SweepInterval):
		}
	})
}

func TestTaskClaims(t *testing.T) {
	ctx := context.Background()

	t.Run("join publishes refreshed view", func(t *testing.T) {
		h := newTestCoordinator(t)
		ch, cancel := h.coord.SubscribeActiveTasks("job-1")
		defer cancel()

		require.NoError(t, h.coord.JoinTask(ctx, "alice", "job-1", "t1"))

		ev := drainUntil(t, ch, func(ev types.Event) bool {
			return ev.Kind == types.KindTaskJoin
		})
		require.Equal(t, "alice", ev.UserID)
		require.Equal(t, "t1", ev.TaskID)
		require.Len(t, ev.Tasks, 1)
		require.Equal(t, "alice", ev.Tasks[0].ClaimedBy)
	})

	t.Run("last writer wins", func(t *testing.T) {
		h := newTestCoordinator(t)

		require.NoError(t, h.coord.JoinTask(ctx, "alice", "job-1", "t1"))
		require.NoError(t, h.coord.JoinTask(ctx, "bob", "job-1", "t1"))

		active, err := h.coord.ActiveTasks("job-1")
		require.NoError(t, err)
		require.Len(t, active, 1)
		require.Equal(t, "bob", active[0].ClaimedBy)
	})

	t.Run("active tasks follow catalog order", func(t *testing.T) {
		h := newTestCoordinator(t)

		require.NoError(t, h.coord.JoinTask(ctx, "carol", "job-1", "t3"))
		require.NoError(t, h.coord.JoinTask(ctx, "alice", "job-1", "t1"))

		active, err := h.coord.ActiveTasks("job-1")
		require.NoError(t, err)
		require.Len(t, active, 2)
		require.Equal(t, "t1", active[0].ID)
		require.Equal(t, "t3", active[1].ID)
	})

	t.Run("leave releases claim", func(t *testing.T) {
		h := newTestCoordinator(t)
		ch, cancel := h.coord.SubscribeActiveTasks("job-1")
		defer cancel()

		require.NoError(t, h.coord.JoinTask(ctx, "alice", "job-1", "t1"))
		require.NoError(t, h.coord.LeaveTask(ctx, "alice", "job-1", "t1"))

		ev := drainUntil(t, ch, func(ev types.Event) bool {
			return ev.Kind == types.KindTaskLeave
		})
		require.Empty(t, ev.Tasks)
	})

	t.Run("leave of unclaimed task publishes nothing", func(t *testing.T) {
		h := newTestCoordinator(t)
		ch, cancel := h.coord.SubscribeActiveTasks("job-1")
		defer cancel()

		require.NoError(t, h.coord.LeaveTask(ctx, "alice", "job-1", "t1"))

		select {
		case ev := <-ch:
			t.Fatalf("expected no event, got %+v", ev)
		case <-time.After(50 * time.Millisecond):
		}
	})

	t.Run("unknown references rejected without mutation", func(t *testing.T) {
		h := newTestCoordinator(t)

		err := h.coord.JoinTask(ctx, "alice", "nope", "t1")
		require.ErrorIs(t, err, huddle.ErrJobNotFound)
		require.True(t, huddle.IsNotFound(err))

		err = h.coord.JoinTask(ctx, "alice", "job-1", "nope")
		require.ErrorIs(t, err, huddle.ErrTaskNotFound)

		active, err := h.coord.ActiveTasks("job-1")
		require.NoError(t, err)
		require.Empty(t, active)
	})

	t.Run("missing identities rejected", func(t *testing.T) {
		h := newTestCoordinator(t)

		require.ErrorIs(t, h.coord.JoinTask(ctx, "", "job-1", "t1"), huddle.ErrMissingUserID)
		require.ErrorIs(t, h.coord.JoinTask(ctx, "alice", "", "t1"), huddle.ErrMissingJobID)
		require.ErrorIs(t, h.coord.JoinTask(ctx, "alice", "job-1", ""), huddle.ErrMissingTaskID)
	})

	t.Run("logout clears claims across jobs", func(t *testing.T) {
		h := newTestCoordinator(t)
		job1, cancel1 := h.coord.SubscribeActiveTasks("job-1")
		defer cancel1()
		job2, cancel2 := h.coord.SubscribeActiveTasks("job-2")
		defer cancel2()

		require.NoError(t, h.coord.Heartbeat(ctx, "alice"))
		require.NoError(t, h.coord.JoinTask(ctx, "alice", "job-1", "t2"))
		require.NoError(t, h.coord.JoinTask(ctx, "alice", "job-2", "t1"))
		require.NoError(t, h.coord.Logout(ctx, "alice"))

		for _, ch := range []<-chan types.Event{job1, job2} {
			ev := drainUntil(t, ch, func(ev types.Event) bool {
				return ev.Kind == types.KindTaskLeave
			})
			require.Empty(t, ev.Tasks)
		}
	})
}

func TestClearAllAssignments(t *testing.T) {
	ctx := context.Background()

	t.Run("clears every job and publishes once globally", func(t *testing.T) {
		cleared := make(chan struct{}, 1)
		h := newTestCoordinator(t, huddle.WithHooks(&huddle.Hooks{
			OnAssignmentsCleared: func(context.Context) error {
				cleared <- struct{}{}
				return nil
			},
		}))

		require.NoError(t, h.coord.JoinTask(ctx, "alice", "job-1", "t1"))
		require.NoError(t, h.coord.JoinTask(ctx, "bob", "job-2", "t2"))

		global, cancelGlobal := h.coord.SubscribeGlobal()
		defer cancelGlobal()
		job1, cancel1 := h.coord.SubscribeActiveTasks("job-1")
		defer cancel1()
		job2, cancel2 := h.coord.SubscribeActiveTasks("job-2")
		defer cancel2()

		require.NoError(t, h.coord.ClearAllAssignments(ctx))

		for _, ch := range []<-chan types.Event{job1, job2} {
			ev := drainUntil(t, ch, func(ev types.Event) bool {
				return ev.Kind == types.KindAssignmentsCleared
			})
			require.NotNil(t, ev.Tasks)
			require.Empty(t, ev.Tasks)
		}

		drainUntil(t, global, func(ev types.Event) bool {
			return ev.Kind == types.KindAssignmentsCleared
		})

		// Exactly one global ASSIGNMENTS_CLEARED event.
		select {
		case ev := <-global:
			require.NotEqual(t, types.KindAssignmentsCleared, ev.Kind)
		case <-time.After(50 * time.Millisecond):
		}

		for _, jobID := range []string{"job-1", "job-2"} {
			active, err := h.coord.ActiveTasks(jobID)
			require.NoError(t, err)
			require.Empty(t, active)
		}

		select {
		case <-cleared:
		case <-time.After(2 * time.Second):
			t.Fatal("OnAssignmentsCleared hook never fired")
		}
	})
}

func TestJobPresenceEvents(t *testing.T) {
	ctx := context.Background()

	t.Run("join and leave announced on job and global topics", func(t *testing.T) {
		h := newTestCoordinator(t)
		jobCh, cancelJob := h.coord.SubscribeJobUpdates("job-1")
		defer cancelJob()
		global, cancelGlobal := h.coord.SubscribeGlobal()
		defer cancelGlobal()

		require.NoError(t, h.coord.JoinJob(ctx, "alice", "job-1"))
		require.NoError(t, h.coord.LeaveJob(ctx, "alice", "job-1"))

		ev := drainUntil(t, jobCh, func(ev types.Event) bool { return ev.Kind == types.KindJobJoin })
		require.Equal(t, "alice", ev.UserID)
		require.Equal(t, "job-1", ev.JobID)

		drainUntil(t, jobCh, func(ev types.Event) bool { return ev.Kind == types.KindJobLeave })
		drainUntil(t, global, func(ev types.Event) bool { return ev.Kind == types.KindJobJoin })
		drainUntil(t, global, func(ev types.Event) bool { return ev.Kind == types.KindJobLeave })
	})

	t.Run("unknown job is pure signalling", func(t *testing.T) {
		h := newTestCoordinator(t)
		require.NoError(t, h.coord.JoinJob(ctx, "alice", "not-in-catalog"))
	})
}

func TestReadViews(t *testing.T) {
	ctx := context.Background()

	t.Run("job snapshot is isolated", func(t *testing.T) {
		h := newTestCoordinator(t)

		job, err := h.coord.Job("job-1")
		require.NoError(t, err)
		job.Tasks[0].ClaimedBy = "mallory"

		fresh, err := h.coord.Job("job-1")
		require.NoError(t, err)
		require.Empty(t, fresh.Tasks[0].ClaimedBy)
	})

	t.Run("jobs in catalog order with claims", func(t *testing.T) {
		h := newTestCoordinator(t)
		require.NoError(t, h.coord.JoinTask(ctx, "alice", "job-2", "t1"))

		jobs := h.coord.Jobs()
		require.Len(t, jobs, 2)
		require.Equal(t, "job-1", jobs[0].ID)
		require.Equal(t, "job-2", jobs[1].ID)
		require.Equal(t, "alice", jobs[1].Tasks[0].ClaimedBy)
	})

	t.Run("unknown job", func(t *testing.T) {
		h := newTestCoordinator(t)
		_, err := h.coord.Job("nope")
		require.ErrorIs(t, err, huddle.ErrJobNotFound)
	})
}
