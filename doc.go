// Package huddle provides a presence and collaborative-assignment
// coordination engine for multi-user applications.
//
// Huddle tracks which users are online via heartbeats, lets users claim
// tasks within jobs with last-writer-wins semantics, and fans every state
// change out on an in-process, topic-based event bus. Users who stop
// heartbeating are evicted by a background sweep: their claims are cleared
// and a FORCE_LOGOUT event is published, so abandoned work never stays
// claimed.
//
// # Quick Start
//
// Basic usage with default settings:
//
//	import (
//	    "github.com/lmiller1990/huddle"
//	    "github.com/lmiller1990/huddle/source"
//	)
//
//	cfg := huddle.DefaultConfig()
//	src := source.NewStatic(jobs)
//
//	coord, err := huddle.New(&cfg, src)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := coord.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer coord.Stop()
//
//	// Keep users alive and claim work.
//	coord.Heartbeat(ctx, "alice")
//	coord.JoinTask(ctx, "alice", "job-1", "t1")
//
//	// Observe a job's claim changes.
//	events, cancel := coord.SubscribeActiveTasks("job-1")
//	defer cancel()
//
// # Key Features
//
//   - Heartbeat Liveness: Any heartbeat refreshes the user's liveness
//     window; a background sweep evicts users who go silent
//   - Last-Writer-Wins Claims: Claiming an already-claimed task silently
//     supersedes the previous claimant
//   - Scoped Event Topics: Per-job activeTasks and jobUpdate topics plus a
//     global topic for administrative events and log lines
//   - Publish-After-Mutate: Subscribers never observe a mutation without
//     its event, and events always carry the post-mutation view
//   - Non-Blocking Fanout: Slow subscribers drop events instead of
//     stalling publishers; ordering per topic is FIFO
//
// # Topics
//
// Three topic families carry every event:
//
//	global              administrative events and human-readable log lines
//	activeTasks:{jobID} the job's refreshed claim view on every change
//	jobUpdate:{jobID}   users joining and leaving the job's view
//
// # Advanced Usage
//
// Hooks, metrics and a custom logger:
//
//	hooks := &huddle.Hooks{
//	    OnForceLogout: func(ctx context.Context, userID string) error {
//	        return auditLog(ctx, userID)
//	    },
//	}
//
//	coord, err := huddle.New(&cfg, src,
//	    huddle.WithHooks(hooks),
//	    huddle.WithMetrics(myPrometheusCollector),
//	    huddle.WithLogger(zapLogger.Sugar()),
//	)
//
// The bridge subpackage mirrors events onto NATS subjects for consumers in
// other processes.
package huddle
