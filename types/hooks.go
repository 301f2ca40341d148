package types

import "context"

// Hooks defines callbacks for Coordinator lifecycle events.
//
// All hooks are optional and called asynchronously in background goroutines
// so they never delay the mutation → publish sequence. The context passed to
// hooks is the Coordinator's lifecycle context and is cancelled on Stop.
//
// Hook errors are logged but never fail the triggering operation.
//
// Best practices for hook implementation:
//   - Complete quickly (< 1 second recommended)
//   - Respect context cancellation
//   - Make hooks idempotent (may be observed after Stop begins)
type Hooks struct {
	// OnForceLogout is called after the sweep evicts a user and their
	// claims have been cleared.
	OnForceLogout func(ctx context.Context, userID string) error

	// OnAssignmentsCleared is called after the administrative clear-all
	// operation completes.
	OnAssignmentsCleared func(ctx context.Context) error
}
