package types

import "context"

// JobSource supplies the job catalog at startup.
//
// The Coordinator reads the catalog exactly once during Start and treats it
// as immutable afterwards. Implementations may be backed by static
// configuration, files, or remote catalogs.
type JobSource interface {
	// ListJobs returns the full job catalog.
	//
	// Parameters:
	//   - ctx: Context for cancellation and deadline
	//
	// Returns:
	//   - []Job: All jobs with their ordered tasks
	//   - error: Nil on success, error if the catalog cannot be read
	ListJobs(ctx context.Context) ([]Job, error)
}
