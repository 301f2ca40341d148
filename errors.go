package huddle

import "github.com/lmiller1990/huddle/types"

// Sentinel errors returned by the Coordinator, re-exported from the types
// package so callers can use errors.Is against the huddle package directly.
var (
	// ErrInvalidConfig is returned when the configuration is invalid.
	ErrInvalidConfig = types.ErrInvalidConfig

	// ErrJobSourceRequired is returned when the job source is nil.
	ErrJobSourceRequired = types.ErrJobSourceRequired

	// ErrAlreadyStarted is returned when Start is called on a running coordinator.
	ErrAlreadyStarted = types.ErrAlreadyStarted

	// ErrNotStarted is returned when operations require a started coordinator.
	ErrNotStarted = types.ErrNotStarted

	// ErrMissingUserID is returned when an operation is missing the user identity.
	ErrMissingUserID = types.ErrMissingUserID

	// ErrMissingJobID is returned when an operation is missing the job identity.
	ErrMissingJobID = types.ErrMissingJobID

	// ErrMissingTaskID is returned when an operation is missing the task identity.
	ErrMissingTaskID = types.ErrMissingTaskID

	// ErrJobNotFound is returned when a job ID does not exist in the catalog.
	ErrJobNotFound = types.ErrJobNotFound

	// ErrTaskNotFound is returned when a task ID does not exist in its job.
	ErrTaskNotFound = types.ErrTaskNotFound

	// ErrDuplicateJob is returned when the catalog contains two jobs with the same ID.
	ErrDuplicateJob = types.ErrDuplicateJob
)

// IsNotFound reports whether err is a job or task lookup failure.
func IsNotFound(err error) bool {
	return types.IsNotFound(err)
}
