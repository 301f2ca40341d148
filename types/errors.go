package types

import "errors"

// Sentinel errors for the Huddle library.
//
// These errors provide type-safe error checking using errors.Is() and
// errors.As(). All components should use these sentinel errors for known
// error conditions and wrap external errors with context using
// fmt.Errorf("%s: %w", msg, err).

// Coordinator errors - Public API errors returned by the Coordinator.
var (
	// ErrInvalidConfig is returned when the configuration is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrJobSourceRequired is returned when the job source is nil.
	ErrJobSourceRequired = errors.New("job source is required")

	// ErrAlreadyStarted is returned when Start is called on a running coordinator.
	ErrAlreadyStarted = errors.New("coordinator already started")

	// ErrNotStarted is returned when operations require a started coordinator.
	ErrNotStarted = errors.New("coordinator not started")

	// ErrMissingUserID is returned when an operation is missing the user identity.
	ErrMissingUserID = errors.New("user ID is required")

	// ErrMissingJobID is returned when an operation is missing the job identity.
	ErrMissingJobID = errors.New("job ID is required")

	// ErrMissingTaskID is returned when an operation is missing the task identity.
	ErrMissingTaskID = errors.New("task ID is required")
)

// Store errors - Assignment store lookup failures.
var (
	// ErrJobNotFound is returned when a job ID does not exist in the catalog.
	ErrJobNotFound = errors.New("job not found")

	// ErrTaskNotFound is returned when a task ID does not exist in its job.
	ErrTaskNotFound = errors.New("task not found")

	// ErrDuplicateJob is returned when the catalog contains two jobs with
	// the same ID.
	ErrDuplicateJob = errors.New("duplicate job ID in catalog")
)

// IsNotFound reports whether err is a job or task lookup failure.
//
// Parameters:
//   - err: The error to check
//
// Returns:
//   - bool: true if err wraps ErrJobNotFound or ErrTaskNotFound
func IsNotFound(err error) bool {
	return errors.Is(err, ErrJobNotFound) || errors.Is(err, ErrTaskNotFound)
}
