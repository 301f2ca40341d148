package source

import (
	"context"
	"sync"

	"github.com/lmiller1990/huddle/types"
)

// Static implements a job source with a fixed catalog.
type Static struct {
	mu   sync.RWMutex
	jobs []types.Job
}

var _ types.JobSource = (*Static)(nil)

// NewStatic creates a new static job source.
//
// The source returns a fixed catalog that never changes. Useful for testing
// and scenarios where jobs are known at startup.
//
// Parameters:
//   - jobs: Fixed job catalog
//
// Returns:
//   - *Static: Initialized static source
//
// Example:
//
//	jobs := []types.Job{
//	    {ID: "morning-chores", Title: "Morning Chores", Tasks: []types.Task{
//	        {ID: "task-1", Title: "Dishes"},
//	    }},
//	}
//	src := source.NewStatic(jobs)
//	coord, err := huddle.New(&cfg, src)
//	if err != nil { /* handle */ }
func NewStatic(jobs []types.Job) *Static {
	s := &Static{}
	s.Update(jobs)

	return s
}

// ListJobs returns the static catalog.
//
// Returns:
//   - []types.Job: Deep copies of the configured jobs
//   - error: Always nil (never fails)
func (s *Static) ListJobs(_ context.Context) ([]types.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]types.Job, len(s.jobs))
	for i, job := range s.jobs {
		result[i] = job.Clone()
	}

	return result, nil
}

// Update replaces the catalog.
//
// Only affects coordinators constructed afterwards; a started Coordinator
// has already taken its snapshot.
//
// Parameters:
//   - jobs: New job catalog
func (s *Static) Update(jobs []types.Job) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.jobs = make([]types.Job, len(jobs))
	for i, job := range jobs {
		s.jobs[i] = job.Clone()
	}
}
