package store

import (
	"fmt"
	"sync"

	"github.com/lmiller1990/huddle/types"
)

// jobState is one job's tasks guarded by its own lock.
type jobState struct {
	mu    sync.Mutex
	job   types.Job
	index map[string]int // taskID -> position in job.Tasks
}

// Store is the assignment state for a fixed job catalog.
//
// The jobs map is built once and never mutated afterwards, so lookups are
// lock-free; all task mutation happens under the owning job's lock.
type Store struct {
	jobs  map[string]*jobState
	order []string // catalog order for Jobs()
}

// New builds a store from the job catalog.
//
// Task claim fields present in the catalog are ignored; every task starts
// unclaimed.
//
// Parameters:
//   - jobs: Job catalog with ordered tasks
//
// Returns:
//   - *Store: Initialized store
//   - error: ErrDuplicateJob if two jobs share an ID
func New(jobs []types.Job) (*Store, error) {
	s := &Store{
		jobs:  make(map[string]*jobState, len(jobs)),
		order: make([]string, 0, len(jobs)),
	}

	for _, job := range jobs {
		if _, exists := s.jobs[job.ID]; exists {
			return nil, fmt.Errorf("%w: %q", types.ErrDuplicateJob, job.ID)
		}

		clone := job.Clone()
		index := make(map[string]int, len(clone.Tasks))
		for i := range clone.Tasks {
			clone.Tasks[i].ClaimedBy = ""
			index[clone.Tasks[i].ID] = i
		}

		s.jobs[job.ID] = &jobState{job: clone, index: index}
		s.order = append(s.order, job.ID)
	}

	return s, nil
}

// Claim binds the task to the user, superseding any prior claimant.
//
// Last-writer-wins: no optimistic-lock rejection, whoever claims last holds
// the task. Returns the job's refreshed active-task view so the caller can
// publish state and view as one logical step.
//
// Parameters:
//   - jobID: Owning job
//   - taskID: Task to claim
//   - userID: New claimant
//
// Returns:
//   - []types.Task: Claimed tasks of the job, in task order
//   - error: ErrJobNotFound or ErrTaskNotFound; no mutation on error
func (s *Store) Claim(jobID, taskID, userID string) ([]types.Task, error) {
	js, ok := s.jobs[jobID]
	if !ok {
		return nil, fmt.Errorf("%w: %q", types.ErrJobNotFound, jobID)
	}

	js.mu.Lock()
	defer js.mu.Unlock()

	i, ok := js.index[taskID]
	if !ok {
		return nil, fmt.Errorf("%w: %q in job %q", types.ErrTaskNotFound, taskID, jobID)
	}

	js.job.Tasks[i].ClaimedBy = userID

	return js.activeLocked(), nil
}

// Release clears the task's claimant if set.
//
// Releasing an unclaimed task is a no-op; the caller uses the changed flag
// to suppress spurious events.
//
// Parameters:
//   - jobID: Owning job
//   - taskID: Task to release
//
// Returns:
//   - []types.Task: Refreshed active-task view of the job
//   - bool: true if a claim was actually cleared
//   - error: ErrJobNotFound or ErrTaskNotFound
func (s *Store) Release(jobID, taskID string) ([]types.Task, bool, error) {
	js, ok := s.jobs[jobID]
	if !ok {
		return nil, false, fmt.Errorf("%w: %q", types.ErrJobNotFound, jobID)
	}

	js.mu.Lock()
	defer js.mu.Unlock()

	i, ok := js.index[taskID]
	if !ok {
		return nil, false, fmt.Errorf("%w: %q in job %q", types.ErrTaskNotFound, taskID, jobID)
	}

	changed := js.job.Tasks[i].ClaimedBy != ""
	js.job.Tasks[i].ClaimedBy = ""

	return js.activeLocked(), changed, nil
}

// ClearUser clears every claim held by the user across all jobs.
//
// Used by eviction and explicit logout. A user with no claims yields an
// empty result, never an error.
//
// Parameters:
//   - userID: Claimant whose claims are cleared
//
// Returns:
//   - []string: IDs of jobs that had at least one claim cleared, in catalog order
func (s *Store) ClearUser(userID string) []string {
	var affected []string
	for _, jobID := range s.order {
		js := s.jobs[jobID]

		js.mu.Lock()
		changed := false
		for i := range js.job.Tasks {
			if js.job.Tasks[i].ClaimedBy == userID {
				js.job.Tasks[i].ClaimedBy = ""
				changed = true
			}
		}
		js.mu.Unlock()

		if changed {
			affected = append(affected, jobID)
		}
	}

	return affected
}

// ClearAll clears every claim regardless of owner.
//
// This is the administrative clear: unlike ClearUser it is not scoped to
// one user.
//
// Returns:
//   - []string: All job IDs, in catalog order
func (s *Store) ClearAll() []string {
	for _, jobID := range s.order {
		js := s.jobs[jobID]

		js.mu.Lock()
		for i := range js.job.Tasks {
			js.job.Tasks[i].ClaimedBy = ""
		}
		js.mu.Unlock()
	}

	jobIDs := make([]string, len(s.order))
	copy(jobIDs, s.order)

	return jobIDs
}

// ActiveTasks returns the job's currently claimed tasks in task order.
//
// Parameters:
//   - jobID: Job to inspect
//
// Returns:
//   - []types.Task: Snapshot of claimed tasks (safe to retain)
//   - error: ErrJobNotFound for unknown jobs
func (s *Store) ActiveTasks(jobID string) ([]types.Task, error) {
	js, ok := s.jobs[jobID]
	if !ok {
		return nil, fmt.Errorf("%w: %q", types.ErrJobNotFound, jobID)
	}

	js.mu.Lock()
	defer js.mu.Unlock()

	return js.activeLocked(), nil
}

// Job returns a snapshot of one job including current claims.
//
// Parameters:
//   - jobID: Job to inspect
//
// Returns:
//   - types.Job: Deep copy of the job
//   - error: ErrJobNotFound for unknown jobs
func (s *Store) Job(jobID string) (types.Job, error) {
	js, ok := s.jobs[jobID]
	if !ok {
		return types.Job{}, fmt.Errorf("%w: %q", types.ErrJobNotFound, jobID)
	}

	js.mu.Lock()
	defer js.mu.Unlock()

	return js.job.Clone(), nil
}

// Jobs returns snapshots of all jobs in catalog order.
//
// Returns:
//   - []types.Job: Deep copies including current claims
func (s *Store) Jobs() []types.Job {
	out := make([]types.Job, 0, len(s.order))
	for _, jobID := range s.order {
		js := s.jobs[jobID]

		js.mu.Lock()
		out = append(out, js.job.Clone())
		js.mu.Unlock()
	}

	return out
}

// activeLocked returns the claimed tasks snapshot. Caller holds js.mu.
func (js *jobState) activeLocked() []types.Task {
	active := make([]types.Task, 0, len(js.job.Tasks))
	for _, task := range js.job.Tasks {
		if task.ClaimedBy != "" {
			active = append(active, task)
		}
	}

	return active
}
