package types

// Task is a unit of work inside a Job.
//
// Task IDs are unique only within their owning job; the composite
// (jobID, taskID) is the full identity. A task is claimed by at most one
// user at any instant, and a cleared claim is indistinguishable from a task
// that was never claimed.
type Task struct {
	// ID uniquely identifies the task within its job.
	ID string `json:"id" yaml:"id"`

	// Title is the display title.
	Title string `json:"title" yaml:"title"`

	// ClaimedBy is the ID of the user currently working the task, or empty
	// if unclaimed.
	ClaimedBy string `json:"claimedBy,omitempty" yaml:"claimedBy,omitempty"`
}

// Job is a named, ordered collection of tasks.
//
// Jobs are static configuration supplied by a JobSource at startup. Task
// order is preserved for display; it carries no correctness meaning.
type Job struct {
	// ID uniquely identifies the job.
	ID string `json:"id" yaml:"id"`

	// Title is the display title.
	Title string `json:"title" yaml:"title"`

	// Tasks is the ordered task list.
	Tasks []Task `json:"tasks" yaml:"tasks"`
}

// Clone returns a deep copy of the job.
//
// Returns:
//   - Job: Copy sharing no memory with the receiver
func (j Job) Clone() Job {
	out := j
	out.Tasks = make([]Task, len(j.Tasks))
	copy(out.Tasks, j.Tasks)

	return out
}
