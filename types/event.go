package types

import "fmt"

// ChangeKind classifies the state change an Event describes.
type ChangeKind string

// Change kinds published by the Coordinator.
const (
	// KindJobJoin indicates a user started viewing a job.
	KindJobJoin ChangeKind = "JOB_JOIN"

	// KindJobLeave indicates a user stopped viewing a job.
	KindJobLeave ChangeKind = "JOB_LEAVE"

	// KindTaskJoin indicates a user claimed a task.
	KindTaskJoin ChangeKind = "TASK_JOIN"

	// KindTaskLeave indicates a task claim was released.
	KindTaskLeave ChangeKind = "TASK_LEAVE"

	// KindForceLogout indicates a user was evicted after their liveness
	// signal went stale.
	KindForceLogout ChangeKind = "FORCE_LOGOUT"

	// KindAssignmentsCleared indicates the administrative clear-all
	// operation removed every claim.
	KindAssignmentsCleared ChangeKind = "ASSIGNMENTS_CLEARED"

	// KindLog carries a human-readable log line on the global topic with no
	// structured state change attached.
	KindLog ChangeKind = "LOG"
)

// Event is an immutable record of a state change, delivered to bus
// subscribers. Fields other than Topic and Kind are populated depending on
// the kind; Tasks carries a snapshot and is never shared between
// subscribers' mutations (subscribers must treat it as read-only).
type Event struct {
	// Topic is the bus topic this event was published to.
	Topic string `json:"topic"`

	// Kind classifies the change.
	Kind ChangeKind `json:"kind"`

	// UserID identifies the user that triggered the change, when applicable.
	UserID string `json:"userId,omitempty"`

	// JobID identifies the affected job, when applicable.
	JobID string `json:"jobId,omitempty"`

	// TaskID identifies the affected task, when applicable.
	TaskID string `json:"taskId,omitempty"`

	// Tasks is the refreshed active-task view of JobID after the change.
	// Present on activeTasks topic events.
	Tasks []Task `json:"tasks,omitempty"`

	// Message is a human-readable description, present on global topic
	// events.
	Message string `json:"message,omitempty"`
}

// TopicGlobal is the topic carrying administrative and log events for the
// whole process.
const TopicGlobal = "global"

// ActiveTasksTopic returns the topic carrying task-claim changes scoped to
// one job.
func ActiveTasksTopic(jobID string) string {
	return fmt.Sprintf("activeTasks:%s", jobID)
}

// JobUpdateTopic returns the topic carrying join/leave changes scoped to one
// job.
func JobUpdateTopic(jobID string) string {
	return fmt.Sprintf("jobUpdate:%s", jobID)
}
