// Package store holds the shared assignment state: which user is working
// which task, within which job.
//
// The job catalog is fixed at construction. Claims use a permissive
// last-writer-wins policy: claiming an already-claimed task silently
// supersedes the prior claimant. Concurrent claims to the same task
// serialize on the owning job's lock, so one write always wins entirely.
//
// Locking is per job. Claims in unrelated jobs never contend.
package store
