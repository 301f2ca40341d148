package huddle

import "github.com/lmiller1990/huddle/types"

// Re-export types from the internal types package.
//
// This file provides a stable public API for the library's core types and
// interfaces. It uses type aliases to re-export definitions from the `types`
// subpackage, which contains the actual implementations.
//
// This pattern solves the "import cycle" problem by allowing internal
// packages to depend on `types` without depending on the root `huddle`
// package, while still providing a convenient `huddle.Event`,
// `huddle.Logger`, etc. for users.
type (
	Event      = types.Event
	ChangeKind = types.ChangeKind
	Job        = types.Job
	Task       = types.Task
)

// Re-export interfaces from the internal types package for convenience.
type (
	JobSource        = types.JobSource
	Clock            = types.Clock
	MetricsCollector = types.MetricsCollector
	Logger           = types.Logger
	Hooks            = types.Hooks
)

// Re-export ChangeKind constants from the internal types package.
const (
	KindJobJoin            = types.KindJobJoin
	KindJobLeave           = types.KindJobLeave
	KindTaskJoin           = types.KindTaskJoin
	KindTaskLeave          = types.KindTaskLeave
	KindForceLogout        = types.KindForceLogout
	KindAssignmentsCleared = types.KindAssignmentsCleared
	KindLog                = types.KindLog
)

// TopicGlobal is re-exported for subscribers using the bus directly.
const TopicGlobal = types.TopicGlobal
