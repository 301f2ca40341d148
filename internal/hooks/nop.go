// Package hooks provides default Hooks implementations.
package hooks

import (
	"context"

	"github.com/lmiller1990/huddle/types"
)

// NewNop returns Hooks whose callbacks do nothing.
//
// Using explicit no-op callbacks instead of nil function fields lets the
// Coordinator invoke hooks unconditionally.
//
// Returns:
//   - types.Hooks: Hooks with no-op callbacks
func NewNop() types.Hooks {
	return types.Hooks{
		OnForceLogout: func(_ context.Context, _ string) error {
			return nil
		},
		OnAssignmentsCleared: func(_ context.Context) error {
			return nil
		},
	}
}
