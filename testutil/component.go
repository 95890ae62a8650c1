package testutil

import (
	"context"

	"github.com/kbukum/socialauth/component"
)

// TestComponent extends component.Component with state control for tests.
type TestComponent interface {
	component.Component

	// Reset returns the component to its initial state.
	Reset(ctx context.Context) error
	// Snapshot captures the current state.
	Snapshot(ctx context.Context) (interface{}, error)
	// Restore returns the component to a state taken with Snapshot.
	Restore(ctx context.Context, snapshot interface{}) error
}
