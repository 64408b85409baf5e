// Package eventstore persists the hook firings of a build as an append-only
// journal, keyed by build ID. The journal is diagnostic: builds never read it
// back as a source of truth.
package eventstore

import (
	"context"
	"time"
)

// Event is one recorded hook firing.
type Event struct {
	ID        int64
	BuildID   string
	Hook      string
	Timestamp time.Time
}

// Store is the journal interface the hook registry writes through.
type Store interface {
	// Append records a hook firing for the given build.
	Append(ctx context.Context, buildID, hook string) error

	// ByBuild returns all events recorded for a build, oldest first.
	ByBuild(ctx context.Context, buildID string) ([]Event, error)

	// Close releases the underlying storage.
	Close() error
}
