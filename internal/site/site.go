// Package site is the boundary to the downstream site layer: scaffolding the
// site project skeleton, generating the derived configuration artifact, and
// delegating the final build or serve step.
package site

import (
	"context"
	"log/slog"
)

// Layer is the downstream collaborator that turns emitted content plus the
// derived configuration into a servable or buildable site. The pipeline only
// ever reaches it through this interface.
type Layer interface {
	// Build performs a one-shot site build.
	Build(ctx context.Context) error

	// Serve starts the site in serve/watch mode and blocks until the
	// context is canceled.
	Serve(ctx context.Context) error
}

// LogLayer is the default Layer used when no real site layer is wired in. It
// records the delegation and returns; useful for tests and for pipelines that
// only need the emitted artifacts.
type LogLayer struct {
	Logger *slog.Logger
}

// Build implements Layer.
func (l *LogLayer) Build(context.Context) error {
	l.logger().Info("site layer delegation: one-shot build")
	return nil
}

// Serve implements Layer.
func (l *LogLayer) Serve(ctx context.Context) error {
	l.logger().Info("site layer delegation: serve mode")
	<-ctx.Done()
	return nil
}

func (l *LogLayer) logger() *slog.Logger {
	if l.Logger != nil {
		return l.Logger
	}
	return slog.Default()
}
