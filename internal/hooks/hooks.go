// Package hooks implements the typed extension points plugins register
// callbacks against. Every hook has one of two closed execution strategies:
// synchronous fan-out or awaited series. The payload type is fixed per hook,
// so a callback with the wrong signature is rejected by the compiler rather
// than at invocation time.
package hooks

import (
	"context"
	"sync"
)

// Kind is the execution strategy of a hook.
type Kind string

const (
	// KindFanOut runs all callbacks synchronously in registration order.
	// Callbacks cannot fail the run and cannot short-circuit each other.
	KindFanOut Kind = "fanout"

	// KindSeries runs callbacks strictly one after another, each awaited
	// before the next starts. Used where a callback performs I/O that must
	// complete before the pipeline proceeds.
	KindSeries Kind = "series"
)

// Recorder observes hook firings, typically for the build event journal.
// A nil Recorder is a no-op.
type Recorder func(hook string)

// FanOut is a synchronous fan-out hook carrying a payload of type T.
type FanOut[T any] struct {
	name     string
	recorder Recorder

	mu  sync.RWMutex
	fns []func(T)
}

// NewFanOut creates a fan-out hook with the given name.
func NewFanOut[T any](name string) *FanOut[T] {
	return &FanOut[T]{name: name}
}

// Name returns the hook's registered name.
func (h *FanOut[T]) Name() string { return h.name }

// Kind returns KindFanOut.
func (h *FanOut[T]) Kind() Kind { return KindFanOut }

// SetRecorder attaches a firing observer. Wired once at context construction.
func (h *FanOut[T]) SetRecorder(r Recorder) { h.recorder = r }

// Register appends a callback. Registration is append-only; a callback cannot
// be removed within a run.
func (h *FanOut[T]) Register(fn func(T)) {
	if fn == nil {
		return
	}
	h.mu.Lock()
	h.fns = append(h.fns, fn)
	h.mu.Unlock()
}

// Fire invokes all registered callbacks in registration order. Firing a hook
// with no callbacks is a no-op.
func (h *FanOut[T]) Fire(v T) {
	if h.recorder != nil {
		h.recorder(h.name)
	}
	h.mu.RLock()
	fns := make([]func(T), len(h.fns))
	copy(fns, h.fns)
	h.mu.RUnlock()
	for _, fn := range fns {
		fn(v)
	}
}

// Len returns the number of registered callbacks.
func (h *FanOut[T]) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.fns)
}

// Series is an awaited-series hook carrying a payload of type T. Callbacks
// run sequentially; the first error stops the series.
type Series[T any] struct {
	name     string
	recorder Recorder

	mu  sync.RWMutex
	fns []func(context.Context, T) error
}

// NewSeries creates a series hook with the given name.
func NewSeries[T any](name string) *Series[T] {
	return &Series[T]{name: name}
}

// Name returns the hook's registered name.
func (h *Series[T]) Name() string { return h.name }

// Kind returns KindSeries.
func (h *Series[T]) Kind() Kind { return KindSeries }

// SetRecorder attaches a firing observer.
func (h *Series[T]) SetRecorder(r Recorder) { h.recorder = r }

// Register appends a callback. Append-only, like FanOut.
func (h *Series[T]) Register(fn func(context.Context, T) error) {
	if fn == nil {
		return
	}
	h.mu.Lock()
	h.fns = append(h.fns, fn)
	h.mu.Unlock()
}

// Fire invokes callbacks one after another, each awaited before the next
// starts. The context is checked between callbacks so a canceled run stops
// at the next suspension point.
func (h *Series[T]) Fire(ctx context.Context, v T) error {
	if h.recorder != nil {
		h.recorder(h.name)
	}
	h.mu.RLock()
	fns := make([]func(context.Context, T) error, len(h.fns))
	copy(fns, h.fns)
	h.mu.RUnlock()
	for _, fn := range fns {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(ctx, v); err != nil {
			return err
		}
	}
	return nil
}

// Len returns the number of registered callbacks.
func (h *Series[T]) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.fns)
}
