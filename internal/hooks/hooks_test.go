package hooks

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFanOutRegistrationOrder(t *testing.T) {
	h := NewFanOut[int]("test")

	var order []string
	h.Register(func(int) { order = append(order, "first") })
	h.Register(func(int) { order = append(order, "second") })
	h.Register(func(int) { order = append(order, "third") })

	h.Fire(1)
	assert.Equal(t, []string{"first", "second", "third"}, order)

	// A second firing observes the same order.
	order = nil
	h.Fire(2)
	assert.Equal(t, []string{"first", "second", "third"}, order)
}

func TestFanOutEmptyIsNoop(t *testing.T) {
	h := NewFanOut[string]("empty")
	assert.NotPanics(t, func() { h.Fire("payload") })
}

func TestFanOutNilCallbackIgnored(t *testing.T) {
	h := NewFanOut[int]("nil")
	h.Register(nil)
	assert.Equal(t, 0, h.Len())
}

func TestFanOutRegistrationDuringFire(t *testing.T) {
	h := NewFanOut[int]("test")

	var calls int
	h.Register(func(int) {
		calls++
		// Registrations made while firing take effect on the next firing
		// only: Fire dispatches over a snapshot of the callback list.
		h.Register(func(int) { calls += 10 })
	})

	h.Fire(1)
	assert.Equal(t, 1, calls)

	h.Fire(2)
	assert.Equal(t, 12, calls)
}

func TestSeriesSequentialExecution(t *testing.T) {
	h := NewSeries[struct{}]("emit")

	var inFlight atomic.Int32
	var maxSeen atomic.Int32
	slow := func(context.Context, struct{}) error {
		n := inFlight.Add(1)
		if n > maxSeen.Load() {
			maxSeen.Store(n)
		}
		time.Sleep(5 * time.Millisecond)
		inFlight.Add(-1)
		return nil
	}
	h.Register(slow)
	h.Register(slow)
	h.Register(slow)

	require.NoError(t, h.Fire(context.Background(), struct{}{}))
	assert.Equal(t, int32(1), maxSeen.Load(), "series callbacks must never overlap")
}

func TestSeriesStopsOnError(t *testing.T) {
	h := NewSeries[int]("emit")

	var calls []int
	boom := errors.New("boom")
	h.Register(func(_ context.Context, v int) error { calls = append(calls, 1); return nil })
	h.Register(func(_ context.Context, v int) error { return boom })
	h.Register(func(_ context.Context, v int) error { calls = append(calls, 3); return nil })

	err := h.Fire(context.Background(), 0)
	require.ErrorIs(t, err, boom)
	assert.Equal(t, []int{1}, calls)
}

func TestSeriesObservesCancellation(t *testing.T) {
	h := NewSeries[struct{}]("emit")

	ctx, cancel := context.WithCancel(context.Background())
	var after bool
	h.Register(func(context.Context, struct{}) error {
		cancel()
		return nil
	})
	h.Register(func(context.Context, struct{}) error {
		after = true
		return nil
	})

	err := h.Fire(ctx, struct{}{})
	require.ErrorIs(t, err, context.Canceled)
	assert.False(t, after, "callback after cancellation must not run")
}

func TestRecorderSeesEveryFiring(t *testing.T) {
	var fired []string
	rec := func(hook string) { fired = append(fired, hook) }

	f := NewFanOut[int]("docCompile")
	f.SetRecorder(rec)
	s := NewSeries[int]("emit")
	s.SetRecorder(rec)

	f.Fire(1)
	require.NoError(t, s.Fire(context.Background(), 2))
	f.Fire(3)

	assert.Equal(t, []string{"docCompile", "emit", "docCompile"}, fired)
}
