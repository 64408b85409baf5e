package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectorRegisters(t *testing.T) {
	c := NewCollector()
	reg := prometheus.NewRegistry()
	require.NoError(t, c.Register(reg))

	// Re-registering the same collectors is a conflict.
	assert.Error(t, c.Register(reg))
}

func TestCounters(t *testing.T) {
	c := NewCollector()
	c.PagesCompiled.Inc()
	c.PagesCompiled.Inc()
	c.ItemCompileErrors.Inc()

	assert.Equal(t, float64(2), testutil.ToFloat64(c.PagesCompiled))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.ItemCompileErrors))
	assert.Equal(t, float64(0), testutil.ToFloat64(c.IncrementalRebuilds))
}

func TestObserveStage(t *testing.T) {
	c := NewCollector()
	c.ObserveStage("verify", 50*time.Millisecond)
	c.ObserveStage("verify", 70*time.Millisecond)

	count := testutil.CollectAndCount(c.StageDuration)
	assert.Equal(t, 1, count)
}
