// Package metrics exposes the pipeline's Prometheus collectors. The caller
// owns the registry; the pipeline only increments.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector bundles the pipeline's metrics.
type Collector struct {
	PagesCompiled       prometheus.Counter
	ComponentsAnalyzed  prometheus.Counter
	ItemCompileErrors   prometheus.Counter
	IncrementalRebuilds prometheus.Counter
	StageDuration       *prometheus.HistogramVec
}

// NewCollector creates the collectors. Pass a prometheus.Registerer to
// Register, or leave them unregistered for tests.
func NewCollector() *Collector {
	return &Collector{
		PagesCompiled: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "compdocs_pages_compiled_total",
			Help: "Documentation pages compiled, including recompiles.",
		}),
		ComponentsAnalyzed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "compdocs_components_analyzed_total",
			Help: "Library components analyzed, including re-analysis.",
		}),
		ItemCompileErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "compdocs_item_compile_errors_total",
			Help: "Item-scoped compile failures recorded against pages or components.",
		}),
		IncrementalRebuilds: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "compdocs_incremental_rebuilds_total",
			Help: "Watch-triggered incremental stage rebuilds.",
		}),
		StageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "compdocs_stage_duration_seconds",
			Help:    "Wall-clock duration of each orchestrator stage.",
			Buckets: prometheus.DefBuckets,
		}, []string{"stage"}),
	}
}

// Register registers every collector on reg.
func (c *Collector) Register(reg prometheus.Registerer) error {
	for _, col := range []prometheus.Collector{
		c.PagesCompiled,
		c.ComponentsAnalyzed,
		c.ItemCompileErrors,
		c.IncrementalRebuilds,
		c.StageDuration,
	} {
		if err := reg.Register(col); err != nil {
			return err
		}
	}
	return nil
}

// ObserveStage records one stage duration.
func (c *Collector) ObserveStage(stage string, d time.Duration) {
	c.StageDuration.WithLabelValues(stage).Observe(d.Seconds())
}
