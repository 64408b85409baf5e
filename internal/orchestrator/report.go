package orchestrator

import (
	"time"

	"github.com/hashicorp/go-multierror"
)

// Report accumulates the outcome of one run: stage timings, item counts, and
// the item-scoped errors that did not stop the build.
type Report struct {
	BuildID        string
	StageDurations map[string]time.Duration
	Pages          int
	Components     int
	ItemErrors     *multierror.Error
	start          time.Time
}

func newReport(buildID string) *Report {
	return &Report{
		BuildID:        buildID,
		StageDurations: map[string]time.Duration{},
		start:          time.Now(),
	}
}

// Elapsed returns the wall-clock duration since the run started.
func (r *Report) Elapsed() time.Duration {
	return time.Since(r.start)
}

// ItemErrorCount returns the number of recorded item-scoped errors.
func (r *Report) ItemErrorCount() int {
	if r.ItemErrors == nil {
		return 0
	}
	return r.ItemErrors.Len()
}
