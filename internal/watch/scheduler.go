package watch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// Scheduler runs a periodic full rebuild while watch mode is active, as a
// safety net for changes the filesystem watcher misses (editor swap files,
// network mounts).
type Scheduler struct {
	scheduler gocron.Scheduler
	logger    *slog.Logger
}

// NewScheduler creates a scheduler that invokes job every interval.
func NewScheduler(interval time.Duration, logger *slog.Logger, job func(context.Context)) (*Scheduler, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("scheduler interval must be positive, got %s", interval)
	}
	if logger == nil {
		logger = slog.Default()
	}

	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}

	_, err = s.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			logger.Debug("periodic full rebuild triggered")
			job(context.Background())
		}),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = s.Shutdown()
		return nil, fmt.Errorf("schedule rebuild job: %w", err)
	}

	return &Scheduler{scheduler: s, logger: logger}, nil
}

// Start begins the schedule.
func (s *Scheduler) Start() {
	s.logger.Info("starting periodic rebuild scheduler")
	s.scheduler.Start()
}

// Stop shuts the scheduler down.
func (s *Scheduler) Stop() error {
	s.logger.Info("stopping periodic rebuild scheduler")
	return s.scheduler.Shutdown()
}
