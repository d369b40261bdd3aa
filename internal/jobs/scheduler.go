package jobs

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/playbookTV/leadscan-sub000/internal/models"
	"github.com/playbookTV/leadscan-sub000/internal/poller"
)

// CycleRunner runs one poll cycle.
type CycleRunner interface {
	RunCycle(ctx context.Context) (*models.CycleResult, error)
}

// Scheduler triggers poll cycles on a fixed interval.
type Scheduler struct {
	runner   CycleRunner
	interval time.Duration
	onStart  bool
}

// NewScheduler creates a scheduler. When onStart is set the first cycle runs
// immediately.
func NewScheduler(runner CycleRunner, interval time.Duration, onStart bool) *Scheduler {
	return &Scheduler{
		runner:   runner,
		interval: interval,
		onStart:  onStart,
	}
}

// Start runs the poll loop until ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) {
	slog.Info("poll scheduler started", "interval", s.interval, "run_on_start", s.onStart)

	if s.onStart {
		s.run(ctx)
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("poll scheduler stopped")
			return
		case <-ticker.C:
			s.run(ctx)
		}
	}
}

func (s *Scheduler) run(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	if _, err := s.runner.RunCycle(ctx); err != nil {
		if errors.Is(err, poller.ErrCycleRunning) {
			slog.Info("scheduled poll skipped, previous cycle still running")
			return
		}
		slog.Error("scheduled poll failed", "error", err)
	}
}
