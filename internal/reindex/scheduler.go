package reindex

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// ScheduledRunTimeout bounds a sweep started by the schedule.
const ScheduledRunTimeout = 30 * time.Minute

// Scheduler triggers sweeps on a cron schedule and evicts expired reports.
type Scheduler struct {
	sweeper      *Sweeper
	cron         *cron.Cron
	log          *slog.Logger
	cleanupEvery time.Duration

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewScheduler(sweeper *Sweeper, log *slog.Logger) *Scheduler {
	return &Scheduler{
		sweeper:      sweeper,
		cron:         cron.New(),
		log:          log,
		cleanupEvery: 5 * time.Minute,
	}
}

// Start registers schedule (if non-empty) and launches report cleanup.
// schedule is a standard five-field cron expression or a descriptor such
// as "@every 6h".
func (s *Scheduler) Start(ctx context.Context, schedule string) error {
	runCtx, cancel := context.WithCancel(ctx)

	if schedule != "" {
		_, err := s.cron.AddFunc(schedule, func() { s.runScheduled(runCtx) })
		if err != nil {
			cancel()
			return fmt.Errorf("schedule reindex: %w", err)
		}
		s.cron.Start()
		s.log.Info("reindex scheduler started", "schedule", schedule)
	}
	s.cancel = cancel

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.cleanupEvery)
		defer ticker.Stop()
		for {
			select {
			case <-runCtx.Done():
				return
			case <-ticker.C:
				if n := s.sweeper.Runs().Cleanup(); n > 0 {
					s.log.Debug("evicted reindex reports", "count", n)
				}
			}
		}
	}()
	return nil
}

// Stop cancels in-flight work and waits for running jobs to return.
func (s *Scheduler) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	<-s.cron.Stop().Done()
	s.wg.Wait()
}

func (s *Scheduler) runScheduled(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, ScheduledRunTimeout)
	defer cancel()

	report, err := s.sweeper.Run(ctx, "schedule")
	switch {
	case errors.Is(err, ErrSweepRunning):
		s.log.Info("scheduled reindex skipped, sweep in progress")
	case err != nil && report != nil:
		s.log.Error("scheduled reindex interrupted", "run_id", report.RunID, "error", err)
	case err != nil:
		s.log.Error("scheduled reindex failed", "error", err)
	default:
		s.log.Info("scheduled reindex completed", "run_id", report.RunID, "files", report.Totals.Files)
	}
}
