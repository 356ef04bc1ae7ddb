package scheduler

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"partsdesk/internal/jobs"
	"partsdesk/internal/logger"
)

// Scheduler manages cron job scheduling for watch mode
type Scheduler struct {
	cron *cron.Cron
	jobs *jobs.JobRunner
}

// NewScheduler creates a new scheduler with the provided job runner. Schedules
// use six fields (seconds first) in the local time zone.
func NewScheduler(jobRunner *jobs.JobRunner) (*Scheduler, error) {
	c := cron.New(
		cron.WithLocation(time.Local),
		cron.WithSeconds(),
		cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
	)

	s := &Scheduler{
		cron: c,
		jobs: jobRunner,
	}

	if err := s.registerJobs(); err != nil {
		return nil, err
	}
	return s, nil
}

// registerJobs registers all scheduled jobs with the cron scheduler
func (s *Scheduler) registerJobs() error {
	cfg := s.jobs.Config().Watch

	if _, err := s.cron.AddFunc(cfg.RefreshSchedule, s.jobs.RefreshActiveTable); err != nil {
		return fmt.Errorf("invalid refresh schedule %q: %w", cfg.RefreshSchedule, err)
	}

	if cfg.ExportSchedule != "" {
		if _, err := s.cron.AddFunc(cfg.ExportSchedule, s.jobs.ExportActiveTable); err != nil {
			return fmt.Errorf("invalid export schedule %q: %w", cfg.ExportSchedule, err)
		}
	}

	logger.Info("Watch jobs registered", "refresh", cfg.RefreshSchedule, "export", cfg.ExportSchedule)
	return nil
}

// Start begins the cron scheduler
func (s *Scheduler) Start() {
	logger.Info("Starting cron scheduler...")
	s.cron.Start()
}

// Stop gracefully stops the cron scheduler, waiting for a running job
func (s *Scheduler) Stop() {
	logger.Info("Stopping cron scheduler...")
	ctx := s.cron.Stop()
	<-ctx.Done()
	logger.Info("Cron scheduler stopped")
}

// Next returns when the next job fires; zero when nothing is scheduled.
func (s *Scheduler) Next() time.Time {
	var next time.Time
	for _, e := range s.cron.Entries() {
		if !e.Next.IsZero() && (next.IsZero() || e.Next.Before(next)) {
			next = e.Next
		}
	}
	return next
}

// IsRunning returns true if jobs are registered
func (s *Scheduler) IsRunning() bool {
	return len(s.cron.Entries()) > 0
}
