package jobs

import (
	"context"
	"time"

	"partsdesk/internal/config"
	"partsdesk/internal/logger"
)

// Desk is the part of the desk client the scheduled jobs drive.
type Desk interface {
	Refresh(ctx context.Context) error
	Export(path string) error
}

// JobRunner coordinates all scheduled jobs for one watched view
type JobRunner struct {
	desk   Desk
	view   string
	config *config.Config
	now    func() time.Time
}

// NewJobRunner creates a new job runner for the table named view
func NewJobRunner(d Desk, view string, cfg *config.Config) *JobRunner {
	return &JobRunner{
		desk:   d,
		view:   view,
		config: cfg,
		now:    time.Now,
	}
}

// Config returns the configuration the jobs were built with
func (jr *JobRunner) Config() *config.Config {
	return jr.config
}

// runWithRecovery wraps job execution with panic recovery
func (jr *JobRunner) runWithRecovery(jobName string, jobFunc func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Job panicked", "job", jobName, "panic", r)
		}
	}()

	logger.Debug("Starting job", "job", jobName, "view", jr.view)
	jobFunc()
	logger.Debug("Job completed", "job", jobName, "view", jr.view)
}

// RunAll runs every job once (for manual execution)
func (jr *JobRunner) RunAll() {
	jr.RefreshActiveTable()
	if jr.config.Watch.ExportSchedule != "" {
		jr.ExportActiveTable()
	}
}
