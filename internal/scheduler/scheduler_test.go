package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"partsdesk/internal/config"
	"partsdesk/internal/jobs"
)

type countingDesk struct {
	refreshes atomic.Int32
}

func (c *countingDesk) Refresh(context.Context) error {
	c.refreshes.Add(1)
	return nil
}

func (c *countingDesk) Export(string) error { return nil }

func newConfig(refresh, export string) *config.Config {
	return &config.Config{
		API:   config.APIConfig{TimeoutSeconds: 5},
		Watch: config.WatchConfig{RefreshSchedule: refresh, ExportSchedule: export},
	}
}

func TestSchedulerRefreshes(t *testing.T) {
	d := &countingDesk{}
	s, err := NewScheduler(jobs.NewJobRunner(d, "today", newConfig("* * * * * *", "")))
	require.NoError(t, err)
	assert.True(t, s.IsRunning())

	s.Start()
	assert.False(t, s.Next().IsZero())
	assert.Eventually(t, func() bool { return d.refreshes.Load() > 0 }, 3*time.Second, 50*time.Millisecond)
	s.Stop()
}

func TestSchedulerRejectsBadSchedules(t *testing.T) {
	_, err := NewScheduler(jobs.NewJobRunner(&countingDesk{}, "today", newConfig("every minute", "")))
	assert.ErrorContains(t, err, "invalid refresh schedule")

	// five fields are not enough once seconds are enabled
	_, err = NewScheduler(jobs.NewJobRunner(&countingDesk{}, "today", newConfig("0 */1 * * * *", "0 18 * * *")))
	assert.ErrorContains(t, err, "invalid export schedule")
}
