package tasks

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pibble/pibble/internal/config"
	"github.com/pibble/pibble/internal/health"
	"github.com/pibble/pibble/internal/scheduler"
)

type stubPinger struct {
	name string
	err  error
}

func (p stubPinger) Name() string               { return p.name }
func (p stubPinger) IsConfigured() bool         { return true }
func (p stubPinger) Ping(context.Context) error { return p.err }

func TestUpstreamHealthTask_Run(t *testing.T) {
	healthy := health.NewService(zerolog.Nop(), stubPinger{name: "movies"})
	assert.NoError(t, NewUpstreamHealthTask(healthy, zerolog.Nop()).Run(context.Background()))

	broken := health.NewService(zerolog.Nop(), stubPinger{name: "movies"}, stubPinger{name: "shows", err: errors.New("down")})
	err := NewUpstreamHealthTask(broken, zerolog.Nop()).Run(context.Background())
	require.Error(t, err)

	item, ok := broken.Get("shows")
	require.True(t, ok)
	assert.Equal(t, health.StatusError, item.Status)
}

func TestRegisterUpstreamHealthTask(t *testing.T) {
	sched, err := scheduler.New(zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = sched.Stop() })

	svc := health.NewService(zerolog.Nop())
	require.NoError(t, RegisterUpstreamHealthTask(sched, svc, config.HealthConfig{}, zerolog.Nop()))

	task, err := sched.GetTask(UpstreamHealthTaskID)
	require.NoError(t, err)
	assert.Equal(t, defaultHealthCron, task.Cron)
}

type countingCleaner struct{ calls int }

func (c *countingCleaner) Cleanup() int {
	c.calls++
	return 2
}

func TestRegisterTokenLimiterCleanupTask(t *testing.T) {
	sched, err := scheduler.New(zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = sched.Stop() })

	cleaner := &countingCleaner{}
	require.NoError(t, RegisterTokenLimiterCleanupTask(sched, cleaner, zerolog.Nop()))
	require.NoError(t, sched.RunNow(TokenLimiterCleanupTaskID))

	require.Eventually(t, func() bool {
		task, err := sched.GetTask(TokenLimiterCleanupTaskID)
		return err == nil && task.LastRun != nil
	}, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, 1, cleaner.calls)
}

func TestRegisterListViewCleanupTask(t *testing.T) {
	sched, err := scheduler.New(zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = sched.Stop() })

	cleaner := &countingCleaner{}
	require.NoError(t, RegisterListViewCleanupTask(sched, cleaner, zerolog.Nop()))
	require.NoError(t, sched.RunNow(ListViewCleanupTaskID))

	require.Eventually(t, func() bool {
		task, err := sched.GetTask(ListViewCleanupTaskID)
		return err == nil && task.LastRun != nil
	}, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, 1, cleaner.calls)
}
