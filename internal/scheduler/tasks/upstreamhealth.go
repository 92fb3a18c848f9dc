// Package tasks holds the scheduled background tasks.
package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/pibble/pibble/internal/config"
	"github.com/pibble/pibble/internal/health"
	"github.com/pibble/pibble/internal/scheduler"
)

const (
	UpstreamHealthTaskID = "upstream-health"
	defaultHealthCron    = "*/5 * * * *"
	healthCheckTimeout   = 30 * time.Second
)

// UpstreamHealthTask probes the movies, shows and user-data services.
type UpstreamHealthTask struct {
	health *health.Service
	logger zerolog.Logger
}

// NewUpstreamHealthTask creates a new upstream health check task.
func NewUpstreamHealthTask(healthSvc *health.Service, logger zerolog.Logger) *UpstreamHealthTask {
	return &UpstreamHealthTask{
		health: healthSvc,
		logger: logger.With().Str("task", UpstreamHealthTaskID).Logger(),
	}
}

// Run executes the health check. It fails when any configured service is down.
func (t *UpstreamHealthTask) Run(ctx context.Context) error {
	if err := t.health.CheckAll(ctx); err != nil {
		return fmt.Errorf("upstream services unhealthy: %w", err)
	}
	t.logger.Debug().Msg("All upstream services healthy")
	return nil
}

// RegisterUpstreamHealthTask registers the upstream health check with the scheduler.
func RegisterUpstreamHealthTask(
	sched *scheduler.Scheduler,
	healthSvc *health.Service,
	cfg config.HealthConfig,
	logger zerolog.Logger,
) error {
	task := NewUpstreamHealthTask(healthSvc, logger)

	cron := cfg.Cron
	if cron == "" {
		cron = defaultHealthCron
	}

	return sched.RegisterTask(scheduler.TaskConfig{
		ID:          UpstreamHealthTaskID,
		Name:        "Upstream Health Check",
		Description: "Checks that the movies, shows and user-data services respond",
		Cron:        cron,
		RunOnStart:  true,
		Timeout:     healthCheckTimeout,
		Func:        task.Run,
	})
}
