package tasks

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/pibble/pibble/internal/scheduler"
)

const (
	TokenLimiterCleanupTaskID = "token-limiter-cleanup"
	ListViewCleanupTaskID     = "list-view-cleanup"
)

// Cleaner drops expired entries and reports how many were removed.
type Cleaner interface {
	Cleanup() int
}

// RegisterTokenLimiterCleanupTask registers pruning of stale rate-limit entries.
func RegisterTokenLimiterCleanupTask(sched *scheduler.Scheduler, limiter Cleaner, logger zerolog.Logger) error {
	log := logger.With().Str("task", TokenLimiterCleanupTaskID).Logger()

	return sched.RegisterTask(scheduler.TaskConfig{
		ID:          TokenLimiterCleanupTaskID,
		Name:        "Token Limiter Cleanup",
		Description: "Forgets clients whose failed-token window and lockout have expired",
		Cron:        "@every 10m",
		Func: func(ctx context.Context) error {
			if removed := limiter.Cleanup(); removed > 0 {
				log.Debug().Int("removed", removed).Msg("Pruned token limiter entries")
			}
			return nil
		},
	})
}

// RegisterListViewCleanupTask registers eviction of list views nobody has
// refreshed or read for a while.
func RegisterListViewCleanupTask(sched *scheduler.Scheduler, views Cleaner, logger zerolog.Logger) error {
	log := logger.With().Str("task", ListViewCleanupTaskID).Logger()

	return sched.RegisterTask(scheduler.TaskConfig{
		ID:          ListViewCleanupTaskID,
		Name:        "List View Cleanup",
		Description: "Forgets idle list views and their snapshots",
		Cron:        "@every 15m",
		Func: func(ctx context.Context) error {
			if removed := views.Cleanup(); removed > 0 {
				log.Debug().Int("removed", removed).Msg("Evicted idle list views")
			}
			return nil
		},
	})
}
