package jobs

import (
	"context"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/labtrack/labtrack/internal/dashboard"
	jobmetrics "github.com/labtrack/labtrack/internal/jobs"
)

// StatsRefresher recomputes the dashboard statistics and rewrites the cache.
type StatsRefresher interface {
	Refresh(ctx context.Context) (dashboard.Stats, error)
}

// NewDashboardWarmupHandler returns the handler for TaskDashboardWarmup.
func NewDashboardWarmupHandler(stats StatsRefresher, metrics *jobmetrics.Metrics, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		tracker := metrics.Track(TaskDashboardWarmup)
		if _, err := stats.Refresh(ctx); err != nil {
			if logger != nil {
				logger.Error("dashboard warmup failed", slog.Any("error", err))
			}
			return tracker.End(err)
		}
		if logger != nil {
			logger.Info("dashboard cache warmed")
		}
		return tracker.End(nil)
	}
}
