package jobs

import (
	"context"
	"log/slog"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/labtrack/labtrack/internal/jobs"
)

// NoteSweeper removes notes whose sample no longer exists.
type NoteSweeper interface {
	DeleteOrphanNotes(ctx context.Context) (int64, error)
}

// NewNotesReconcileHandler returns the handler for TaskNotesReconcile.
// Deleting a sample sweeps its notes in a second step; when that step fails
// the orphans stay behind until this sweep clears them.
func NewNotesReconcileHandler(notes NoteSweeper, metrics *jobmetrics.Metrics, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		tracker := metrics.Track(TaskNotesReconcile)
		removed, err := notes.DeleteOrphanNotes(ctx)
		if err != nil {
			if logger != nil {
				logger.Error("notes reconcile failed", slog.Any("error", err))
			}
			return tracker.End(err)
		}
		if logger != nil && removed > 0 {
			logger.Info("notes reconcile removed orphans", slog.Int64("count", removed))
		}
		return tracker.End(nil)
	}
}
