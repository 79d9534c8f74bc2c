package jobs

import (
	"context"
	"log/slog"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/labtrack/labtrack/internal/jobs"
)

// LinkReconciler removes role-permission links whose role or permission no
// longer exists.
type LinkReconciler interface {
	ReconcileLinks(ctx context.Context) (int64, error)
}

// NewRBACReconcileHandler returns the handler for TaskRBACReconcile. Roles
// and permissions are deleted in two steps (links first, then the entity),
// so a crash between the steps can leave danglers behind; this sweep is
// the backstop that eventually clears them.
func NewRBACReconcileHandler(access LinkReconciler, metrics *jobmetrics.Metrics, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		tracker := metrics.Track(TaskRBACReconcile)
		removed, err := access.ReconcileLinks(ctx)
		if err != nil {
			if logger != nil {
				logger.Error("rbac reconcile failed", slog.Any("error", err))
			}
			return tracker.End(err)
		}
		if logger != nil && removed > 0 {
			logger.Info("rbac reconcile removed dangling links", slog.Int64("count", removed))
		}
		return tracker.End(nil)
	}
}
