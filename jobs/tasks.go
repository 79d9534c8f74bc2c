package jobs

import (
	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskRBACReconcile sweeps role-permission links whose endpoints are gone.
	TaskRBACReconcile = "rbac:reconcile"
	// TaskNotesReconcile sweeps notes whose sample is gone.
	TaskNotesReconcile = "notes:reconcile"
	// TaskDashboardWarmup precomputes the dashboard statistics cache.
	TaskDashboardWarmup = "dashboard:warmup"
)

// NewRBACReconcileTask constructs the periodic link-sweep task.
func NewRBACReconcileTask() *asynq.Task {
	return asynq.NewTask(TaskRBACReconcile, nil)
}

// NewNotesReconcileTask constructs the periodic orphan-note sweep task.
func NewNotesReconcileTask() *asynq.Task {
	return asynq.NewTask(TaskNotesReconcile, nil)
}

// NewDashboardWarmupTask constructs the cache-warmup task.
func NewDashboardWarmupTask() *asynq.Task {
	return asynq.NewTask(TaskDashboardWarmup, nil)
}
