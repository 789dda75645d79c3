package tasks

import (
	"context"
)

// ScheduledTaskFunc is the signature of every scheduled task. Tasks must
// honour cancellation of ctx.
type ScheduledTaskFunc func(ctx context.Context) error

// StoreMaintenanceTask is the configuration key of the maintenance task.
const StoreMaintenanceTask = "store_maintenance"

// RegisterAllTasks returns every task keyed by the name used in the
// scheduler.tasks configuration section.
func RegisterAllTasks(deps TaskDeps) map[string]ScheduledTaskFunc {
	tasks := map[string]ScheduledTaskFunc{
		StoreMaintenanceTask: newStoreMaintenanceTask(deps),
	}

	deps.Logger.Info("Initialized scheduled tasks", "count", len(tasks))
	return tasks
}
