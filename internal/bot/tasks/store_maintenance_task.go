package tasks

import (
	"context"
	"fmt"
	"time"
)

// newStoreMaintenanceTask runs the store's housekeeping: VACUUM on SQLite,
// a ping on MongoDB.
func newStoreMaintenanceTask(deps TaskDeps) ScheduledTaskFunc {
	log := deps.Logger.With("task", StoreMaintenanceTask)

	return func(ctx context.Context) error {
		log.InfoContext(ctx, "Starting store maintenance")
		startTime := time.Now()

		err := deps.Store.RunMaintenance(ctx)
		duration := time.Since(startTime)
		if err != nil {
			log.ErrorContext(ctx, "Store maintenance failed", "error", err, "duration", duration)
			return fmt.Errorf("store maintenance failed: %w", err)
		}

		log.InfoContext(ctx, "Store maintenance completed", "duration", duration)
		return nil
	}
}
