package jobs

import (
	"fmt"
	"log/slog"
)

// Schedules holds the six field cron expressions of the jobs.
type Schedules struct {
	MaintenanceSync   string
	InvalidationRetry string
}

// DefaultSchedules syncs maintenance every five minutes and retries cache
// invalidations every thirty seconds.
var DefaultSchedules = Schedules{
	MaintenanceSync:   "0 */5 * * * *",
	InvalidationRetry: "*/30 * * * * *",
}

// JobManager coordinates all scheduled jobs in the application.
// Provides a unified interface to start and stop all background jobs.
type JobManager struct {
	maintenanceSyncJob   *VehicleMaintenanceSyncJob
	invalidationRetryJob *CacheInvalidationRetryJob
}

// NewJobManager creates a new job manager with all required jobs.
// A nil cache disables the invalidation retry job.
func NewJobManager(
	syncHandler maintenanceSyncHandler,
	cache pendingInvalidations,
	schedules Schedules,
	logger *slog.Logger,
) *JobManager {
	jm := &JobManager{
		maintenanceSyncJob: NewVehicleMaintenanceSyncJob(syncHandler, schedules.MaintenanceSync, logger),
	}
	if cache != nil {
		jm.invalidationRetryJob = NewCacheInvalidationRetryJob(cache, schedules.InvalidationRetry, logger)
	}
	return jm
}

// StartAll starts all scheduled jobs.
// Returns an error if any job fails to start.
func (jm *JobManager) StartAll() error {
	if err := jm.maintenanceSyncJob.Start(); err != nil {
		return fmt.Errorf("failed to start vehicle maintenance sync job: %w", err)
	}

	if jm.invalidationRetryJob == nil {
		return nil
	}
	if err := jm.invalidationRetryJob.Start(); err != nil {
		// Stop already started jobs if this one fails
		jm.maintenanceSyncJob.Stop()
		return fmt.Errorf("failed to start cache invalidation retry job: %w", err)
	}

	return nil
}

// StopAll stops all scheduled jobs gracefully.
func (jm *JobManager) StopAll() {
	jm.maintenanceSyncJob.Stop()
	if jm.invalidationRetryJob != nil {
		jm.invalidationRetryJob.Stop()
	}
}
