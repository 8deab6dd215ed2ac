// Package jobs provides scheduled background tasks for the fleet service.
//
// Jobs are cron based (github.com/robfig/cron/v3, six field expressions with
// seconds) and never overlap with themselves.
//
// # Available Jobs
//
// 1. VehicleMaintenanceSyncJob - moves vehicles into and out of Maintenance
// according to their maintenance records
// 2. CacheInvalidationRetryJob - replays route cache invalidations that failed
// after commit
//
// # Usage
//
//	jobManager := jobs.NewJobManager(syncHandler, cache, jobs.DefaultSchedules, logger)
//	if err := jobManager.StartAll(); err != nil {
//		log.Fatal("Failed to start jobs:", err)
//	}
//	defer jobManager.StopAll()
//
// # Error Handling
//
// Job failures are logged and the job runs again at its next tick. Failed job
// starts stop any already running jobs.
package jobs
