package jobs

import (
	"context"
	"log/slog"

	"github.com/robfig/cron/v3"
)

type pendingInvalidations interface {
	RetryPending(ctx context.Context) (int, error)
}

// CacheInvalidationRetryJob replays cache invalidations that failed after a
// committed route mutation.
type CacheInvalidationRetryJob struct {
	cache    pendingInvalidations
	schedule string
	cron     *cron.Cron
	logger   *slog.Logger
}

func NewCacheInvalidationRetryJob(cache pendingInvalidations, schedule string, logger *slog.Logger) *CacheInvalidationRetryJob {
	return &CacheInvalidationRetryJob{
		cache:    cache,
		schedule: schedule,
		cron:     cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		logger:   logger.With("component", "cache_invalidation_retry_job"),
	}
}

func (j *CacheInvalidationRetryJob) Start() error {
	if _, err := j.cron.AddFunc(j.schedule, func() { j.run(context.Background()) }); err != nil {
		return err
	}

	j.cron.Start()
	j.logger.Info("Cache invalidation retry job started", "schedule", j.schedule)
	return nil
}

func (j *CacheInvalidationRetryJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.Info("Cache invalidation retry job stopped")
}

func (j *CacheInvalidationRetryJob) run(ctx context.Context) {
	remaining, err := j.cache.RetryPending(ctx)
	if err != nil {
		// The cache is probably still unreachable; entries stay queued.
		j.logger.WarnContext(ctx, "Cache invalidation retry failed", "remaining", remaining, "error", err)
		return
	}
	if remaining > 0 {
		j.logger.InfoContext(ctx, "Cache invalidations still pending", "remaining", remaining)
	}
}
