package jobs

import (
	"context"
	"log/slog"

	"fleet/internal/core/application/usecases/commands"

	"github.com/robfig/cron/v3"
)

type maintenanceSyncHandler interface {
	Handle(ctx context.Context, command commands.SyncVehicleMaintenanceCommand) error
}

// VehicleMaintenanceSyncJob keeps vehicle statuses in line with their
// maintenance records.
type VehicleMaintenanceSyncJob struct {
	handler  maintenanceSyncHandler
	schedule string
	cron     *cron.Cron
	logger   *slog.Logger
}

func NewVehicleMaintenanceSyncJob(handler maintenanceSyncHandler, schedule string, logger *slog.Logger) *VehicleMaintenanceSyncJob {
	return &VehicleMaintenanceSyncJob{
		handler:  handler,
		schedule: schedule,
		cron:     cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		logger:   logger.With("component", "vehicle_maintenance_sync_job"),
	}
}

// Start schedules the sync. The schedule uses the six field cron format.
func (j *VehicleMaintenanceSyncJob) Start() error {
	if _, err := j.cron.AddFunc(j.schedule, func() { j.run(context.Background()) }); err != nil {
		return err
	}

	j.cron.Start()
	j.logger.Info("Vehicle maintenance sync job started", "schedule", j.schedule)
	return nil
}

// Stop waits for a running sync to finish.
func (j *VehicleMaintenanceSyncJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.Info("Vehicle maintenance sync job stopped")
}

func (j *VehicleMaintenanceSyncJob) run(ctx context.Context) {
	if err := j.handler.Handle(ctx, commands.NewSyncVehicleMaintenanceCommand()); err != nil {
		j.logger.ErrorContext(ctx, "Vehicle maintenance sync failed", "error", err)
	}
}
