package commands

import (
	"context"
)

// SyncVehicleMaintenanceCommandHandler applies vehicle.SyncMaintenance to the whole
// fleet in one transaction and stores the vehicles whose status changed.
type SyncVehicleMaintenanceCommandHandler struct {
	uowFactory VehicleUoWFactory
}

func NewSyncVehicleMaintenanceCommandHandler(uowFactory VehicleUoWFactory) SyncVehicleMaintenanceCommandHandler {
	return SyncVehicleMaintenanceCommandHandler{
		uowFactory: uowFactory,
	}
}

func (h SyncVehicleMaintenanceCommandHandler) Handle(ctx context.Context, command SyncVehicleMaintenanceCommand) error {
	if err := command.Validate(); err != nil {
		return err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	vehicleRepo := uow.VehicleRepository()

	vehicles, err := vehicleRepo.GetAll(ctx)
	if err != nil {
		return err
	}
	inMaintenance, err := vehicleRepo.VehiclesInMaintenance(ctx)
	if err != nil {
		return err
	}

	for _, v := range vehicles {
		_, busy := inMaintenance[v.ID()]
		if !v.SyncMaintenance(busy) {
			continue
		}
		if err = vehicleRepo.Update(ctx, v); err != nil {
			return err
		}
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	return nil
}
