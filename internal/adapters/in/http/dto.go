package http

import (
	"time"

	"fleet/internal/core/application/usecases/commands"
	"fleet/internal/core/domain/model/kernel"
	"fleet/internal/core/domain/model/route"
	"fleet/internal/pkg/errs"

	"github.com/google/uuid"
)

type routeOrderRequest struct {
	OrderID   uuid.UUID  `json:"orderId"`
	PickupAt  *time.Time `json:"pickupAt,omitempty"`
	DropoffAt *time.Time `json:"dropoffAt,omitempty"`
}

type plannedStopRequest struct {
	OrderID   uuid.UUID  `json:"orderId"`
	Operation string     `json:"operation"`
	Sequence  int        `json:"sequence"`
	Address   string     `json:"address,omitempty"`
	PlannedAt *time.Time `json:"plannedAt,omitempty"`
}

type stopSequenceRequest struct {
	StopID   uuid.UUID `json:"stopId"`
	Sequence int       `json:"sequence"`
}

type createRouteRequest struct {
	WindowStart time.Time            `json:"windowStart"`
	WindowEnd   time.Time            `json:"windowEnd"`
	VehicleID   uuid.UUID            `json:"vehicleId"`
	DriverID    uuid.UUID            `json:"driverId"`
	Orders      []routeOrderRequest  `json:"orders"`
	Stops       []plannedStopRequest `json:"stops,omitempty"`
	Notes       string               `json:"notes,omitempty"`
}

type updateRouteRequest struct {
	ExpectedVersion *int                  `json:"expectedVersion,omitempty"`
	WindowStart     *time.Time            `json:"windowStart,omitempty"`
	WindowEnd       *time.Time            `json:"windowEnd,omitempty"`
	VehicleID       *uuid.UUID            `json:"vehicleId,omitempty"`
	DriverID        *uuid.UUID            `json:"driverId,omitempty"`
	Notes           *string               `json:"notes,omitempty"`
	Orders          []routeOrderRequest   `json:"orders,omitempty"`
	Stops           []plannedStopRequest  `json:"stops,omitempty"`
	Reorder         []stopSequenceRequest `json:"reorder,omitempty"`
}

type completeStopRequest struct {
	ProofRefs []string `json:"proofRefs,omitempty"`
}

type createIncidentRequest struct {
	StopID      *uuid.UUID `json:"stopId,omitempty"`
	Type        string     `json:"type"`
	Description string     `json:"description"`
	PhotoRefs   []string   `json:"photoRefs,omitempty"`
	CancelRoute bool       `json:"cancelRoute,omitempty"`
}

type createdResponse struct {
	ID kernel.UUID `json:"id"`
}

func toKernelUUID(id uuid.UUID) (kernel.UUID, error) {
	return kernel.UUIDFromBytes(id[:])
}

func toOptionalKernelUUID(id *uuid.UUID) (*kernel.UUID, error) {
	if id == nil {
		return nil, nil
	}
	converted, err := toKernelUUID(*id)
	if err != nil {
		return nil, err
	}
	return &converted, nil
}

func toRouteOrders(requested []routeOrderRequest) ([]commands.RouteOrder, error) {
	if requested == nil {
		return nil, nil
	}

	orders := make([]commands.RouteOrder, 0, len(requested))
	for _, o := range requested {
		orderID, err := toKernelUUID(o.OrderID)
		if err != nil {
			return nil, err
		}
		orders = append(orders, commands.RouteOrder{
			OrderID:   orderID,
			PickupAt:  o.PickupAt,
			DropoffAt: o.DropoffAt,
		})
	}
	return orders, nil
}

func toPlan(requested []plannedStopRequest) ([]route.PlannedStop, error) {
	if requested == nil {
		return nil, nil
	}

	plan := make([]route.PlannedStop, 0, len(requested))
	for _, s := range requested {
		orderID, err := toKernelUUID(s.OrderID)
		if err != nil {
			return nil, err
		}
		operation, err := route.ParseOperation(s.Operation)
		if err != nil {
			return nil, err
		}
		plan = append(plan, route.PlannedStop{
			OrderID:   orderID,
			Operation: operation,
			Sequence:  s.Sequence,
			Address:   s.Address,
			PlannedAt: s.PlannedAt,
		})
	}
	return plan, nil
}

func (r createRouteRequest) toCommand() (commands.CreateRouteCommand, error) {
	window, err := kernel.NewTimeWindow(r.WindowStart, r.WindowEnd)
	if err != nil {
		return commands.CreateRouteCommand{}, err
	}
	vehicleID, err := toKernelUUID(r.VehicleID)
	if err != nil {
		return commands.CreateRouteCommand{}, err
	}
	driverID, err := toKernelUUID(r.DriverID)
	if err != nil {
		return commands.CreateRouteCommand{}, err
	}
	orders, err := toRouteOrders(r.Orders)
	if err != nil {
		return commands.CreateRouteCommand{}, err
	}
	plan, err := toPlan(r.Stops)
	if err != nil {
		return commands.CreateRouteCommand{}, err
	}

	return commands.NewCreateRouteCommand(window, vehicleID, driverID, orders, plan, r.Notes)
}

func (r updateRouteRequest) toCommand(routeID kernel.UUID) (commands.UpdateRouteCommand, error) {
	changes := commands.RouteChanges{
		ExpectedVersion: r.ExpectedVersion,
		Notes:           r.Notes,
	}

	if r.WindowStart != nil || r.WindowEnd != nil {
		if r.WindowStart == nil || r.WindowEnd == nil {
			return commands.UpdateRouteCommand{}, errs.NewValueIsRequiredError("windowStart and windowEnd")
		}
		window, err := kernel.NewTimeWindow(*r.WindowStart, *r.WindowEnd)
		if err != nil {
			return commands.UpdateRouteCommand{}, err
		}
		changes.Window = &window
	}

	var err error
	if changes.VehicleID, err = toOptionalKernelUUID(r.VehicleID); err != nil {
		return commands.UpdateRouteCommand{}, err
	}
	if changes.DriverID, err = toOptionalKernelUUID(r.DriverID); err != nil {
		return commands.UpdateRouteCommand{}, err
	}
	if changes.Orders, err = toRouteOrders(r.Orders); err != nil {
		return commands.UpdateRouteCommand{}, err
	}
	if changes.Plan, err = toPlan(r.Stops); err != nil {
		return commands.UpdateRouteCommand{}, err
	}

	if r.Reorder != nil {
		changes.Reorder = make(map[kernel.UUID]int, len(r.Reorder))
		for _, item := range r.Reorder {
			stopID, err := toKernelUUID(item.StopID)
			if err != nil {
				return commands.UpdateRouteCommand{}, err
			}
			changes.Reorder[stopID] = item.Sequence
		}
	}

	return commands.NewUpdateRouteCommand(routeID, changes)
}
