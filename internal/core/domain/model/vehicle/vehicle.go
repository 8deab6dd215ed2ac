package vehicle

import (
	"errors"
	"fmt"
	"strings"

	"fleet/internal/core/domain/model/kernel"
	"fleet/internal/pkg/errs"
	"fleet/internal/pkg/guard"
)

var (
	ErrPlateIsRequired         = errs.NewValueIsRequiredError("plate")
	ErrVehicleIsNotConstructed = errors.New("Vehicle must be created via NewVehicle constructor")
)

// Vehicle is the aggregate root of a fleet vehicle.
//
// Business rules:
//   - Vehicle must have a valid UUID and a licence plate
//   - Capacity, when set, is a non-negative number of kilograms
//   - Status follows the maintenance rules described by SyncMaintenance
type Vehicle struct {
	id    kernel.UUID
	name  string
	plate string

	// capacity in kilograms, nil when unknown
	capacity *float64

	status Status
	guard  guard.ConstructorGuard
}

// NewVehicle creates an Active vehicle.
//
// Parameters:
//   - id: unique identifier
//   - name: display name, may be empty
//   - plate: licence plate, required
//   - capacity: maximum load in kilograms, nil when unknown
//
// Example:
//
//	capacity := 1000.0
//	v, err := vehicle.NewVehicle(kernel.NewUUID(), "Van 3", "AB-123-CD", &capacity)
func NewVehicle(id kernel.UUID, name, plate string, capacity *float64) (*Vehicle, error) {
	return RestoreVehicle(id, name, plate, capacity, Active)
}

// RestoreVehicle rebuilds a vehicle loaded from storage.
func RestoreVehicle(id kernel.UUID, name, plate string, capacity *float64, status Status) (*Vehicle, error) {
	v := &Vehicle{
		name:  strings.TrimSpace(name),
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		v.setID(id),
		v.setPlate(plate),
		v.setCapacity(capacity),
		v.setStatus(status),
	); err != nil {
		return nil, err
	}

	return v, nil
}

// Validate ensures the vehicle was built by a constructor.
func (v *Vehicle) Validate() error {
	if v == nil {
		return ErrVehicleIsNotConstructed
	}
	return v.guard.Validate(ErrVehicleIsNotConstructed)
}

func (v *Vehicle) ID() kernel.UUID {
	return v.id
}

func (v *Vehicle) Name() string {
	return v.name
}

func (v *Vehicle) Plate() string {
	return v.plate
}

// Capacity returns the maximum load in kilograms, or nil when unknown.
func (v *Vehicle) Capacity() *float64 {
	if v.capacity == nil {
		return nil
	}
	c := *v.capacity
	return &c
}

// HasCapacityLimit reports whether load simulation applies to the vehicle.
func (v *Vehicle) HasCapacityLimit() bool {
	return v.capacity != nil && *v.capacity > 0
}

func (v *Vehicle) Status() Status {
	return v.status
}

// ValidateAssignable checks the vehicle can take a route.
//
// Returns:
//   - nil when the vehicle is Active and no maintenance is in progress
//   - *errs.NotEligibleError otherwise
func (v *Vehicle) ValidateAssignable(maintenanceInProgress bool) error {
	if v.status != Active {
		return errs.NewNotEligibleError("vehicle", v.id, fmt.Sprintf("status is %s", v.status))
	}
	if maintenanceInProgress {
		return errs.NewNotEligibleError("vehicle", v.id, "maintenance in progress")
	}
	return nil
}

// SyncMaintenance aligns the status with the maintenance records of the vehicle:
//   - Inactive vehicles are never touched
//   - a maintenance in progress moves the vehicle to InMaintenance
//   - no maintenance in progress moves an InMaintenance vehicle back to Active
//
// It reports whether the status changed.
func (v *Vehicle) SyncMaintenance(maintenanceInProgress bool) bool {
	if v.status == Inactive {
		return false
	}

	next := v.status
	switch {
	case maintenanceInProgress:
		next = InMaintenance
	case v.status == InMaintenance:
		next = Active
	}

	if next == v.status {
		return false
	}
	v.status = next
	return true
}

func (v *Vehicle) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	v.id = id
	return nil
}

func (v *Vehicle) setPlate(plate string) error {
	plate = strings.TrimSpace(plate)
	if plate == "" {
		return ErrPlateIsRequired
	}
	v.plate = plate
	return nil
}

func (v *Vehicle) setCapacity(capacity *float64) error {
	if capacity == nil {
		v.capacity = nil
		return nil
	}
	if *capacity < 0 {
		return errs.NewValueIsInvalidErrorWithCause("capacity is invalid", fmt.Errorf("%.2f is negative", *capacity))
	}
	c := *capacity
	v.capacity = &c
	return nil
}

func (v *Vehicle) setStatus(status Status) error {
	if err := status.Validate(); err != nil {
		return err
	}
	v.status = status
	return nil
}
