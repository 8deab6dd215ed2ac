package order

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"fleet/internal/core/domain/model/kernel"
	"fleet/internal/pkg/errs"
)

var (
	// ErrOrderIsNotConstructed is returned for orders that bypassed NewOrder or RestoreOrder.
	ErrOrderIsNotConstructed = errors.New("Order must be created via NewOrder constructor")
)

// Order is the aggregate root of a single shipment.
//
// Order follows these invariants:
//   - Must have a valid unique identifier
//   - Must have non-empty pickup and drop-off addresses
//   - Weight and volume are never negative
//   - Status transitions follow the Status state machine
type Order struct {
	id             kernel.UUID
	customerName   string
	pickupAddress  string
	dropoffAddress string

	// weight in kilograms, 0 when unknown
	weight float64

	// volume in cubic metres, 0 when unknown
	volume float64

	// desiredDate is the UTC day the customer asked for, nil when open
	desiredDate *time.Time

	status        Status
	isConstructed bool
}

// NewOrder creates a Pending order.
//
// Parameters:
//   - id: unique identifier
//   - customerName: recipient shown to the driver, may be empty
//   - pickupAddress, dropoffAddress: where the load is collected and delivered
//   - weight: kilograms, 0 when unknown
//   - volume: cubic metres, 0 when unknown
//
// Returns:
//   - *Order: the created order if all validations pass
//   - error: every validation failure joined together
//
// Example:
//
//	o, err := order.NewOrder(kernel.NewUUID(), "ACME", "Warehouse 4", "Main St 12", 600, 1.5)
func NewOrder(
	id kernel.UUID,
	customerName string,
	pickupAddress string,
	dropoffAddress string,
	weight float64,
	volume float64,
) (*Order, error) {
	return RestoreOrder(id, customerName, pickupAddress, dropoffAddress, weight, volume, Pending)
}

// RestoreOrder rebuilds an order loaded from storage, status included.
func RestoreOrder(
	id kernel.UUID,
	customerName string,
	pickupAddress string,
	dropoffAddress string,
	weight float64,
	volume float64,
	status Status,
) (*Order, error) {
	o := &Order{
		customerName:  strings.TrimSpace(customerName),
		isConstructed: true,
	}

	if err := errors.Join(
		o.setID(id),
		o.setAddresses(pickupAddress, dropoffAddress),
		o.setLoad(weight, volume),
		o.setStatus(status),
	); err != nil {
		return nil, err
	}

	return o, nil
}

// Validate ensures the order was built by a constructor.
func (o *Order) Validate() error {
	if o == nil || !o.isConstructed {
		return ErrOrderIsNotConstructed
	}
	return nil
}

// IsEqual compares orders by identifier.
func (o *Order) IsEqual(other *Order) bool {
	return other != nil && o.id.IsEqual(other.id)
}

func (o *Order) ID() kernel.UUID {
	return o.id
}

func (o *Order) CustomerName() string {
	return o.customerName
}

func (o *Order) PickupAddress() string {
	return o.pickupAddress
}

func (o *Order) DropoffAddress() string {
	return o.dropoffAddress
}

// Weight returns the load in kilograms used by the capacity simulation.
func (o *Order) Weight() float64 {
	return o.weight
}

func (o *Order) Volume() float64 {
	return o.volume
}

func (o *Order) Status() Status {
	return o.status
}

// DesiredDate returns the requested delivery day or nil.
func (o *Order) DesiredDate() *time.Time {
	if o.desiredDate == nil {
		return nil
	}
	day := *o.desiredDate
	return &day
}

// SetDesiredDate records the requested delivery day, truncated to UTC midnight.
// nil clears it.
func (o *Order) SetDesiredDate(date *time.Time) {
	if date == nil {
		o.desiredDate = nil
		return
	}
	day := date.UTC().Truncate(24 * time.Hour)
	o.desiredDate = &day
}

// ValidateAssignable reports, without side effects, whether a route may take the order.
//
// Returns:
//   - nil for Pending, EnRoute and Incident orders
//   - *errs.NotEligibleError for Delivered and Cancelled orders
func (o *Order) ValidateAssignable() error {
	if err := o.status.ValidateAssign(); err != nil {
		return errs.NewNotEligibleError("order", o.id, fmt.Sprintf("status is %s", o.status))
	}
	return nil
}

// AssignToRoute marks the order as travelling with a route.
func (o *Order) AssignToRoute() error {
	if err := o.ValidateAssignable(); err != nil {
		return err
	}

	newStatus, err := o.status.AssignToRoute()
	if err != nil {
		return err
	}
	o.status = newStatus
	return nil
}

// Deliver marks the order as delivered after its drop-off stop was completed.
//
// Returns:
//   - nil on success
//   - *errs.StateConflictError when the order is not on the road
func (o *Order) Deliver() error {
	newStatus, err := o.status.Deliver()
	if err != nil {
		return errs.NewStateConflictErrorWithCause("order", o.id, "cannot deliver order", err)
	}
	o.status = newStatus
	return nil
}

// ReportIncident flags the order after a stop incident.
func (o *Order) ReportIncident() error {
	newStatus, err := o.status.ReportIncident()
	if err != nil {
		return errs.NewStateConflictErrorWithCause("order", o.id, "cannot report incident", err)
	}
	o.status = newStatus
	return nil
}

// Release detaches the order from its route. Delivered and Cancelled orders are
// left untouched. It reports whether the status changed.
func (o *Order) Release() bool {
	released := o.status.Release()
	if released == o.status {
		return false
	}
	o.status = released
	return true
}

func (o *Order) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	o.id = id
	return nil
}

func (o *Order) setAddresses(pickup, dropoff string) error {
	pickup = strings.TrimSpace(pickup)
	dropoff = strings.TrimSpace(dropoff)

	var err error
	if pickup == "" {
		err = errors.Join(err, errs.NewValueIsRequiredError("pickupAddress"))
	}
	if dropoff == "" {
		err = errors.Join(err, errs.NewValueIsRequiredError("dropoffAddress"))
	}
	if err != nil {
		return err
	}

	o.pickupAddress = pickup
	o.dropoffAddress = dropoff
	return nil
}

func (o *Order) setLoad(weight, volume float64) error {
	var err error
	if weight < 0 {
		err = errors.Join(err, errs.NewValueIsInvalidErrorWithCause("weight is invalid", fmt.Errorf("%.2f is negative", weight)))
	}
	if volume < 0 {
		err = errors.Join(err, errs.NewValueIsInvalidErrorWithCause("volume is invalid", fmt.Errorf("%.2f is negative", volume)))
	}
	if err != nil {
		return err
	}

	o.weight = weight
	o.volume = volume
	return nil
}

func (o *Order) setStatus(status Status) error {
	if err := status.Validate(); err != nil {
		return err
	}
	o.status = status
	return nil
}
