package order

import (
	"fmt"

	"fleet/internal/pkg/errs"
)

// Status is the lifecycle state of an order.
//
// State transitions:
//
//	Pending ──> EnRoute ──> Delivered
//	   ^           │  ^
//	   │           v  │
//	   └──────── Incident
//
//	Cancelled is set outside of the scheduling engine and is terminal.
type Status int

const (
	// Unknown catches uninitialised values.
	Unknown Status = iota

	// Pending orders wait for a route.
	Pending

	// EnRoute orders belong to a planned or running route.
	EnRoute

	// Delivered orders had their drop-off stop completed. Terminal.
	Delivered

	// Incident orders hit a problem on the road and wait for a decision.
	Incident

	// Cancelled orders were withdrawn by the customer or an operator. Terminal.
	Cancelled
)

func getStatusStrings() map[Status]string {
	return map[Status]string{
		Unknown:   "Unknown",
		Pending:   "Pending",
		EnRoute:   "EnRoute",
		Delivered: "Delivered",
		Incident:  "Incident",
		Cancelled: "Cancelled",
	}
}

func getValidStatusStrings() map[Status]string {
	//nolint:exhaustive // Unknown is intentionally excluded as it's invalid
	return map[Status]string{
		Pending:   "Pending",
		EnRoute:   "EnRoute",
		Delivered: "Delivered",
		Incident:  "Incident",
		Cancelled: "Cancelled",
	}
}

// ParseStatus maps the persisted name back to a Status.
func ParseStatus(s string) (Status, error) {
	for status, name := range getValidStatusStrings() {
		if name == s {
			return status, nil
		}
	}
	return Unknown, errs.NewValueIsInvalidErrorWithCause("status is invalid", fmt.Errorf("%q is not a valid status", s))
}

// Validate rejects Unknown and out-of-range values.
func (s Status) Validate() error {
	if _, ok := getValidStatusStrings()[s]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("status is invalid", fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

// String returns the status name, or "Unknown" for invalid values.
func (s Status) String() string {
	if str, ok := getStatusStrings()[s]; ok {
		return str
	}
	return "Unknown"
}

// IsTerminal reports whether no further scheduling may touch the order.
func (s Status) IsTerminal() bool {
	return s == Delivered || s == Cancelled
}

// ValidateAssign checks that a route may take an order in this status.
func (s Status) ValidateAssign() error {
	if s != Pending && s != EnRoute && s != Incident {
		return errs.NewValueIsInvalidErrorWithCause(
			"status is invalid",
			fmt.Errorf("%s is not a valid status to assign", s),
		)
	}
	return nil
}

// AssignToRoute moves a schedulable order to EnRoute.
func (s Status) AssignToRoute() (Status, error) {
	if err := s.ValidateAssign(); err != nil {
		return s, err
	}
	return EnRoute, nil
}

// Deliver moves an order on the road to Delivered.
func (s Status) Deliver() (Status, error) {
	if s != EnRoute && s != Incident {
		return s, errs.NewValueIsInvalidErrorWithCause(
			"status is invalid",
			fmt.Errorf("%s is not a valid status to deliver", s),
		)
	}
	return Delivered, nil
}

// ReportIncident moves a pending or travelling order to Incident.
func (s Status) ReportIncident() (Status, error) {
	if s != EnRoute && s != Pending && s != Incident {
		return s, errs.NewValueIsInvalidErrorWithCause(
			"status is invalid",
			fmt.Errorf("%s is not a valid status to report an incident", s),
		)
	}
	return Incident, nil
}

// Release returns the status an order takes once its route goes away.
// Terminal statuses are kept.
func (s Status) Release() Status {
	if s.IsTerminal() {
		return s
	}
	return Pending
}
