package route

import (
	"fmt"

	"fleet/internal/pkg/errs"
)

// Status is the lifecycle state of a route.
type Status int

const (
	Unknown Status = iota
	Planned
	InProgress
	Completed
	Cancelled
)

func getStatusStrings() map[Status]string {
	return map[Status]string{
		Unknown:    "Unknown",
		Planned:    "Planned",
		InProgress: "InProgress",
		Completed:  "Completed",
		Cancelled:  "Cancelled",
	}
}

// ParseStatus maps the persisted name back to a Status.
func ParseStatus(s string) (Status, error) {
	for status, name := range getStatusStrings() {
		if status != Unknown && name == s {
			return status, nil
		}
	}
	return Unknown, errs.NewValueIsInvalidErrorWithCause("status is invalid", fmt.Errorf("%q is not a valid status", s))
}

// Validate rejects Unknown and out-of-range values.
func (s Status) Validate() error {
	if s < Planned || s > Cancelled {
		return errs.NewValueIsInvalidErrorWithCause("status is invalid", fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

func (s Status) String() string {
	if str, ok := getStatusStrings()[s]; ok {
		return str
	}
	return "Unknown"
}

// IsActive reports whether the route still holds its orders: Planned or InProgress.
func (s Status) IsActive() bool {
	return s == Planned || s == InProgress
}

// Start moves a Planned route to InProgress.
func (s Status) Start() (Status, error) {
	if s != Planned {
		return s, errs.NewValueIsInvalidErrorWithCause("status is invalid", fmt.Errorf("%s is not a valid status to start", s))
	}
	return InProgress, nil
}

// Finish moves an InProgress route to Completed.
func (s Status) Finish() (Status, error) {
	if s != InProgress {
		return s, errs.NewValueIsInvalidErrorWithCause("status is invalid", fmt.Errorf("%s is not a valid status to finish", s))
	}
	return Completed, nil
}

// Cancel moves an active route to Cancelled.
func (s Status) Cancel() (Status, error) {
	if !s.IsActive() {
		return s, errs.NewValueIsInvalidErrorWithCause("status is invalid", fmt.Errorf("%s is not a valid status to cancel", s))
	}
	return Cancelled, nil
}
