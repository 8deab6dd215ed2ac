package errs

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrObjectNotFound      = errors.New("object not found")
	ErrValueIsInvalid      = errors.New("value is invalid")
	ErrValueIsOutOfRange   = errors.New("value is out of range")
	ErrValueIsRequired     = errors.New("value is required")
	ErrVersionIsInvalid    = errors.New("version is invalid")
	ErrNotEligible         = errors.New("resource is not eligible")
	ErrOverlap             = errors.New("schedule overlap")
	ErrCapacityExceeded    = errors.New("capacity exceeded")
	ErrSequencingViolation = errors.New("sequencing violation")
	ErrStateConflict       = errors.New("state conflict")
	ErrDuplicateAssignment = errors.New("duplicate assignment")
)

// ObjectNotFoundError reports a lookup of a missing aggregate.
type ObjectNotFoundError struct {
	ParamName string
	ID        any
	Cause     error
}

func NewObjectNotFoundError(paramName string, id any) *ObjectNotFoundError {
	return &ObjectNotFoundError{
		ParamName: paramName,
		ID:        id,
	}
}

func NewObjectNotFoundErrorWithCause(paramName string, id any, cause error) *ObjectNotFoundError {
	return &ObjectNotFoundError{
		ParamName: paramName,
		ID:        id,
		Cause:     cause,
	}
}

func (e *ObjectNotFoundError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: param is: %s, ID is: %s (cause: %v)",
			ErrObjectNotFound, e.ParamName, e.ID, e.Cause)
	}
	return fmt.Sprintf("%s: %s", ErrObjectNotFound, e.ID)
}

func (e *ObjectNotFoundError) Unwrap() error {
	return ErrObjectNotFound
}

// ValueIsInvalidError reports a value that breaks a domain rule.
type ValueIsInvalidError struct {
	ParamName string
	Cause     error
}

func NewValueIsInvalidError(paramName string) *ValueIsInvalidError {
	return &ValueIsInvalidError{ParamName: paramName}
}

func NewValueIsInvalidErrorWithCause(paramName string, cause error) *ValueIsInvalidError {
	return &ValueIsInvalidError{
		ParamName: paramName,
		Cause:     cause,
	}
}

func (e *ValueIsInvalidError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", ErrValueIsInvalid, e.ParamName, e.Cause)
	}
	return fmt.Sprintf("%s: %s", ErrValueIsInvalid, e.ParamName)
}

func (e *ValueIsInvalidError) Unwrap() error {
	return ErrValueIsInvalid
}

// ValueIsOutOfRangeError reports a value outside of [Min, Max].
type ValueIsOutOfRangeError struct {
	ParamName string
	Value     any
	Min       any
	Max       any
	Cause     error
}

func NewValueIsOutOfRangeError(paramName string, value, minValue, maxValue any) *ValueIsOutOfRangeError {
	return &ValueIsOutOfRangeError{
		ParamName: paramName,
		Value:     value,
		Min:       minValue,
		Max:       maxValue,
	}
}

func NewValueIsOutOfRangeErrorWithCause(
	paramName string,
	value, minValue, maxValue any,
	cause error,
) *ValueIsOutOfRangeError {
	return &ValueIsOutOfRangeError{
		ParamName: paramName,
		Value:     value,
		Min:       minValue,
		Max:       maxValue,
		Cause:     cause,
	}
}

func (e *ValueIsOutOfRangeError) Error() string {
	msg := fmt.Sprintf("%s: %v is %s, min value is %v, max value is %v",
		ErrValueIsInvalid, sanitize(e.Value), e.ParamName, e.Min, e.Max)
	if e.Cause != nil {
		return fmt.Sprintf("%s (cause: %v)", msg, e.Cause)
	}
	return msg
}

func (e *ValueIsOutOfRangeError) Unwrap() error {
	return ErrValueIsOutOfRange
}

// ValueIsRequiredError reports a missing mandatory value.
type ValueIsRequiredError struct {
	ParamName string
	Cause     error
}

func NewValueIsRequiredError(paramName string) *ValueIsRequiredError {
	return &ValueIsRequiredError{ParamName: paramName}
}

func NewValueIsRequiredErrorWithCause(paramName string, cause error) *ValueIsRequiredError {
	return &ValueIsRequiredError{
		ParamName: paramName,
		Cause:     cause,
	}
}

func (e *ValueIsRequiredError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", ErrValueIsRequired, e.ParamName, e.Cause)
	}
	return fmt.Sprintf("%s: %s", ErrValueIsRequired, e.ParamName)
}

func (e *ValueIsRequiredError) Unwrap() error {
	return ErrValueIsRequired
}

// VersionIsInvalidError reports a stale or malformed aggregate version.
type VersionIsInvalidError struct {
	ParamName string
	Cause     error
}

func NewVersionIsInvalidError(paramName string) *VersionIsInvalidError {
	return &VersionIsInvalidError{ParamName: paramName}
}

func NewVersionIsInvalidErrorWithCause(paramName string, cause error) *VersionIsInvalidError {
	return &VersionIsInvalidError{
		ParamName: paramName,
		Cause:     cause,
	}
}

func (e *VersionIsInvalidError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", ErrVersionIsInvalid, e.ParamName, e.Cause)
	}
	return fmt.Sprintf("%s: %s", ErrVersionIsInvalid, e.ParamName)
}

func (e *VersionIsInvalidError) Unwrap() error {
	return ErrVersionIsInvalid
}

// NotEligibleError reports a vehicle, driver or order that cannot be scheduled.
// DaysExpired is set only for expired driver licences.
type NotEligibleError struct {
	ParamName   string
	ID          any
	Reason      string
	DaysExpired int
}

func NewNotEligibleError(paramName string, id any, reason string) *NotEligibleError {
	return &NotEligibleError{
		ParamName: paramName,
		ID:        id,
		Reason:    reason,
	}
}

func NewLicenseExpiredError(paramName string, id any, daysExpired int) *NotEligibleError {
	return &NotEligibleError{
		ParamName:   paramName,
		ID:          id,
		Reason:      fmt.Sprintf("license expired %d days ago", daysExpired),
		DaysExpired: daysExpired,
	}
}

func (e *NotEligibleError) Error() string {
	return fmt.Sprintf("%s: %s %s: %s", ErrNotEligible, e.ParamName, e.ID, e.Reason)
}

func (e *NotEligibleError) Unwrap() error {
	return ErrNotEligible
}

// StateConflictError reports an operation that the current lifecycle state forbids.
// Pending carries the number of unfinished stops when finishing a route is refused.
type StateConflictError struct {
	ParamName string
	ID        any
	Reason    string
	Pending   int
	Cause     error
}

func NewStateConflictError(paramName string, id any, reason string) *StateConflictError {
	return &StateConflictError{
		ParamName: paramName,
		ID:        id,
		Reason:    reason,
	}
}

func NewStateConflictErrorWithCause(paramName string, id any, reason string, cause error) *StateConflictError {
	return &StateConflictError{
		ParamName: paramName,
		ID:        id,
		Reason:    reason,
		Cause:     cause,
	}
}

func NewPendingStopsError(paramName string, id any, pending int) *StateConflictError {
	return &StateConflictError{
		ParamName: paramName,
		ID:        id,
		Reason:    fmt.Sprintf("%d stops are not delivered yet", pending),
		Pending:   pending,
	}
}

func (e *StateConflictError) Error() string {
	msg := fmt.Sprintf("%s: %s %s: %s", ErrStateConflict, e.ParamName, e.ID, e.Reason)
	if e.Cause != nil {
		return fmt.Sprintf("%s (cause: %v)", msg, e.Cause)
	}
	return msg
}

// Unwrap exposes the sentinel and, when present, the cause.
func (e *StateConflictError) Unwrap() []error {
	if e.Cause != nil {
		return []error{ErrStateConflict, e.Cause}
	}
	return []error{ErrStateConflict}
}

// DuplicateAssignmentError reports an order already attached to another active route.
type DuplicateAssignmentError struct {
	OrderID any
	RouteID any
}

func NewDuplicateAssignmentError(orderID, routeID any) *DuplicateAssignmentError {
	return &DuplicateAssignmentError{
		OrderID: orderID,
		RouteID: routeID,
	}
}

func (e *DuplicateAssignmentError) Error() string {
	return fmt.Sprintf("%s: order %s is already assigned to route %s", ErrDuplicateAssignment, e.OrderID, e.RouteID)
}

func (e *DuplicateAssignmentError) Unwrap() error {
	return ErrDuplicateAssignment
}

func sanitize(value any) any {
	s, ok := value.(string)
	if !ok {
		return value
	}
	return strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ").Replace(s)
}
