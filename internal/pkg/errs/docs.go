// Package errs provides the error vocabulary shared by every layer of the fleet
// scheduling service.
//
// Two families live here:
//   - value errors raised while building domain objects (ValueIsRequiredError,
//     ValueIsInvalidError, ValueIsOutOfRangeError, VersionIsInvalidError) and the
//     lookup failure ObjectNotFoundError;
//   - scheduling rejections (NotEligibleError, StateConflictError,
//     DuplicateAssignmentError) and the sentinels ErrOverlap, ErrCapacityExceeded and
//     ErrSequencingViolation that the detailed validator errors unwrap to.
//
// Each error type follows the same pattern:
//   - a sentinel error variable (e.g., ErrValueIsRequired)
//   - a struct type with fields for error details
//   - constructor functions with and without cause
//   - Error() for the message and Unwrap() returning the sentinel
//
// Callers classify failures with errors.Is against the sentinels and extract details
// with errors.As against the struct types.
package errs
