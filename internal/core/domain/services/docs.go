// Package services holds the pure feasibility checks of the scheduling domain.
// They read aggregates and plans, never change them and never touch storage, so the
// same input always yields the same verdict.
//
// The package includes:
//   - AvailabilityValidator: vehicle and driver eligibility plus double-booking detection
//   - CapacitySimulator: running load over an ordered pickup and drop-off sequence
//   - SequencingValidator: pickup-before-dropoff and timestamp ordering rules
//
// Every rejection is a typed error that unwraps to a sentinel of package errs, so
// callers classify with errors.Is and read details with errors.As.
package services
