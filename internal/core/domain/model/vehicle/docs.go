// Package vehicle provides the Vehicle aggregate: a truck or van that routes are
// scheduled on.
//
// Key business rules:
//   - only Active vehicles can be assigned to a route
//   - a maintenance record in progress forces InMaintenance and blocks assignment
//   - Inactive vehicles are retired by an operator and never changed by maintenance sync
//   - an unset or zero capacity disables load checks for the vehicle
package vehicle
