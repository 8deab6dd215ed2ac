// Package order provides the Order aggregate: a shipment that is picked up at one
// address and dropped off at another by a scheduled route.
//
// The package includes:
//   - Order: identity, addresses, load figures and lifecycle
//   - Status: the order state machine
//
// Key business rules:
//   - weight and volume are never negative; an unknown weight is stored as 0
//   - an order becomes EnRoute only when a route takes it
//   - an order becomes Delivered only when its drop-off stop is completed
//   - Delivered and Cancelled orders are never assigned again
//   - releasing an order from a route returns it to Pending unless it is
//     already Delivered or Cancelled
package order
