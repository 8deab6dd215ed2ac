// Package kernel holds the value objects shared by every aggregate of the fleet
// scheduling domain.
//
// The package includes:
//   - UUID: identifier of orders, vehicles, drivers, routes, stops and incidents
//   - TimeWindow: the [start, end) scheduling interval and the overlap rule used
//     to detect double-booked vehicles and drivers
//
// Both are immutable and safe for concurrent use.
package kernel
