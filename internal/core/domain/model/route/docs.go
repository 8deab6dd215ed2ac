// Package route provides the Route aggregate and its Stop entities.
//
// A route books one vehicle and one driver for a time window and visits an ordered
// list of stops. Every order on the route has one Pickup stop and one Dropoff stop.
//
// Route state transitions:
//
//	Planned ──start──> InProgress ──finish──> Completed
//	   │                   │
//	   └──cancel──> Cancelled <──cancel──┘
//
// Stop state transitions:
//
//	Pending ──depart──> EnRoute ──complete──> Delivered
//	   │  └──────────complete───────────────────^
//	   └──incident──> Incident <──incident── EnRoute
//
// The aggregate records lifecycle events that the unit of work publishes once the
// surrounding transaction has committed.
package route
