package route

import (
	"time"

	"fleet/internal/core/domain/model/kernel"
)

// EventType names a route lifecycle event.
type EventType string

const (
	EventRouteCreated   EventType = "route.created"
	EventRouteUpdated   EventType = "route.updated"
	EventRouteStarted   EventType = "route.started"
	EventRouteFinished  EventType = "route.finished"
	EventRouteCancelled EventType = "route.cancelled"
	EventRouteDeleted   EventType = "route.deleted"
	EventStopEnRoute    EventType = "stop.en_route"
	EventStopCompleted  EventType = "stop.completed"
	EventStopIncident   EventType = "stop.incident"
)

// Event is a fact about a route, recorded by the aggregate and published after commit.
type Event struct {
	Type       EventType
	RouteID    kernel.UUID
	StopID     *kernel.UUID
	OrderID    *kernel.UUID
	OccurredAt time.Time
}
