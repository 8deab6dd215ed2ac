// Package ports defines the contracts between the scheduling core and infrastructure:
// repositories bound to a unit of work, the projection cache, the lifecycle event
// publisher and the clock. Adapters under internal/adapters implement them.
package ports
