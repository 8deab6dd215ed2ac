package commands

import (
	"context"

	"fleet/internal/core/domain/model/kernel"
	"fleet/internal/core/domain/model/route"
	"fleet/internal/core/ports"
)

// PostCommit runs the side effects of a committed route mutation: projection cache
// invalidation and lifecycle event publishing. Neither can fail the mutation.
// Both collaborators are optional.
type PostCommit struct {
	cache  ports.CacheInvalidator
	events ports.EventPublisher
}

func NewPostCommit(cache ports.CacheInvalidator, events ports.EventPublisher) PostCommit {
	return PostCommit{
		cache:  cache,
		events: events,
	}
}

// RouteChanged invalidates the route and the touched orders, then publishes and
// clears the events recorded on the aggregate.
func (p PostCommit) RouteChanged(ctx context.Context, aggregate *route.Route, orderIDs []kernel.UUID) {
	if p.cache != nil {
		p.cache.InvalidateRoute(ctx, aggregate.ID(), orderIDs)
	}

	events := aggregate.Events()
	aggregate.ClearEvents()
	if p.events != nil && len(events) > 0 {
		p.events.Publish(ctx, events)
	}
}
