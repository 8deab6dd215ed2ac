package ports

import (
	"context"

	"fleet/internal/core/domain/model/route"
)

// EventPublisher announces committed route lifecycle events. Delivery is best-effort:
// publishing never undoes a committed mutation.
type EventPublisher interface {
	Publish(ctx context.Context, events []route.Event)
}
