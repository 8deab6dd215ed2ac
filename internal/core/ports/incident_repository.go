package ports

import (
	"context"

	"fleet/internal/core/domain/model/incident"
)

// IncidentRepository stores incident reports. Reports are append-only.
type IncidentRepository interface {
	Add(ctx context.Context, aggregate *incident.Incident) error
}
