package incidentrepo

import (
	"context"

	"fleet/internal/adapters/out/postgres/pgerrors"
	"fleet/internal/core/domain/model/incident"
	"fleet/internal/core/domain/model/kernel"

	"gorm.io/gorm"
)

// GormIncidentRepository implements ports.IncidentRepository using GORM.
type GormIncidentRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
}

type aggregateTracker interface {
	TrackAggregate(id kernel.UUID, aggregate any)
}

func NewGormIncidentRepository(db *gorm.DB, tracker aggregateTracker) *GormIncidentRepository {
	return &GormIncidentRepository{
		db:      db,
		tracker: tracker,
	}
}

// Add appends the report. Incidents are never updated.
func (r *GormIncidentRepository) Add(ctx context.Context, aggregate *incident.Incident) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		return pgerrors.Translate(err)
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}
