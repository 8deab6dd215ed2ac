// Package incidentrepo stores incident reports.
package incidentrepo

import (
	"time"

	"fleet/internal/core/domain/model/incident"

	"github.com/google/uuid"
)

type IncidentDTO struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey"`
	RouteID     uuid.UUID  `gorm:"type:uuid;not null;index"`
	StopID      *uuid.UUID `gorm:"type:uuid"`
	Type        string     `gorm:"not null"`
	Description string     `gorm:"not null"`
	PhotoRefs   []string   `gorm:"type:jsonb;serializer:json"`
	ReportedBy  *uuid.UUID `gorm:"type:uuid"`
	CreatedAt   time.Time  `gorm:"not null"`
}

func (IncidentDTO) TableName() string {
	return "incidents"
}

func fromDomain(i *incident.Incident) IncidentDTO {
	dto := IncidentDTO{
		ID:          i.ID().Bytes(),
		RouteID:     i.RouteID().Bytes(),
		Type:        i.Type().String(),
		Description: i.Description(),
		PhotoRefs:   i.PhotoRefs(),
		CreatedAt:   i.CreatedAt(),
	}
	if stopID := i.StopID(); stopID != nil {
		raw := stopID.Bytes()
		dto.StopID = &raw
	}
	if reportedBy := i.ReportedBy(); reportedBy != nil {
		raw := reportedBy.Bytes()
		dto.ReportedBy = &raw
	}
	return dto
}
