// Package driverrepo persists drivers.
package driverrepo

import (
	"time"

	"fleet/internal/core/domain/model/driver"
	"fleet/internal/core/domain/model/kernel"

	"github.com/google/uuid"
)

type DriverDTO struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	FullName      string    `gorm:"not null"`
	LicenseNumber string    `gorm:"not null;uniqueIndex"`
	LicenseExpiry time.Time `gorm:"type:date;not null"`
	Active        bool      `gorm:"not null"`
}

func (DriverDTO) TableName() string {
	return "drivers"
}

func fromDomain(d *driver.Driver) DriverDTO {
	return DriverDTO{
		ID:            d.ID().Bytes(),
		FullName:      d.FullName(),
		LicenseNumber: d.LicenseNumber(),
		LicenseExpiry: d.LicenseExpiry(),
		Active:        d.IsActive(),
	}
}

func toDomain(dto DriverDTO) (*driver.Driver, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	return driver.RestoreDriver(id, dto.FullName, dto.LicenseNumber, dto.LicenseExpiry, dto.Active)
}
