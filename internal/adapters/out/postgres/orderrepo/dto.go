// Package orderrepo maps order aggregates to the orders table.
package orderrepo

import (
	"time"

	"fleet/internal/core/domain/model/kernel"
	"fleet/internal/core/domain/model/order"

	"github.com/google/uuid"
)

// OrderDTO represents the database structure for persisting order aggregates.
// Status is indexed for the pending-order listings of the dispatch screens.
type OrderDTO struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	CustomerName   string
	PickupAddress  string     `gorm:"not null"`
	DropoffAddress string     `gorm:"not null"`
	Weight         float64    `gorm:"not null"`
	Volume         float64    `gorm:"not null"`
	DesiredDate    *time.Time `gorm:"type:date"`
	Status         int        `gorm:"not null;index"`
}

// TableName overrides GORM's default naming convention.
func (OrderDTO) TableName() string {
	return "orders"
}

func fromDomain(o *order.Order) OrderDTO {
	return OrderDTO{
		ID:             o.ID().Bytes(),
		CustomerName:   o.CustomerName(),
		PickupAddress:  o.PickupAddress(),
		DropoffAddress: o.DropoffAddress(),
		Weight:         o.Weight(),
		Volume:         o.Volume(),
		DesiredDate:    o.DesiredDate(),
		Status:         int(o.Status()),
	}
}

// toDomain reconstructs the aggregate, status included, using RestoreOrder.
func toDomain(dto OrderDTO) (*order.Order, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}

	o, err := order.RestoreOrder(
		id,
		dto.CustomerName,
		dto.PickupAddress,
		dto.DropoffAddress,
		dto.Weight,
		dto.Volume,
		order.Status(dto.Status),
	)
	if err != nil {
		return nil, err
	}
	o.SetDesiredDate(dto.DesiredDate)
	return o, nil
}
