package routerepo

import (
	"context"
	"errors"

	"fleet/internal/adapters/out/postgres/pgerrors"
	"fleet/internal/core/domain/model/kernel"
	"fleet/internal/core/domain/model/route"
	"fleet/internal/pkg/errs"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormRouteRepository implements ports.RouteRepository using GORM.
type GormRouteRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
}

type aggregateTracker interface {
	TrackAggregate(id kernel.UUID, aggregate any)
}

func NewGormRouteRepository(db *gorm.DB, tracker aggregateTracker) *GormRouteRepository {
	return &GormRouteRepository{
		db:      db,
		tracker: tracker,
	}
}

// Add inserts the route and its stops.
func (r *GormRouteRepository) Add(ctx context.Context, aggregate *route.Route) error {
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

// Update writes the route row guarded by its version and replaces the stops.
// The stored version becomes aggregate.Version()+1.
func (r *GormRouteRepository) Update(ctx context.Context, aggregate *route.Route) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	db := r.db.WithContext(ctx)

	result := db.Model(&RouteDTO{}).
		Where("id = ? AND version = ?", dto.ID, dto.Version).
		Updates(map[string]any{
			"vehicle_id":   dto.VehicleID,
			"driver_id":    dto.DriverID,
			"window_start": dto.WindowStart,
			"window_end":   dto.WindowEnd,
			"status":       dto.Status,
			"notes":        dto.Notes,
			"started_at":   dto.StartedAt,
			"finished_at":  dto.FinishedAt,
			"version":      gorm.Expr("version + 1"),
		})
	if result.Error != nil {
		return pgerrors.Translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return r.missingOrStale(ctx, aggregate)
	}

	if err := db.Where("route_id = ?", dto.ID).Delete(&StopDTO{}).Error; err != nil {
		return pgerrors.Translate(err)
	}
	if len(dto.Stops) > 0 {
		if err := db.Create(&dto.Stops).Error; err != nil {
			return pgerrors.Translate(err)
		}
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// Delete removes the route. Stops go with it through the foreign key.
func (r *GormRouteRepository) Delete(ctx context.Context, id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}

	result := r.db.WithContext(ctx).Where("id = ?", id.Bytes()).Delete(&RouteDTO{})
	if result.Error != nil {
		return pgerrors.Translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return errs.NewObjectNotFoundError("route", id.String())
	}
	return nil
}

// Get loads the route with its stops ordered by sequence and locks the route row.
func (r *GormRouteRepository) Get(ctx context.Context, id kernel.UUID) (*route.Route, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto RouteDTO
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Preload("Stops", func(db *gorm.DB) *gorm.DB {
			return db.Order("sequence, operation DESC")
		}).
		First(&dto, "id = ?", id.Bytes()).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("route", id.String())
		}
		return nil, pgerrors.Translate(err)
	}

	return toDomain(dto)
}

func (r *GormRouteRepository) BookingsForVehicle(
	ctx context.Context,
	vehicleID kernel.UUID,
	window kernel.TimeWindow,
) ([]route.Booking, error) {
	return r.bookings(ctx, "vehicle_id", vehicleID, window)
}

func (r *GormRouteRepository) BookingsForDriver(
	ctx context.Context,
	driverID kernel.UUID,
	window kernel.TimeWindow,
) ([]route.Booking, error) {
	return r.bookings(ctx, "driver_id", driverID, window)
}

// ActiveRoutesByOrders maps orders to the Planned or InProgress route holding one
// of their stops.
func (r *GormRouteRepository) ActiveRoutesByOrders(
	ctx context.Context,
	orderIDs []kernel.UUID,
) (map[kernel.UUID]kernel.UUID, error) {
	assigned := make(map[kernel.UUID]kernel.UUID, len(orderIDs))
	if len(orderIDs) == 0 {
		return assigned, nil
	}

	ids := make([]uuid.UUID, 0, len(orderIDs))
	for _, id := range orderIDs {
		ids = append(ids, id.Bytes())
	}

	var rows []struct {
		OrderID uuid.UUID
		RouteID uuid.UUID
	}
	err := r.db.WithContext(ctx).
		Table("route_stops AS s").
		Select("DISTINCT s.order_id, s.route_id").
		Joins("JOIN routes AS r ON r.id = s.route_id").
		Where("s.order_id IN ? AND r.status IN ?", ids, []int{int(route.Planned), int(route.InProgress)}).
		Scan(&rows).Error
	if err != nil {
		return nil, pgerrors.Translate(err)
	}

	for _, row := range rows {
		orderID, err := kernel.UUIDFromBytes(row.OrderID[:])
		if err != nil {
			return nil, err
		}
		routeID, err := kernel.UUIDFromBytes(row.RouteID[:])
		if err != nil {
			return nil, err
		}
		assigned[orderID] = routeID
	}
	return assigned, nil
}

// bookings returns non-cancelled routes of one resource whose window intersects
// the half-open window.
func (r *GormRouteRepository) bookings(
	ctx context.Context,
	column string,
	resourceID kernel.UUID,
	window kernel.TimeWindow,
) ([]route.Booking, error) {
	if err := errors.Join(resourceID.Validate(), window.Validate()); err != nil {
		return nil, err
	}

	var dtos []bookingDTO
	err := r.db.WithContext(ctx).
		Model(&RouteDTO{}).
		Select("id, window_start, window_end, status").
		Where(clause.Eq{Column: clause.Column{Name: column}, Value: resourceID.Bytes()}).
		Where("status <> ? AND window_start < ? AND window_end > ?", int(route.Cancelled), window.End(), window.Start()).
		Order("window_start").
		Find(&dtos).Error
	if err != nil {
		return nil, pgerrors.Translate(err)
	}

	bookings := make([]route.Booking, 0, len(dtos))
	for _, dto := range dtos {
		b, err := dto.toDomain()
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, b)
	}
	return bookings, nil
}

func (r *GormRouteRepository) missingOrStale(ctx context.Context, aggregate *route.Route) error {
	var count int64
	err := r.db.WithContext(ctx).Model(&RouteDTO{}).Where("id = ?", aggregate.ID().Bytes()).Count(&count).Error
	if err != nil {
		return pgerrors.Translate(err)
	}
	if count == 0 {
		return errs.NewObjectNotFoundError("route", aggregate.ID().String())
	}
	return errs.NewStateConflictErrorWithCause(
		"route",
		aggregate.ID().String(),
		"route was modified concurrently",
		errs.NewVersionIsInvalidError("version"),
	)
}
