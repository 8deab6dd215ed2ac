package queries

import (
	"context"
	"time"

	"fleet/internal/core/domain/model/kernel"
	"fleet/internal/core/domain/model/route"
	"fleet/internal/core/ports"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

// ListRoutesQueryHandler pages through route summaries through the projection cache.
type ListRoutesQueryHandler struct {
	db      *gorm.DB
	cache   ports.ProjectionCache
	ttl     time.Duration
	flights *singleflight.Group
}

func NewListRoutesQueryHandler(db *gorm.DB, cache ports.ProjectionCache, ttl time.Duration) ListRoutesQueryHandler {
	return ListRoutesQueryHandler{
		db:      db,
		cache:   cache,
		ttl:     ttl,
		flights: &singleflight.Group{},
	}
}

func (h ListRoutesQueryHandler) Handle(ctx context.Context, query ListRoutesQuery) (ListRoutesResponse, error) {
	if err := query.Validate(); err != nil {
		return ListRoutesResponse{}, err
	}

	return readThrough(ctx, h.flights, h.cache, h.ttl, query.CacheKey(),
		func(ctx context.Context) (ListRoutesResponse, error) {
			return h.load(ctx, query.Filter())
		})
}

type routeSummaryRow struct {
	ID           uuid.UUID
	VehicleID    uuid.UUID
	DriverID     uuid.UUID
	WindowStart  time.Time
	WindowEnd    time.Time
	Status       int
	Version      int
	StopCount    int
	PendingStops int
}

func (h ListRoutesQueryHandler) load(ctx context.Context, filter RouteFilter) (ListRoutesResponse, error) {
	db := h.db.WithContext(ctx)

	var total int64
	if err := applyRouteFilter(db.Table("routes AS r"), filter).Count(&total).Error; err != nil {
		return ListRoutesResponse{}, err
	}

	var rows []routeSummaryRow
	err := applyRouteFilter(db.Table("routes AS r"), filter).
		Select(`
			r.id,
			r.vehicle_id,
			r.driver_id,
			r.window_start,
			r.window_end,
			r.status,
			r.version,
			COUNT(s.id) AS stop_count,
			COUNT(s.id) FILTER (WHERE s.status <> ?) AS pending_stops
		`, int(route.StopDelivered)).
		Joins("LEFT JOIN route_stops AS s ON s.route_id = r.id").
		Group("r.id").
		Order("r.window_start, r.id").
		Offset(filter.Offset).
		Limit(filter.Limit).
		Scan(&rows).Error
	if err != nil {
		return ListRoutesResponse{}, err
	}

	items := make([]RouteSummary, 0, len(rows))
	for _, row := range rows {
		summary, convErr := row.toSummary()
		if convErr != nil {
			return ListRoutesResponse{}, convErr
		}
		items = append(items, summary)
	}

	return ListRoutesResponse{
		Items:  items,
		Total:  total,
		Offset: filter.Offset,
		Limit:  filter.Limit,
	}, nil
}

func applyRouteFilter(tx *gorm.DB, filter RouteFilter) *gorm.DB {
	if filter.Date != nil {
		tx = tx.Where("r.window_start < ? AND r.window_end > ?", filter.Date.Add(24*time.Hour), *filter.Date)
	}
	if filter.Status != nil {
		tx = tx.Where("r.status = ?", int(*filter.Status))
	}
	if filter.DriverID != nil {
		tx = tx.Where("r.driver_id = ?", filter.DriverID.Bytes())
	}
	if filter.VehicleID != nil {
		tx = tx.Where("r.vehicle_id = ?", filter.VehicleID.Bytes())
	}
	return tx
}

func (r routeSummaryRow) toSummary() (RouteSummary, error) {
	id, err := kernel.UUIDFromBytes(r.ID[:])
	if err != nil {
		return RouteSummary{}, err
	}
	vehicleID, err := kernel.UUIDFromBytes(r.VehicleID[:])
	if err != nil {
		return RouteSummary{}, err
	}
	driverID, err := kernel.UUIDFromBytes(r.DriverID[:])
	if err != nil {
		return RouteSummary{}, err
	}

	return RouteSummary{
		ID:           id,
		VehicleID:    vehicleID,
		DriverID:     driverID,
		WindowStart:  r.WindowStart.UTC(),
		WindowEnd:    r.WindowEnd.UTC(),
		Status:       route.Status(r.Status).String(),
		Version:      r.Version,
		StopCount:    r.StopCount,
		PendingStops: r.PendingStops,
	}, nil
}
