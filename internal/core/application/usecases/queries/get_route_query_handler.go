package queries

import (
	"context"
	"encoding/json"
	"time"

	"fleet/internal/core/domain/model/kernel"
	"fleet/internal/core/domain/model/route"
	"fleet/internal/core/ports"
	"fleet/internal/pkg/errs"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

// GetRouteQueryHandler reads a route projection through the projection cache.
// Concurrent misses for the same route share one database read.
type GetRouteQueryHandler struct {
	db      *gorm.DB
	cache   ports.ProjectionCache
	ttl     time.Duration
	flights *singleflight.Group
}

// NewGetRouteQueryHandler creates the handler. A nil cache reads the database on
// every call.
func NewGetRouteQueryHandler(db *gorm.DB, cache ports.ProjectionCache, ttl time.Duration) GetRouteQueryHandler {
	return GetRouteQueryHandler{
		db:      db,
		cache:   cache,
		ttl:     ttl,
		flights: &singleflight.Group{},
	}
}

// Handle returns *errs.ObjectNotFoundError for an unknown route.
func (h GetRouteQueryHandler) Handle(ctx context.Context, query GetRouteQuery) (RouteView, error) {
	if err := query.Validate(); err != nil {
		return RouteView{}, err
	}

	return readThrough(ctx, h.flights, h.cache, h.ttl, ports.RouteItemKey(query.RouteID()),
		func(ctx context.Context) (RouteView, error) {
			return h.load(ctx, query.RouteID())
		})
}

func (h GetRouteQueryHandler) load(ctx context.Context, routeID kernel.UUID) (RouteView, error) {
	db := h.db.WithContext(ctx)

	var (
		view                    RouteView
		id, vehicleID, driverID uuid.UUID
		status                  int
		windowStart, windowEnd  time.Time
		startedAt, finishedAt   *time.Time
	)
	row := db.Raw(`
		SELECT
			id,
			vehicle_id,
			driver_id,
			window_start,
			window_end,
			status,
			notes,
			started_at,
			finished_at,
			version
		FROM routes
		WHERE id = ?
	`, routeID.Bytes()).Row()
	if err := row.Scan(
		&id,
		&vehicleID,
		&driverID,
		&windowStart,
		&windowEnd,
		&status,
		&view.Notes,
		&startedAt,
		&finishedAt,
		&view.Version,
	); err != nil {
		if isNoRows(err) {
			return RouteView{}, errs.NewObjectNotFoundError("route", routeID.String())
		}
		return RouteView{}, err
	}

	var err error
	if view.ID, err = kernel.UUIDFromBytes(id[:]); err != nil {
		return RouteView{}, err
	}
	if view.VehicleID, err = kernel.UUIDFromBytes(vehicleID[:]); err != nil {
		return RouteView{}, err
	}
	if view.DriverID, err = kernel.UUIDFromBytes(driverID[:]); err != nil {
		return RouteView{}, err
	}
	view.WindowStart = windowStart.UTC()
	view.WindowEnd = windowEnd.UTC()
	view.Status = route.Status(status).String()
	view.StartedAt = utc(startedAt)
	view.FinishedAt = utc(finishedAt)

	if view.Stops, err = h.loadStops(ctx, routeID); err != nil {
		return RouteView{}, err
	}
	return view, nil
}

func (h GetRouteQueryHandler) loadStops(ctx context.Context, routeID kernel.UUID) ([]StopView, error) {
	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			id,
			order_id,
			operation,
			sequence,
			address,
			planned_at,
			status,
			completed_at,
			proof_refs
		FROM route_stops
		WHERE route_id = ?
		ORDER BY sequence, operation DESC
	`, routeID.Bytes()).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stops := make([]StopView, 0)
	for rows.Next() {
		var (
			stop                   StopView
			id, orderID            uuid.UUID
			operation, status      int
			plannedAt, completedAt *time.Time
			proofRefs              []byte
		)
		if err = rows.Scan(
			&id,
			&orderID,
			&operation,
			&stop.Sequence,
			&stop.Address,
			&plannedAt,
			&status,
			&completedAt,
			&proofRefs,
		); err != nil {
			return nil, err
		}

		if stop.ID, err = kernel.UUIDFromBytes(id[:]); err != nil {
			return nil, err
		}
		if stop.OrderID, err = kernel.UUIDFromBytes(orderID[:]); err != nil {
			return nil, err
		}
		if len(proofRefs) > 0 {
			if err = json.Unmarshal(proofRefs, &stop.ProofRefs); err != nil {
				return nil, err
			}
		}
		stop.Operation = route.Operation(operation).String()
		stop.Status = route.StopStatus(status).String()
		stop.PlannedAt = utc(plannedAt)
		stop.CompletedAt = utc(completedAt)
		stops = append(stops, stop)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}
	return stops, nil
}
