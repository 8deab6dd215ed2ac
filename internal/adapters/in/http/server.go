package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"fleet/internal/core/application/usecases/commands"
	"fleet/internal/core/application/usecases/queries"
	"fleet/internal/core/domain/model/incident"
	"fleet/internal/core/domain/model/kernel"
	"fleet/internal/core/domain/model/route"
	"fleet/internal/pkg/errs"
	"fleet/internal/pkg/metrics"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/oapi-codegen/runtime"
	"github.com/oapi-codegen/runtime/types"
)

// Use case contracts consumed by the server. The application handlers in
// usecases/commands and usecases/queries satisfy them.
type (
	CreateRouteHandler interface {
		Handle(ctx context.Context, command commands.CreateRouteCommand) error
	}
	UpdateRouteHandler interface {
		Handle(ctx context.Context, command commands.UpdateRouteCommand) error
	}
	DeleteRouteHandler interface {
		Handle(ctx context.Context, command commands.DeleteRouteCommand) error
	}
	StartRouteHandler interface {
		Handle(ctx context.Context, command commands.StartRouteCommand) error
	}
	FinishRouteHandler interface {
		Handle(ctx context.Context, command commands.FinishRouteCommand) error
	}
	CancelRouteHandler interface {
		Handle(ctx context.Context, command commands.CancelRouteCommand) error
	}
	MarkStopEnRouteHandler interface {
		Handle(ctx context.Context, command commands.MarkStopEnRouteCommand) error
	}
	CompleteStopHandler interface {
		Handle(ctx context.Context, command commands.CompleteStopCommand) error
	}
	CreateRouteIncidentHandler interface {
		Handle(ctx context.Context, command commands.CreateRouteIncidentCommand) error
	}
	GetRouteHandler interface {
		Handle(ctx context.Context, query queries.GetRouteQuery) (queries.RouteView, error)
	}
	ListRoutesHandler interface {
		Handle(ctx context.Context, query queries.ListRoutesQuery) (queries.ListRoutesResponse, error)
	}
)

var errNoDriverIdentity = errors.New("token carries no driver id")

// HealthCheck reports whether a dependency is reachable.
type HealthCheck func(ctx context.Context) error

// Handlers groups the use cases served over HTTP.
type Handlers struct {
	CreateRoute         CreateRouteHandler
	UpdateRoute         UpdateRouteHandler
	DeleteRoute         DeleteRouteHandler
	StartRoute          StartRouteHandler
	FinishRoute         FinishRouteHandler
	CancelRoute         CancelRouteHandler
	MarkStopEnRoute     MarkStopEnRouteHandler
	CompleteStop        CompleteStopHandler
	CreateRouteIncident CreateRouteIncidentHandler
	GetRoute            GetRouteHandler
	ListRoutes          ListRoutesHandler
}

// Server translates HTTP requests into commands and queries and their results
// into JSON responses.
type Server struct {
	handlers Handlers
	checks   map[string]HealthCheck
	logger   *slog.Logger
}

// NewServer creates the HTTP server. checks are run by the health endpoint.
func NewServer(handlers Handlers, checks map[string]HealthCheck, logger *slog.Logger) *Server {
	return &Server{
		handlers: handlers,
		checks:   checks,
		logger:   logger.With("component", "http"),
	}
}

// ListRoutes handles GET /api/v1/routes.
func (s *Server) ListRoutes(ctx echo.Context) error {
	var params struct {
		Date      *types.Date
		Status    *string
		DriverID  *uuid.UUID
		VehicleID *uuid.UUID
		Offset    *int
		Limit     *int
	}

	query := ctx.QueryParams()
	for name, dest := range map[string]any{
		"date":      &params.Date,
		"status":    &params.Status,
		"driverId":  &params.DriverID,
		"vehicleId": &params.VehicleID,
		"offset":    &params.Offset,
		"limit":     &params.Limit,
	} {
		if err := runtime.BindQueryParameter("form", true, false, name, query, dest); err != nil {
			return s.failQuery(ctx, errs.NewValueIsInvalidErrorWithCause(name, err))
		}
	}

	filter := queries.RouteFilter{}
	if params.Date != nil {
		day := params.Date.Time
		filter.Date = &day
	}
	if params.Status != nil {
		status, err := route.ParseStatus(*params.Status)
		if err != nil {
			return s.failQuery(ctx, err)
		}
		filter.Status = &status
	}
	var err error
	if filter.DriverID, err = toOptionalKernelUUID(params.DriverID); err != nil {
		return s.failQuery(ctx, err)
	}
	if filter.VehicleID, err = toOptionalKernelUUID(params.VehicleID); err != nil {
		return s.failQuery(ctx, err)
	}
	if params.Offset != nil {
		filter.Offset = *params.Offset
	}
	if params.Limit != nil {
		filter.Limit = *params.Limit
	}

	listQuery, err := queries.NewListRoutesQuery(filter)
	if err != nil {
		return s.failQuery(ctx, err)
	}

	page, err := s.handlers.ListRoutes.Handle(ctx.Request().Context(), listQuery)
	if err != nil {
		return s.failQuery(ctx, err)
	}
	return ctx.JSON(http.StatusOK, page)
}

// GetRoute handles GET /api/v1/routes/:routeId.
func (s *Server) GetRoute(ctx echo.Context) error {
	routeID, err := pathUUID(ctx, "routeId")
	if err != nil {
		return s.failQuery(ctx, err)
	}

	query, err := queries.NewGetRouteQuery(routeID)
	if err != nil {
		return s.failQuery(ctx, err)
	}

	view, err := s.handlers.GetRoute.Handle(ctx.Request().Context(), query)
	if err != nil {
		return s.failQuery(ctx, err)
	}
	return ctx.JSON(http.StatusOK, view)
}

// CreateRoute handles POST /api/v1/routes.
func (s *Server) CreateRoute(ctx echo.Context) error {
	const operation = "create"

	var body createRouteRequest
	if err := ctx.Bind(&body); err != nil {
		return ctx.JSON(http.StatusBadRequest, badRequest("invalid request body"))
	}

	command, err := body.toCommand()
	if err != nil {
		return s.fail(ctx, operation, err)
	}
	if err = s.handlers.CreateRoute.Handle(ctx.Request().Context(), command); err != nil {
		return s.fail(ctx, operation, err)
	}

	metrics.RecordRouteMutation(operation, "ok")
	ctx.Response().Header().Set(echo.HeaderLocation, "/api/v1/routes/"+command.RouteID().String())
	return ctx.JSON(http.StatusCreated, createdResponse{ID: command.RouteID()})
}

// UpdateRoute handles PUT /api/v1/routes/:routeId.
func (s *Server) UpdateRoute(ctx echo.Context) error {
	const operation = "update"

	routeID, err := pathUUID(ctx, "routeId")
	if err != nil {
		return s.fail(ctx, operation, err)
	}

	var body updateRouteRequest
	if err = ctx.Bind(&body); err != nil {
		return ctx.JSON(http.StatusBadRequest, badRequest("invalid request body"))
	}

	command, err := body.toCommand(routeID)
	if err != nil {
		return s.fail(ctx, operation, err)
	}
	if err = s.handlers.UpdateRoute.Handle(ctx.Request().Context(), command); err != nil {
		return s.fail(ctx, operation, err)
	}

	metrics.RecordRouteMutation(operation, "ok")
	return ctx.NoContent(http.StatusNoContent)
}

// DeleteRoute handles DELETE /api/v1/routes/:routeId.
func (s *Server) DeleteRoute(ctx echo.Context) error {
	const operation = "delete"

	routeID, err := pathUUID(ctx, "routeId")
	if err != nil {
		return s.fail(ctx, operation, err)
	}

	command, err := commands.NewDeleteRouteCommand(routeID)
	if err != nil {
		return s.fail(ctx, operation, err)
	}
	if err = s.handlers.DeleteRoute.Handle(ctx.Request().Context(), command); err != nil {
		return s.fail(ctx, operation, err)
	}

	metrics.RecordRouteMutation(operation, "ok")
	return ctx.NoContent(http.StatusNoContent)
}

// StartRoute handles POST /api/v1/routes/:routeId/start. The caller must be a driver.
func (s *Server) StartRoute(ctx echo.Context) error {
	const operation = "start"

	routeID, driverID, err := routeAndDriver(ctx)
	if errors.Is(err, errNoDriverIdentity) {
		return forbidden(ctx, err.Error())
	}
	if err != nil {
		return s.fail(ctx, operation, err)
	}

	command, err := commands.NewStartRouteCommand(routeID, driverID)
	if err != nil {
		return s.fail(ctx, operation, err)
	}
	if err = s.handlers.StartRoute.Handle(ctx.Request().Context(), command); err != nil {
		return s.fail(ctx, operation, err)
	}

	metrics.RecordRouteMutation(operation, "ok")
	return ctx.NoContent(http.StatusNoContent)
}

// FinishRoute handles POST /api/v1/routes/:routeId/finish. The caller must be a driver.
func (s *Server) FinishRoute(ctx echo.Context) error {
	const operation = "finish"

	routeID, driverID, err := routeAndDriver(ctx)
	if errors.Is(err, errNoDriverIdentity) {
		return forbidden(ctx, err.Error())
	}
	if err != nil {
		return s.fail(ctx, operation, err)
	}

	command, err := commands.NewFinishRouteCommand(routeID, driverID)
	if err != nil {
		return s.fail(ctx, operation, err)
	}
	if err = s.handlers.FinishRoute.Handle(ctx.Request().Context(), command); err != nil {
		return s.fail(ctx, operation, err)
	}

	metrics.RecordRouteMutation(operation, "ok")
	return ctx.NoContent(http.StatusNoContent)
}

// CancelRoute handles POST /api/v1/routes/:routeId/cancel.
func (s *Server) CancelRoute(ctx echo.Context) error {
	const operation = "cancel"

	routeID, err := pathUUID(ctx, "routeId")
	if err != nil {
		return s.fail(ctx, operation, err)
	}

	command, err := commands.NewCancelRouteCommand(routeID)
	if err != nil {
		return s.fail(ctx, operation, err)
	}
	if err = s.handlers.CancelRoute.Handle(ctx.Request().Context(), command); err != nil {
		return s.fail(ctx, operation, err)
	}

	metrics.RecordRouteMutation(operation, "ok")
	return ctx.NoContent(http.StatusNoContent)
}

// MarkStopEnRoute handles POST /api/v1/routes/:routeId/stops/:stopId/depart.
func (s *Server) MarkStopEnRoute(ctx echo.Context) error {
	const operation = "depart"

	routeID, stopID, err := routeAndStop(ctx)
	if err != nil {
		return s.fail(ctx, operation, err)
	}

	command, err := commands.NewMarkStopEnRouteCommand(routeID, stopID)
	if err != nil {
		return s.fail(ctx, operation, err)
	}
	if err = s.handlers.MarkStopEnRoute.Handle(ctx.Request().Context(), command); err != nil {
		return s.fail(ctx, operation, err)
	}

	metrics.RecordRouteMutation(operation, "ok")
	return ctx.NoContent(http.StatusNoContent)
}

// CompleteStop handles POST /api/v1/routes/:routeId/stops/:stopId/complete.
func (s *Server) CompleteStop(ctx echo.Context) error {
	const operation = "complete"

	routeID, stopID, err := routeAndStop(ctx)
	if err != nil {
		return s.fail(ctx, operation, err)
	}

	var body completeStopRequest
	if ctx.Request().ContentLength != 0 {
		if err = ctx.Bind(&body); err != nil {
			return ctx.JSON(http.StatusBadRequest, badRequest("invalid request body"))
		}
	}

	command, err := commands.NewCompleteStopCommand(routeID, stopID, body.ProofRefs)
	if err != nil {
		return s.fail(ctx, operation, err)
	}
	if err = s.handlers.CompleteStop.Handle(ctx.Request().Context(), command); err != nil {
		return s.fail(ctx, operation, err)
	}

	metrics.RecordRouteMutation(operation, "ok")
	return ctx.NoContent(http.StatusNoContent)
}

// CreateRouteIncident handles POST /api/v1/routes/:routeId/incidents. A caller
// that is a driver is recorded as the reporter.
func (s *Server) CreateRouteIncident(ctx echo.Context) error {
	const operation = "incident"

	routeID, err := pathUUID(ctx, "routeId")
	if err != nil {
		return s.fail(ctx, operation, err)
	}

	var body createIncidentRequest
	if err = ctx.Bind(&body); err != nil {
		return ctx.JSON(http.StatusBadRequest, badRequest("invalid request body"))
	}

	stopID, err := toOptionalKernelUUID(body.StopID)
	if err != nil {
		return s.fail(ctx, operation, err)
	}
	kind, err := incident.ParseType(body.Type)
	if err != nil {
		return s.fail(ctx, operation, err)
	}

	command, err := commands.NewCreateRouteIncidentCommand(
		routeID, stopID, kind, body.Description, body.PhotoRefs, callerFrom(ctx).DriverID, body.CancelRoute,
	)
	if err != nil {
		return s.fail(ctx, operation, err)
	}
	if err = s.handlers.CreateRouteIncident.Handle(ctx.Request().Context(), command); err != nil {
		return s.fail(ctx, operation, err)
	}

	metrics.RecordRouteMutation(operation, "ok")
	return ctx.JSON(http.StatusCreated, createdResponse{ID: command.IncidentID()})
}

// Health handles GET /health. It answers 503 when any dependency check fails.
func (s *Server) Health(ctx echo.Context) error {
	checkCtx, cancel := context.WithTimeout(ctx.Request().Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	results := make(map[string]string, len(s.checks))
	for name, check := range s.checks {
		if err := check(checkCtx); err != nil {
			s.logger.Warn("health check failed", "dependency", name, "error", err)
			results[name] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		results[name] = "ok"
	}

	overall := "ok"
	if status != http.StatusOK {
		overall = "unavailable"
	}
	return ctx.JSON(status, map[string]any{"status": overall, "checks": results})
}

func pathUUID(ctx echo.Context, name string) (kernel.UUID, error) {
	var id uuid.UUID
	err := runtime.BindStyledParameterWithOptions("simple", name, ctx.Param(name), &id, runtime.BindStyledParameterOptions{
		ParamLocation: runtime.ParamLocationPath,
		Required:      true,
	})
	if err != nil {
		return kernel.UUID{}, errs.NewValueIsInvalidErrorWithCause(name, err)
	}
	return toKernelUUID(id)
}

func routeAndStop(ctx echo.Context) (kernel.UUID, kernel.UUID, error) {
	routeID, err := pathUUID(ctx, "routeId")
	if err != nil {
		return kernel.UUID{}, kernel.UUID{}, err
	}
	stopID, err := pathUUID(ctx, "stopId")
	if err != nil {
		return kernel.UUID{}, kernel.UUID{}, err
	}
	return routeID, stopID, nil
}

func routeAndDriver(ctx echo.Context) (kernel.UUID, kernel.UUID, error) {
	routeID, err := pathUUID(ctx, "routeId")
	if err != nil {
		return kernel.UUID{}, kernel.UUID{}, err
	}
	driverID := callerFrom(ctx).DriverID
	if driverID == nil {
		return kernel.UUID{}, kernel.UUID{}, errNoDriverIdentity
	}
	return routeID, *driverID, nil
}

func forbidden(ctx echo.Context, message string) error {
	return ctx.JSON(http.StatusForbidden, Error{Code: http.StatusForbidden, Kind: KindForbidden, Message: message})
}
