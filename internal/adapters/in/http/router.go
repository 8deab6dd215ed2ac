package http

import (
	"time"

	"fleet/internal/pkg/metrics"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	echoSwagger "github.com/swaggo/echo-swagger"
)

// Register mounts the API under /api/v1 together with the operational
// endpoints. Every API route requires a bearer token and is validated against doc.
func (s *Server) Register(e *echo.Echo, auth *Authenticator, doc *openapi3.T, gatherer prometheus.Gatherer) error {
	validator, err := RequestValidator(doc)
	if err != nil {
		return err
	}

	e.Use(RequestDuration())

	e.GET("/health", s.Health)
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	e.GET("/openapi.yaml", OpenAPIDocument)
	e.GET("/swagger/*", echoSwagger.EchoWrapHandler(echoSwagger.URL("/openapi.yaml")))

	api := e.Group("/api/v1", auth.Middleware(), validator)

	read := Require(CapabilityReadRoutes)
	manage := Require(CapabilityManageRoutes)
	drive := Require(CapabilityDriveRoutes)
	report := Require(CapabilityReportIncidents)

	api.GET("/routes", s.ListRoutes, read)
	api.POST("/routes", s.CreateRoute, manage)
	api.GET("/routes/:routeId", s.GetRoute, read)
	api.PUT("/routes/:routeId", s.UpdateRoute, manage)
	api.DELETE("/routes/:routeId", s.DeleteRoute, manage)
	api.POST("/routes/:routeId/start", s.StartRoute, drive)
	api.POST("/routes/:routeId/finish", s.FinishRoute, drive)
	api.POST("/routes/:routeId/cancel", s.CancelRoute, manage)
	api.POST("/routes/:routeId/stops/:stopId/depart", s.MarkStopEnRoute, drive)
	api.POST("/routes/:routeId/stops/:stopId/complete", s.CompleteStop, drive)
	api.POST("/routes/:routeId/incidents", s.CreateRouteIncident, report)

	return nil
}

// RequestDuration observes the latency of every request by route template.
func RequestDuration() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			start := time.Now()
			err := next(ctx)

			code := ctx.Response().Status
			if httpErr, ok := err.(*echo.HTTPError); ok {
				code = httpErr.Code
			}
			metrics.RecordRequestDuration(ctx.Request().Method, ctx.Path(), code, time.Since(start))
			return err
		}
	}
}
