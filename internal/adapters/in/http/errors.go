package http

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"fleet/internal/core/domain/services"
	"fleet/internal/pkg/errs"
	"fleet/internal/pkg/metrics"

	"github.com/labstack/echo/v4"
)

// Error is the body of every rejected request. Kind names the error class so
// that clients do not need to parse Message.
type Error struct {
	Code    int            `json:"code"`
	Kind    string         `json:"kind"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

const (
	KindObjectNotFound      = "ObjectNotFound"
	KindValueIsInvalid      = "ValueIsInvalid"
	KindNotEligible         = "NotEligible"
	KindOverlap             = "Overlap"
	KindCapacityExceeded    = "CapacityExceeded"
	KindSequencingViolation = "SequencingViolation"
	KindStateConflict       = "StateConflict"
	KindDuplicateAssignment = "DuplicateAssignment"
	KindUnauthorized        = "Unauthorized"
	KindForbidden           = "Forbidden"
	KindInternal            = "Internal"
)

// toError classifies err. Validator errors carry their details; everything the
// domain does not recognise becomes an opaque 500.
func toError(err error) Error {
	var (
		overlap     *services.OverlapError
		capacity    *services.CapacityExceededError
		sequencing  *services.SequencingError
		notFound    *errs.ObjectNotFoundError
		conflict    *errs.StateConflictError
		duplicate   *errs.DuplicateAssignmentError
		notEligible *errs.NotEligibleError
	)

	switch {
	case errors.As(err, &overlap):
		return Error{
			Code:    http.StatusUnprocessableEntity,
			Kind:    KindOverlap,
			Message: err.Error(),
			Details: map[string]any{
				"resource":               string(overlap.Resource),
				"resourceId":             overlap.ResourceID.String(),
				"conflictingRouteId":     overlap.ConflictingRouteID.String(),
				"conflictingWindowStart": overlap.ConflictingWindow.Start().UTC().Format(time.RFC3339),
				"conflictingWindowEnd":   overlap.ConflictingWindow.End().UTC().Format(time.RFC3339),
			},
		}
	case errors.As(err, &capacity):
		return Error{
			Code:    http.StatusUnprocessableEntity,
			Kind:    KindCapacityExceeded,
			Message: err.Error(),
			Details: map[string]any{
				"stopIndex":   capacity.StopIndex,
				"sequence":    capacity.Sequence,
				"orderId":     capacity.OrderID.String(),
				"accumulated": capacity.Accumulated,
				"capacity":    capacity.Capacity,
				"excess":      capacity.Excess(),
				"loadProfile": capacity.Profile,
			},
		}
	case errors.As(err, &sequencing):
		details := map[string]any{
			"violation": string(sequencing.Violation),
			"sequence":  sequencing.Sequence,
		}
		if sequencing.OrderID != nil {
			details["orderId"] = sequencing.OrderID.String()
		}
		if sequencing.Detail != "" {
			details["detail"] = sequencing.Detail
		}
		return Error{Code: http.StatusUnprocessableEntity, Kind: KindSequencingViolation, Message: err.Error(), Details: details}
	case errors.As(err, &notFound):
		return Error{
			Code:    http.StatusNotFound,
			Kind:    KindObjectNotFound,
			Message: err.Error(),
			Details: map[string]any{"param": notFound.ParamName, "id": fmt.Sprint(notFound.ID)},
		}
	case errors.As(err, &duplicate):
		return Error{
			Code:    http.StatusConflict,
			Kind:    KindDuplicateAssignment,
			Message: err.Error(),
			Details: map[string]any{"orderId": fmt.Sprint(duplicate.OrderID), "routeId": fmt.Sprint(duplicate.RouteID)},
		}
	case errors.As(err, &conflict):
		details := map[string]any{"param": conflict.ParamName, "id": fmt.Sprint(conflict.ID), "reason": conflict.Reason}
		if conflict.Pending > 0 {
			details["pendingStops"] = conflict.Pending
		}
		return Error{Code: http.StatusConflict, Kind: KindStateConflict, Message: err.Error(), Details: details}
	case errors.As(err, &notEligible):
		details := map[string]any{"param": notEligible.ParamName, "id": fmt.Sprint(notEligible.ID), "reason": notEligible.Reason}
		if notEligible.DaysExpired > 0 {
			details["daysExpired"] = notEligible.DaysExpired
		}
		return Error{Code: http.StatusUnprocessableEntity, Kind: KindNotEligible, Message: err.Error(), Details: details}
	case errors.Is(err, errs.ErrOverlap):
		return Error{Code: http.StatusUnprocessableEntity, Kind: KindOverlap, Message: err.Error()}
	case errors.Is(err, errs.ErrCapacityExceeded):
		return Error{Code: http.StatusUnprocessableEntity, Kind: KindCapacityExceeded, Message: err.Error()}
	case errors.Is(err, errs.ErrSequencingViolation):
		return Error{Code: http.StatusUnprocessableEntity, Kind: KindSequencingViolation, Message: err.Error()}
	case errors.Is(err, errs.ErrStateConflict), errors.Is(err, errs.ErrVersionIsInvalid):
		return Error{Code: http.StatusConflict, Kind: KindStateConflict, Message: err.Error()}
	case errors.Is(err, errs.ErrValueIsRequired),
		errors.Is(err, errs.ErrValueIsInvalid),
		errors.Is(err, errs.ErrValueIsOutOfRange):
		return Error{Code: http.StatusBadRequest, Kind: KindValueIsInvalid, Message: err.Error()}
	default:
		return Error{Code: http.StatusInternalServerError, Kind: KindInternal, Message: "internal error"}
	}
}

func badRequest(message string) Error {
	return Error{Code: http.StatusBadRequest, Kind: KindValueIsInvalid, Message: message}
}

// fail writes the rejection for a route operation and counts it.
func (s *Server) fail(ctx echo.Context, operation string, err error) error {
	body := toError(err)

	metrics.RecordRouteMutation(operation, "rejected")
	if body.Code == http.StatusInternalServerError {
		s.logger.Error("request failed", "operation", operation, "error", err)
	} else {
		metrics.RecordRejection(body.Kind)
	}
	return ctx.JSON(body.Code, body)
}

// failQuery writes the rejection for a read without counting a mutation.
func (s *Server) failQuery(ctx echo.Context, err error) error {
	body := toError(err)
	if body.Code == http.StatusInternalServerError {
		s.logger.Error("query failed", "path", ctx.Path(), "error", err)
	}
	return ctx.JSON(body.Code, body)
}
