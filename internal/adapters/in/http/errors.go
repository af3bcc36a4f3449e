package http

import (
	"errors"
	"net/http"

	"custody/internal/pkg/errs"

	"github.com/labstack/echo/v4"
)

const reQueryMessage = "the ledger did not answer and the outcome is unknown; re-query the delivery before retrying"

// writeError maps a use case error to its HTTP status. Custody rejections carry
// the operation and the state they were attempted from.
func writeError(c echo.Context, err error) error {
	body := Error{Message: err.Error()}

	var (
		unauthorized *errs.UnauthorizedError
		invalid      *errs.InvalidTransitionError
		conflict     *errs.ConflictingHandoffError
	)
	switch {
	case errors.As(err, &unauthorized):
		body.Code = http.StatusForbidden
		body.Operation, body.FromState = unauthorized.Operation, unauthorized.FromState
	case errors.As(err, &invalid):
		body.Code = http.StatusConflict
		body.Operation, body.FromState = invalid.Operation, invalid.FromState
	case errors.As(err, &conflict):
		body.Code = http.StatusConflict
		body.Operation, body.FromState = conflict.Operation, conflict.FromState
	case errors.Is(err, errs.ErrLedgerUnavailable):
		body.Code = http.StatusServiceUnavailable
		body.Message = reQueryMessage
	case errors.Is(err, errs.ErrObjectNotFound):
		body.Code = http.StatusNotFound
	case errors.Is(err, errs.ErrValueIsRequired),
		errors.Is(err, errs.ErrValueIsInvalid),
		errors.Is(err, errs.ErrValueIsOutOfRange):
		body.Code = http.StatusBadRequest
	default:
		body.Code = http.StatusInternalServerError
		body.Message = "internal error"
	}

	if body.Code == http.StatusInternalServerError {
		c.Logger().Errorf("request failed: %v", err)
	}
	return c.JSON(body.Code, body)
}

func badRequest(c echo.Context, message string) error {
	return c.JSON(http.StatusBadRequest, Error{Code: http.StatusBadRequest, Message: message})
}
