package http

import (
	"net/http"

	"custody/internal/core/domain/model/kernel"

	"github.com/labstack/echo/v4"
)

// Identity headers set by the gateway in front of this service.
const (
	HeaderUserID   = "X-User-ID"
	HeaderUserRole = "X-User-Role"
)

// actorFrom builds the acting party from the identity headers.
func actorFrom(c echo.Context) (kernel.Party, error) {
	header := c.Request().Header

	role, err := kernel.ParseRole(header.Get(HeaderUserRole))
	if err != nil {
		return kernel.Party{}, echo.NewHTTPError(http.StatusUnauthorized, "missing or unknown "+HeaderUserRole)
	}
	actor, err := kernel.NewParty(header.Get(HeaderUserID), role)
	if err != nil {
		return kernel.Party{}, echo.NewHTTPError(http.StatusUnauthorized, "missing or invalid "+HeaderUserID)
	}
	return actor, nil
}
