package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/urbano-social/backend/internal/apperrors"
	"github.com/urbano-social/backend/internal/auth"
	"github.com/urbano-social/backend/internal/middleware"
)

// toHTTPError translates a service or repository error into an echo HTTP error.
// Internal details never reach the response body.
func toHTTPError(err error) *echo.HTTPError {
	return echo.NewHTTPError(apperrors.HTTPStatus(err), apperrors.MessageOf(err))
}

// requireUser returns the authenticated user or a 401 when the auth middleware
// did not run.
func requireUser(c echo.Context) (auth.CurrentUser, error) {
	currentUser, ok := middleware.CurrentUserFrom(c)
	if !ok {
		return auth.CurrentUser{}, echo.NewHTTPError(http.StatusUnauthorized, "Authentication required")
	}
	return currentUser, nil
}

// paging reads skip/limit query parameters with sane bounds.
func paging(c echo.Context, defaultLimit, maxLimit int64) (skip, limit int64) {
	skip, _ = strconv.ParseInt(c.QueryParam("skip"), 10, 64)
	if skip < 0 {
		skip = 0
	}
	limit, _ = strconv.ParseInt(c.QueryParam("limit"), 10, 64)
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return skip, limit
}
