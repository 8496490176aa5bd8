package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/urbano-social/backend/internal/auth"
)

// CurrentUserKey is the echo context key holding the resolved CurrentUser.
const CurrentUserKey = "currentUser"

// BearerAuth resolves the Authorization header once per request and stores the
// authenticated user on the context as an auth.CurrentUser value.
func BearerAuth(resolver auth.TokenResolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Missing Authorization header")
			}

			// Expecting "Bearer <token>"
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid Authorization header format")
			}

			currentUser, err := resolver.Resolve(c.Request().Context(), parts[1])
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
			}

			c.Set(CurrentUserKey, currentUser)
			return next(c)
		}
	}
}

// CurrentUserFrom extracts the authenticated user stored by BearerAuth.
func CurrentUserFrom(c echo.Context) (auth.CurrentUser, bool) {
	currentUser, ok := c.Get(CurrentUserKey).(auth.CurrentUser)
	return currentUser, ok
}
