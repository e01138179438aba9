package middleware

import (
	"net/http"

	"github.com/Eursukkul/eventsphere/internal/logging"
	"github.com/Eursukkul/eventsphere/internal/models"
	"github.com/labstack/echo/v4"
)

type Authorizer interface {
	Allowed(role models.Role, obj, act string) (bool, error)
}

// Authorize must run after Authenticate.
func Authorize(authz Authorizer, obj, act string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user := CurrentUser(c)
			if user == nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Not authorized, no token")
			}

			ok, err := authz.Allowed(user.Role, obj, act)
			if err != nil {
				logging.Error().Err(err).Str("obj", obj).Str("act", act).Msg("authorization check failed")
				return echo.NewHTTPError(http.StatusInternalServerError, "Authorization failed")
			}
			if !ok {
				return echo.NewHTTPError(http.StatusForbidden, "Access denied")
			}
			return next(c)
		}
	}
}
