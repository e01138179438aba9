package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/Eursukkul/eventsphere/internal/auth"
	"github.com/Eursukkul/eventsphere/internal/models"
	"github.com/labstack/echo/v4"
)

const userKey = "user"

type TokenValidator interface {
	Validate(token string) (*auth.Claims, error)
}

type UserLoader interface {
	FindByID(ctx context.Context, id uint) (*models.User, error)
}

// Authenticate requires a bearer token and stores the token's user on the
// context. The user is reloaded on every request so role changes apply
// without reissuing tokens.
func Authenticate(tokens TokenValidator, users UserLoader) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			scheme, token, ok := strings.Cut(header, " ")
			if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Not authorized, no token")
			}

			claims, err := tokens.Validate(strings.TrimSpace(token))
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Not authorized, token failed")
			}
			id, err := claims.UserID()
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Not authorized, token failed")
			}

			user, err := users.FindByID(c.Request().Context(), id)
			if err != nil || user == nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Not authorized, user not found")
			}

			SetCurrentUser(c, user)
			return next(c)
		}
	}
}

func SetCurrentUser(c echo.Context, user *models.User) {
	c.Set(userKey, user)
}

// CurrentUser returns the authenticated user, or nil outside Authenticate.
func CurrentUser(c echo.Context) *models.User {
	user, _ := c.Get(userKey).(*models.User)
	return user
}
