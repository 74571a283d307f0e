package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/agendaav/room-booking/internal/core/domain"
	"github.com/agendaav/room-booking/internal/core/ports"
)

const (
	userKey  = "user"
	tokenKey = "token"
)

// Auth resolves the bearer token through the authenticator and injects the
// caller and the raw token into the context.
func Auth(authenticator ports.Authenticator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || strings.TrimSpace(parts[1]) == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
			}
			token := strings.TrimSpace(parts[1])

			user, err := authenticator.Authenticate(c.Request().Context(), token)
			if err != nil {
				switch {
				case errors.Is(err, domain.ErrUnauthorized):
					return echo.NewHTTPError(http.StatusUnauthorized, domain.UnauthorizedReason(err))
				case errors.Is(err, domain.ErrUserNotFound):
					return echo.NewHTTPError(http.StatusNotFound, "user not found")
				}
				return err
			}

			c.Set(userKey, user)
			c.Set(tokenKey, token)

			return next(c)
		}
	}
}

// CurrentUser returns the caller injected by Auth.
func CurrentUser(c echo.Context) (*domain.User, bool) {
	user, ok := c.Get(userKey).(*domain.User)
	return user, ok && user != nil
}

// BearerToken returns the raw token injected by Auth.
func BearerToken(c echo.Context) string {
	token, _ := c.Get(tokenKey).(string)
	return token
}
