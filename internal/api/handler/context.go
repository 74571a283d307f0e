package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/agendaav/room-booking/internal/api/middleware"
	"github.com/agendaav/room-booking/internal/core/domain"
)

// actor returns the caller injected by the Auth middleware. Its absence means
// the route was registered without Auth, which is rejected with 401.
func actor(c echo.Context) (*domain.User, error) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication")
	}
	return user, nil
}
