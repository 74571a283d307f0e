package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/agendaav/room-booking/internal/core/ports"
)

type MaintenanceHandler struct {
	purger ports.RevocationPurger
}

func NewMaintenanceHandler(purger ports.RevocationPurger) *MaintenanceHandler {
	return &MaintenanceHandler{purger: purger}
}

// PurgeRevoked drops revocation records of tokens that have expired.
//
// @Summary      Purge expired revocations
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  purgeResponse
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Router       /admin/maintenance/purge-revoked [post]
func (h *MaintenanceHandler) PurgeRevoked(c echo.Context) error {
	n, err := h.purger.PurgeExpired(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, purgeResponse{Purged: n})
}
