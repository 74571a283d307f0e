package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/agendaav/room-booking/internal/core/domain"
	"github.com/agendaav/room-booking/internal/core/ports"
)

// ReservationHandler serves the scheduler.
type ReservationHandler struct {
	service ports.ReservationService
}

func NewReservationHandler(service ports.ReservationService) *ReservationHandler {
	return &ReservationHandler{service: service}
}

// List returns reservations, optionally narrowed to one room and/or day.
//
// @Summary      List reservations
// @Tags         reservations
// @Produce      json
// @Param        room_id  query     string  false  "Room ID"
// @Param        date     query     string  false  "Day (YYYY-MM-DD)"
// @Success      200      {array}   reservationResponse
// @Failure      400      {object}  errorResponse
// @Router       /reservations [get]
func (h *ReservationHandler) List(c echo.Context) error {
	filter := ports.ListReservationsFilter{RoomID: strings.TrimSpace(c.QueryParam("room_id"))}
	if raw := strings.TrimSpace(c.QueryParam("date")); raw != "" {
		d, err := domain.ParseDate(raw)
		if err != nil {
			return err
		}
		filter.Date = d
	}

	reservations, err := h.service.List(c.Request().Context(), filter)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toReservationResponses(reservations))
}

// Get returns one reservation.
//
// @Summary      Get a reservation
// @Tags         reservations
// @Produce      json
// @Param        id   path      string  true  "Reservation ID"
// @Success      200  {object}  reservationResponse
// @Failure      400  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /reservations/{id} [get]
func (h *ReservationHandler) Get(c echo.Context) error {
	res, err := h.service.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toReservationResponse(res))
}

// Create books a slot for the caller.
//
// @Summary      Create a reservation
// @Tags         reservations
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createReservationRequest  true  "Reservation"
// @Success      201   {object}  reservationResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /reservations [post]
func (h *ReservationHandler) Create(c echo.Context) error {
	caller, err := actor(c)
	if err != nil {
		return err
	}
	var req createReservationRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	input, err := toCreateReservationInput(req)
	if err != nil {
		return err
	}

	res, err := h.service.Create(c.Request().Context(), caller, input)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toReservationResponse(res))
}

// Update changes the caller's reservation. Moving it re-checks the slot.
//
// @Summary      Update a reservation
// @Tags         reservations
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                    true  "Reservation ID"
// @Param        body  body      updateReservationRequest  true  "Fields to change"
// @Success      200   {object}  reservationResponse
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /reservations/{id} [put]
func (h *ReservationHandler) Update(c echo.Context) error {
	caller, err := actor(c)
	if err != nil {
		return err
	}
	var req updateReservationRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	patch, err := toReservationPatch(req)
	if err != nil {
		return err
	}

	res, err := h.service.Update(c.Request().Context(), caller, c.Param("id"), patch)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toReservationResponse(res))
}

// Delete cancels a reservation owned by the caller, or any reservation for
// an administrator.
//
// @Summary      Delete a reservation
// @Tags         reservations
// @Security     BearerAuth
// @Param        id   path  string  true  "Reservation ID"
// @Success      204
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /reservations/{id} [delete]
func (h *ReservationHandler) Delete(c echo.Context) error {
	caller, err := actor(c)
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.Request().Context(), caller, c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// History returns the audit trail of a reservation.
//
// @Summary      Reservation history
// @Tags         reservations
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Reservation ID"
// @Success      200  {array}   reservationEventResponse
// @Failure      404  {object}  errorResponse
// @Router       /reservations/{id}/history [get]
func (h *ReservationHandler) History(c echo.Context) error {
	events, err := h.service.History(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toReservationEventResponses(events))
}
