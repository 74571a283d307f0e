package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/agendaav/room-booking/internal/core/ports"
)

// RoomHandler serves the room registry.
type RoomHandler struct {
	service ports.RoomService
}

func NewRoomHandler(service ports.RoomService) *RoomHandler {
	return &RoomHandler{service: service}
}

// List returns every room.
//
// @Summary      List rooms
// @Tags         rooms
// @Produce      json
// @Success      200  {array}  roomResponse
// @Router       /rooms [get]
func (h *RoomHandler) List(c echo.Context) error {
	rooms, err := h.service.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toRoomResponses(rooms))
}

// Get returns one room.
//
// @Summary      Get a room
// @Tags         rooms
// @Produce      json
// @Param        id   path      string  true  "Room ID"
// @Success      200  {object}  roomResponse
// @Failure      400  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /rooms/{id} [get]
func (h *RoomHandler) Get(c echo.Context) error {
	room, err := h.service.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toRoomResponse(room))
}

// Create registers a room.
//
// @Summary      Create a room
// @Tags         rooms
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createRoomRequest  true  "Room"
// @Success      201   {object}  roomResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Router       /rooms [post]
func (h *RoomHandler) Create(c echo.Context) error {
	var req createRoomRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	room, err := h.service.Create(c.Request().Context(), toCreateRoomInput(req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toRoomResponse(room))
}

// Update changes a room.
//
// @Summary      Update a room
// @Tags         rooms
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string             true  "Room ID"
// @Param        body  body      updateRoomRequest  true  "Fields to change"
// @Success      200   {object}  roomResponse
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /rooms/{id} [put]
func (h *RoomHandler) Update(c echo.Context) error {
	var req updateRoomRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	room, err := h.service.Update(c.Request().Context(), c.Param("id"), toRoomPatch(req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toRoomResponse(room))
}

// Delete removes a room.
//
// @Summary      Delete a room
// @Tags         rooms
// @Security     BearerAuth
// @Param        id   path  string  true  "Room ID"
// @Success      204
// @Failure      404  {object}  errorResponse
// @Router       /rooms/{id} [delete]
func (h *RoomHandler) Delete(c echo.Context) error {
	if err := h.service.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
