package ports

import (
	"context"

	"github.com/agendaav/room-booking/internal/core/domain"
)

// ListReservationsFilter narrows a reservation listing. Zero values mean
// "no filter".
type ListReservationsFilter struct {
	RoomID string
	Date   domain.Date
}

// ReservationRepository defines persistence for reservations.
type ReservationRepository interface {
	Create(ctx context.Context, r *domain.Reservation) (*domain.Reservation, error)
	FindByID(ctx context.Context, id string) (*domain.Reservation, error)
	List(ctx context.Context, filter ListReservationsFilter) ([]*domain.Reservation, error)
	// ListByDate returns every reservation on day d. When roomID is non-empty
	// only that room's reservations are returned.
	ListByDate(ctx context.Context, d domain.Date, roomID string) ([]*domain.Reservation, error)
	// Update writes only the fields patch names, taking their values from r.
	// A patch that moves the reservation rewrites its room and slot together.
	Update(ctx context.Context, r *domain.Reservation, patch domain.ReservationPatch) error
	Delete(ctx context.Context, id string) error
}
