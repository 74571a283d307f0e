package ports

import (
	"context"

	"github.com/agendaav/room-booking/internal/core/domain"
)

// CreateReservationInput carries a requested booking. RoomID may be empty
// only when the scheduler runs with a global calendar.
type CreateReservationInput struct {
	RoomID      string
	EventName   string
	Description string
	Subject     string
	Slot        domain.Slot
}

// ReservationService is the scheduling core: it admits, moves and cancels
// reservations while keeping every calendar free of overlaps.
type ReservationService interface {
	Create(ctx context.Context, actor *domain.User, input CreateReservationInput) (*domain.Reservation, error)
	Get(ctx context.Context, id string) (*domain.Reservation, error)
	List(ctx context.Context, filter ListReservationsFilter) ([]*domain.Reservation, error)
	Update(ctx context.Context, actor *domain.User, id string, patch domain.ReservationPatch) (*domain.Reservation, error)
	Delete(ctx context.Context, actor *domain.User, id string) error
	History(ctx context.Context, id string) ([]*domain.ReservationEvent, error)
}
