package ports

import (
	"context"

	"github.com/agendaav/room-booking/internal/core/domain"
)

// CreateRoomInput carries the fields of a new room. Available defaults to true.
type CreateRoomInput struct {
	Name      string
	Location  string
	Capacity  *int
	Available *bool
}

type RoomService interface {
	Create(ctx context.Context, input CreateRoomInput) (*domain.Room, error)
	Get(ctx context.Context, id string) (*domain.Room, error)
	List(ctx context.Context) ([]*domain.Room, error)
	Update(ctx context.Context, id string, patch domain.RoomPatch) (*domain.Room, error)
	Delete(ctx context.Context, id string) error
}
