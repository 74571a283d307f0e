package ports

import (
	"context"

	"github.com/agendaav/room-booking/internal/core/domain"
)

// UpdateUserInput is a partial user update; nil fields are left untouched.
type UpdateUserInput struct {
	Name     *string
	Email    *string
	Password *string
}

type UserService interface {
	Get(ctx context.Context, id string) (*domain.User, error)
	List(ctx context.Context) ([]*domain.User, error)
	// Update and Delete are allowed on the actor's own account only.
	Update(ctx context.Context, actor *domain.User, id string, input UpdateUserInput) (*domain.User, error)
	Delete(ctx context.Context, actor *domain.User, id string) error
}
