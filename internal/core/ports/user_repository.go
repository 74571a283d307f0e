package ports

import (
	"context"

	"github.com/agendaav/room-booking/internal/core/domain"
)

// UserRepository defines persistence for registered users.
type UserRepository interface {
	// Create inserts the user and returns it with its store-generated ID.
	// A duplicate email yields domain.ErrUserExists.
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	// FindByID never returns the password hash.
	FindByID(ctx context.Context, id string) (*domain.User, error)
	// FindByEmail includes the password hash; it backs login only.
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context) ([]*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	Delete(ctx context.Context, id string) error
}
