package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/agendaav/room-booking/internal/core/domain"
	"github.com/agendaav/room-booking/internal/core/ports"
)

// UserService manages existing accounts. Registration lives in AuthService.
type UserService struct {
	repo   ports.UserRepository
	hasher PasswordHasher
	log    zerolog.Logger
}

func NewUserService(repo ports.UserRepository, hasher PasswordHasher, log zerolog.Logger) *UserService {
	return &UserService{repo: repo, hasher: hasher, log: log}
}

func (s *UserService) Get(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return user.Public(), nil
}

func (s *UserService) List(ctx context.Context) ([]*domain.User, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*domain.User, 0, len(users))
	for _, u := range users {
		out = append(out, u.Public())
	}
	return out, nil
}

// Update applies a partial update to the actor's own account. A new
// password is hashed before it reaches the store.
func (s *UserService) Update(ctx context.Context, actor *domain.User, id string, input ports.UpdateUserInput) (*domain.User, error) {
	if !actor.Owns(id) {
		return nil, domain.ErrForbidden
	}
	if input.Name == nil && input.Email == nil && input.Password == nil {
		return nil, domain.ErrNothingToUpdate
	}

	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: name cannot be empty", domain.ErrValidation)
		}
		user.Name = name
	}
	if input.Email != nil {
		email := normalizeEmail(*input.Email)
		if err := validateEmail(email); err != nil {
			return nil, err
		}
		user.Email = email
	}
	if input.Password != nil {
		hash, err := s.hasher.Hash(*input.Password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hash
	}
	user.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}

	s.log.Info().Str("user_id", id).Msg("user updated")
	return user.Public(), nil
}

// Delete removes the actor's own account. Reservations the user owns are
// left in place.
func (s *UserService) Delete(ctx context.Context, actor *domain.User, id string) error {
	if !actor.Owns(id) {
		return domain.ErrForbidden
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info().Str("user_id", id).Msg("user deleted")
	return nil
}
