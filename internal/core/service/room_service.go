package service

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/agendaav/room-booking/internal/core/domain"
	"github.com/agendaav/room-booking/internal/core/ports"
)

const (
	maxRoomName     = 100
	maxRoomLocation = 300
)

// RoomService is a plain registry of bookable rooms.
type RoomService struct {
	repo ports.RoomRepository
	log  zerolog.Logger
}

func NewRoomService(repo ports.RoomRepository, log zerolog.Logger) *RoomService {
	return &RoomService{repo: repo, log: log}
}

func (s *RoomService) Create(ctx context.Context, input ports.CreateRoomInput) (*domain.Room, error) {
	now := time.Now().UTC()
	room := &domain.Room{
		Name:      strings.TrimSpace(input.Name),
		Location:  strings.TrimSpace(input.Location),
		Capacity:  input.Capacity,
		Available: true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if input.Available != nil {
		room.Available = *input.Available
	}
	if err := validateRoom(room); err != nil {
		return nil, err
	}

	created, err := s.repo.Create(ctx, room)
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("room_id", created.ID).Str("name", created.Name).Msg("room created")
	return created, nil
}

func (s *RoomService) Get(ctx context.Context, id string) (*domain.Room, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *RoomService) List(ctx context.Context) ([]*domain.Room, error) {
	return s.repo.List(ctx)
}

func (s *RoomService) Update(ctx context.Context, id string, patch domain.RoomPatch) (*domain.Room, error) {
	if patch.Empty() {
		return nil, domain.ErrNothingToUpdate
	}

	room, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	patch.Apply(room)
	room.Name = strings.TrimSpace(room.Name)
	room.Location = strings.TrimSpace(room.Location)
	if err := validateRoom(room); err != nil {
		return nil, err
	}
	room.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, room); err != nil {
		return nil, err
	}
	s.log.Info().Str("room_id", id).Msg("room updated")
	return room, nil
}

func (s *RoomService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info().Str("room_id", id).Msg("room deleted")
	return nil
}

func validateRoom(r *domain.Room) error {
	switch {
	case r.Name == "":
		return fmt.Errorf("%w: name is required", domain.ErrValidation)
	case utf8.RuneCountInString(r.Name) > maxRoomName:
		return fmt.Errorf("%w: name must be at most %d characters", domain.ErrValidation, maxRoomName)
	case r.Location == "":
		return fmt.Errorf("%w: location is required", domain.ErrValidation)
	case utf8.RuneCountInString(r.Location) > maxRoomLocation:
		return fmt.Errorf("%w: location must be at most %d characters", domain.ErrValidation, maxRoomLocation)
	case r.Capacity != nil && *r.Capacity < 1:
		return fmt.Errorf("%w: capacity must be at least 1", domain.ErrValidation)
	}
	return nil
}
