package handler

import (
	"github.com/agendaav/room-booking/internal/core/domain"
	"github.com/agendaav/room-booking/internal/core/ports"
)

// --- Request → Service input ---

func toCreateReservationInput(req createReservationRequest) (ports.CreateReservationInput, error) {
	date, err := domain.ParseDate(req.Date)
	if err != nil {
		return ports.CreateReservationInput{}, err
	}
	start, err := domain.ParseTimeOfDay(req.StartTime)
	if err != nil {
		return ports.CreateReservationInput{}, err
	}
	end, err := domain.ParseTimeOfDay(req.EndTime)
	if err != nil {
		return ports.CreateReservationInput{}, err
	}

	return ports.CreateReservationInput{
		RoomID:      req.RoomID,
		EventName:   req.EventName,
		Description: req.Description,
		Subject:     req.Subject,
		Slot:        domain.Slot{Date: date, Start: start, End: end},
	}, nil
}

func toReservationPatch(req updateReservationRequest) (domain.ReservationPatch, error) {
	patch := domain.ReservationPatch{
		RoomID:      req.RoomID,
		EventName:   req.EventName,
		Description: req.Description,
		Subject:     req.Subject,
	}
	if req.Date != nil {
		d, err := domain.ParseDate(*req.Date)
		if err != nil {
			return domain.ReservationPatch{}, err
		}
		patch.Date = &d
	}
	if req.StartTime != nil {
		t, err := domain.ParseTimeOfDay(*req.StartTime)
		if err != nil {
			return domain.ReservationPatch{}, err
		}
		patch.Start = &t
	}
	if req.EndTime != nil {
		t, err := domain.ParseTimeOfDay(*req.EndTime)
		if err != nil {
			return domain.ReservationPatch{}, err
		}
		patch.End = &t
	}
	return patch, nil
}

func toCreateRoomInput(req createRoomRequest) ports.CreateRoomInput {
	return ports.CreateRoomInput{
		Name:      req.Name,
		Location:  req.Location,
		Capacity:  req.Capacity,
		Available: req.Available,
	}
}

func toRoomPatch(req updateRoomRequest) domain.RoomPatch {
	return domain.RoomPatch{
		Name:      req.Name,
		Location:  req.Location,
		Capacity:  req.Capacity,
		Available: req.Available,
	}
}

// --- Service result → HTTP response ---

func toTokenResponse(r *ports.LoginResult) tokenResponse {
	return tokenResponse{
		AccessToken: r.Token,
		TokenType:   "bearer",
		Email:       r.User.Email,
		Name:        r.User.Name,
		ID:          r.User.ID,
	}
}

func toUserResponse(u *domain.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
		CreatedAt: u.CreatedAt.UTC(),
		UpdatedAt: u.UpdatedAt.UTC(),
	}
}

func toUserResponses(users []*domain.User) []userResponse {
	out := make([]userResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toUserResponse(u))
	}
	return out
}

func toRoomResponse(r *domain.Room) roomResponse {
	return roomResponse{
		ID:        r.ID,
		Name:      r.Name,
		Location:  r.Location,
		Capacity:  r.Capacity,
		Available: r.Available,
		CreatedAt: r.CreatedAt.UTC(),
		UpdatedAt: r.UpdatedAt.UTC(),
	}
}

func toRoomResponses(rooms []*domain.Room) []roomResponse {
	out := make([]roomResponse, 0, len(rooms))
	for _, r := range rooms {
		out = append(out, toRoomResponse(r))
	}
	return out
}

func toReservationResponse(r *domain.Reservation) reservationResponse {
	return reservationResponse{
		ID:          r.ID,
		RoomID:      r.RoomID,
		UserID:      r.UserID,
		UserName:    r.UserName,
		EventName:   r.EventName,
		Description: r.Description,
		Date:        r.Slot.Date.String(),
		StartTime:   r.Slot.Start.String(),
		EndTime:     r.Slot.End.String(),
		Subject:     r.Subject,
		CreatedAt:   r.CreatedAt.UTC(),
	}
}

func toReservationResponses(rs []*domain.Reservation) []reservationResponse {
	out := make([]reservationResponse, 0, len(rs))
	for _, r := range rs {
		out = append(out, toReservationResponse(r))
	}
	return out
}

func toReservationEventResponses(events []*domain.ReservationEvent) []reservationEventResponse {
	out := make([]reservationEventResponse, 0, len(events))
	for _, e := range events {
		out = append(out, reservationEventResponse{
			ReservationID: e.ReservationID,
			Action:        string(e.Action),
			ActorID:       e.ActorID,
			RoomID:        e.RoomID,
			Date:          e.Slot.Date.String(),
			StartTime:     e.Slot.Start.String(),
			EndTime:       e.Slot.End.String(),
			OccurredAt:    e.OccurredAt.UTC(),
		})
	}
	return out
}
