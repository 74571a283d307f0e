package handler

import "time"

// errorResponse documents the envelope rendered by the central error handler.
type errorResponse struct {
	Error   string `json:"error"   example:"conflict"`
	Message string `json:"message" example:"a reservation already exists in that time slot"`
}

// --- auth & users ---

type registerRequest struct {
	Name     string `json:"name"     validate:"required,max=100"`
	Email    string `json:"email"    validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,max=72"`
}

// loginRequest follows the OAuth2 password form: username carries the email.
type loginRequest struct {
	Username string `json:"username" form:"username" validate:"required"`
	Password string `json:"password" form:"password" validate:"required"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type" example:"bearer"`
	Email       string `json:"email"`
	Name        string `json:"name"`
	ID          string `json:"id"`
}

type updateUserRequest struct {
	Name     *string `json:"name,omitempty"     validate:"omitempty,min=1,max=100"`
	Email    *string `json:"email,omitempty"    validate:"omitempty,email,max=254"`
	Password *string `json:"password,omitempty" validate:"omitempty,min=1,max=72"`
}

type userResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// --- rooms ---

type createRoomRequest struct {
	Name      string `json:"name"                   validate:"required,max=100"`
	Location  string `json:"location"               validate:"required,max=300"`
	Capacity  *int   `json:"capacity,omitempty"     validate:"omitempty,min=1"`
	Available *bool  `json:"availability,omitempty"`
}

type updateRoomRequest struct {
	Name      *string `json:"name,omitempty"         validate:"omitempty,min=1,max=100"`
	Location  *string `json:"location,omitempty"     validate:"omitempty,min=1,max=300"`
	Capacity  *int    `json:"capacity,omitempty"     validate:"omitempty,min=1"`
	Available *bool   `json:"availability,omitempty"`
}

type roomResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Location  string    `json:"location"`
	Capacity  *int      `json:"capacity,omitempty"`
	Available bool      `json:"availability"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// --- reservations ---

type createReservationRequest struct {
	RoomID      string `json:"room_id,omitempty"`
	EventName   string `json:"event_name"        validate:"required,max=100"`
	Description string `json:"description"       validate:"max=300"`
	Date        string `json:"date"              validate:"required" example:"2024-05-01"`
	StartTime   string `json:"start_time"        validate:"required" example:"09:00"`
	EndTime     string `json:"end_time"          validate:"required" example:"10:30"`
	Subject     string `json:"subject,omitempty" validate:"max=100"`
}

type updateReservationRequest struct {
	RoomID      *string `json:"room_id,omitempty"`
	EventName   *string `json:"event_name,omitempty"  validate:"omitempty,min=1,max=100"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=300"`
	Date        *string `json:"date,omitempty"`
	StartTime   *string `json:"start_time,omitempty"`
	EndTime     *string `json:"end_time,omitempty"`
	Subject     *string `json:"subject,omitempty"     validate:"omitempty,max=100"`
}

type reservationResponse struct {
	ID          string    `json:"id"`
	RoomID      string    `json:"room_id,omitempty"`
	UserID      string    `json:"user_id"`
	UserName    string    `json:"user_name"`
	EventName   string    `json:"event_name"`
	Description string    `json:"description"`
	Date        string    `json:"date"`
	StartTime   string    `json:"start_time"`
	EndTime     string    `json:"end_time"`
	Subject     string    `json:"subject,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type reservationEventResponse struct {
	ReservationID string    `json:"reservation_id"`
	Action        string    `json:"action"`
	ActorID       string    `json:"actor_id"`
	RoomID        string    `json:"room_id,omitempty"`
	Date          string    `json:"date"`
	StartTime     string    `json:"start_time"`
	EndTime       string    `json:"end_time"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// --- maintenance ---

type purgeResponse struct {
	Purged int64 `json:"purged"`
}
