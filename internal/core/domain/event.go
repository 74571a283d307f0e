package domain

import "time"

// ReservationAction names what happened to a reservation.
type ReservationAction string

const (
	ActionCreated ReservationAction = "created"
	ActionUpdated ReservationAction = "updated"
	ActionDeleted ReservationAction = "deleted"
)

// ReservationEvent is one entry of a reservation's audit trail.
type ReservationEvent struct {
	ReservationID string
	Action        ReservationAction
	ActorID       string
	RoomID        string
	Slot          Slot
	OccurredAt    time.Time
}
