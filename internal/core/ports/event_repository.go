package ports

import (
	"context"

	"github.com/agendaav/room-booking/internal/core/domain"
)

// ReservationEventRepository persists the reservation audit trail.
type ReservationEventRepository interface {
	InsertEvent(ctx context.Context, event *domain.ReservationEvent) error
	// ListEvents returns the events of one reservation, oldest first.
	ListEvents(ctx context.Context, reservationID string) ([]*domain.ReservationEvent, error)
}

// AuditRecorder accepts audit events without blocking the caller.
type AuditRecorder interface {
	Record(event domain.ReservationEvent)
}
