package mongo

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/agendaav/room-booking/internal/core/domain"
)

// Persisted shapes. Every collection has an explicit document type and a
// pair of mapping functions; nothing is decoded into domain types directly.

type userDocument struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Name         string             `bson:"name"`
	Email        string             `bson:"email"`
	PasswordHash string             `bson:"password_hash,omitempty"`
	Role         string             `bson:"role"`
	CreatedAt    time.Time          `bson:"created_at"`
	UpdatedAt    time.Time          `bson:"updated_at"`
}

type roomDocument struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Name      string             `bson:"name"`
	Location  string             `bson:"location"`
	Capacity  *int               `bson:"capacity,omitempty"`
	Available bool               `bson:"availability"`
	CreatedAt time.Time          `bson:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at"`
}

// reservationDocument stores the day as UTC midnight and both ends of the
// slot as full instants on that day, so range queries compare instants.
type reservationDocument struct {
	ID          primitive.ObjectID  `bson:"_id,omitempty"`
	RoomID      *primitive.ObjectID `bson:"room_id,omitempty"`
	UserID      primitive.ObjectID  `bson:"user_id"`
	UserName    string              `bson:"user_name"`
	EventName   string              `bson:"event_name"`
	Description string              `bson:"description"`
	Subject     string              `bson:"subject,omitempty"`
	Date        time.Time           `bson:"date"`
	StartAt     time.Time           `bson:"start_at"`
	EndAt       time.Time           `bson:"end_at"`
	CreatedAt   time.Time           `bson:"created_at"`
	UpdatedAt   time.Time           `bson:"updated_at"`
}

type revokedTokenDocument struct {
	Token     string    `bson:"token"`
	RevokedAt time.Time `bson:"revoked_at"`
	ExpiresAt time.Time `bson:"expires_at"`
}

type reservationEventDocument struct {
	ID            primitive.ObjectID `bson:"_id,omitempty"`
	ReservationID string             `bson:"reservation_id"`
	Action        string             `bson:"action"`
	ActorID       string             `bson:"actor_id"`
	RoomID        string             `bson:"room_id,omitempty"`
	Date          time.Time          `bson:"date"`
	StartAt       time.Time          `bson:"start_at"`
	EndAt         time.Time          `bson:"end_at"`
	OccurredAt    time.Time          `bson:"occurred_at"`
	ProcessedAt   time.Time          `bson:"processed_at"`
}

// --- users ---

func toUserDocument(u *domain.User) (userDocument, error) {
	doc := userDocument{
		Name:         u.Name,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Role:         u.Role,
		CreatedAt:    u.CreatedAt.UTC(),
		UpdatedAt:    u.UpdatedAt.UTC(),
	}
	if u.ID != "" {
		oid, err := objectID(u.ID, domain.ErrInvalidID)
		if err != nil {
			return userDocument{}, err
		}
		doc.ID = oid
	}
	return doc, nil
}

func fromUserDocument(doc userDocument) *domain.User {
	return &domain.User{
		ID:           doc.ID.Hex(),
		Name:         doc.Name,
		Email:        doc.Email,
		PasswordHash: doc.PasswordHash,
		Role:         doc.Role,
		CreatedAt:    doc.CreatedAt,
		UpdatedAt:    doc.UpdatedAt,
	}
}

// --- rooms ---

func toRoomDocument(r *domain.Room) (roomDocument, error) {
	doc := roomDocument{
		Name:      r.Name,
		Location:  r.Location,
		Capacity:  r.Capacity,
		Available: r.Available,
		CreatedAt: r.CreatedAt.UTC(),
		UpdatedAt: r.UpdatedAt.UTC(),
	}
	if r.ID != "" {
		oid, err := objectID(r.ID, domain.ErrInvalidID)
		if err != nil {
			return roomDocument{}, err
		}
		doc.ID = oid
	}
	return doc, nil
}

func fromRoomDocument(doc roomDocument) *domain.Room {
	return &domain.Room{
		ID:        doc.ID.Hex(),
		Name:      doc.Name,
		Location:  doc.Location,
		Capacity:  doc.Capacity,
		Available: doc.Available,
		CreatedAt: doc.CreatedAt,
		UpdatedAt: doc.UpdatedAt,
	}
}

// --- reservations ---

func toReservationDocument(r *domain.Reservation) (reservationDocument, error) {
	userID, err := objectID(r.UserID, domain.ErrInvalidID)
	if err != nil {
		return reservationDocument{}, err
	}

	doc := reservationDocument{
		UserID:      userID,
		UserName:    r.UserName,
		EventName:   r.EventName,
		Description: r.Description,
		Subject:     r.Subject,
		Date:        r.Slot.Date.Time(),
		StartAt:     r.Slot.StartAt(),
		EndAt:       r.Slot.EndAt(),
		CreatedAt:   r.CreatedAt.UTC(),
		UpdatedAt:   r.UpdatedAt.UTC(),
	}
	if r.ID != "" {
		if doc.ID, err = objectID(r.ID, domain.ErrInvalidID); err != nil {
			return reservationDocument{}, err
		}
	}
	if r.RoomID != "" {
		roomID, err := objectID(r.RoomID, domain.ErrRoomNotFound)
		if err != nil {
			return reservationDocument{}, err
		}
		doc.RoomID = &roomID
	}
	return doc, nil
}

func fromReservationDocument(doc reservationDocument) *domain.Reservation {
	r := &domain.Reservation{
		ID:          doc.ID.Hex(),
		UserID:      doc.UserID.Hex(),
		UserName:    doc.UserName,
		EventName:   doc.EventName,
		Description: doc.Description,
		Subject:     doc.Subject,
		Slot:        slotFromInstants(doc.Date, doc.StartAt, doc.EndAt),
		CreatedAt:   doc.CreatedAt,
		UpdatedAt:   doc.UpdatedAt,
	}
	if doc.RoomID != nil {
		r.RoomID = doc.RoomID.Hex()
	}
	return r
}

func slotFromInstants(date, start, end time.Time) domain.Slot {
	return domain.Slot{
		Date:  domain.DateOf(date.UTC()),
		Start: domain.TimeOfDayOf(start.UTC()),
		End:   domain.TimeOfDayOf(end.UTC()),
	}
}

// --- audit events ---

func toReservationEventDocument(e *domain.ReservationEvent, processedAt time.Time) reservationEventDocument {
	return reservationEventDocument{
		ReservationID: e.ReservationID,
		Action:        string(e.Action),
		ActorID:       e.ActorID,
		RoomID:        e.RoomID,
		Date:          e.Slot.Date.Time(),
		StartAt:       e.Slot.StartAt(),
		EndAt:         e.Slot.EndAt(),
		OccurredAt:    e.OccurredAt.UTC(),
		ProcessedAt:   processedAt.UTC(),
	}
}

func fromReservationEventDocument(doc reservationEventDocument) *domain.ReservationEvent {
	return &domain.ReservationEvent{
		ReservationID: doc.ReservationID,
		Action:        domain.ReservationAction(doc.Action),
		ActorID:       doc.ActorID,
		RoomID:        doc.RoomID,
		Slot:          slotFromInstants(doc.Date, doc.StartAt, doc.EndAt),
		OccurredAt:    doc.OccurredAt,
	}
}
