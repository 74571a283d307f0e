package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/agendaav/room-booking/internal/core/domain"
)

const reservationEventsCollection = "reservation_events"

// EventRepository implements ports.ReservationEventRepository using MongoDB.
type EventRepository struct {
	coll *mongo.Collection
	now  func() time.Time
}

// NewEventRepository creates a new EventRepository.
func NewEventRepository(db *mongo.Database) *EventRepository {
	return &EventRepository{coll: db.Collection(reservationEventsCollection), now: time.Now}
}

// InsertEvent appends an entry to the reservation_events audit collection.
func (r *EventRepository) InsertEvent(ctx context.Context, event *domain.ReservationEvent) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.coll.InsertOne(ctx, toReservationEventDocument(event, r.now())); err != nil {
		return fmt.Errorf("insert reservation event: %w", err)
	}
	return nil
}

// ListEvents returns the audit trail of one reservation, oldest first.
func (r *EventRepository) ListEvents(ctx context.Context, reservationID string) ([]*domain.ReservationEvent, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "occurred_at", Value: 1}})
	cur, err := r.coll.Find(ctx, bson.M{"reservation_id": reservationID}, opts)
	if err != nil {
		return nil, fmt.Errorf("list reservation events: %w", err)
	}
	var docs []reservationEventDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode reservation events: %w", err)
	}

	events := make([]*domain.ReservationEvent, 0, len(docs))
	for _, d := range docs {
		events = append(events, fromReservationEventDocument(d))
	}
	return events, nil
}
