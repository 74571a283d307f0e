package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/agendaav/room-booking/internal/core/domain"
	"github.com/agendaav/room-booking/internal/core/ports"
)

const reservationsCollection = "reservations"

var byDayAndStart = bson.D{{Key: "date", Value: 1}, {Key: "start_at", Value: 1}}

// ReservationRepository implements ports.ReservationRepository using MongoDB.
type ReservationRepository struct {
	coll *mongo.Collection
}

func NewReservationRepository(db *mongo.Database) *ReservationRepository {
	return &ReservationRepository{coll: db.Collection(reservationsCollection)}
}

func (r *ReservationRepository) Create(ctx context.Context, res *domain.Reservation) (*domain.Reservation, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc, err := toReservationDocument(res)
	if err != nil {
		return nil, err
	}
	inserted, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("insert reservation: %w", err)
	}
	if oid, ok := inserted.InsertedID.(primitive.ObjectID); ok {
		doc.ID = oid
	}
	return fromReservationDocument(doc), nil
}

func (r *ReservationRepository) FindByID(ctx context.Context, id string) (*domain.Reservation, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, err := objectID(id, domain.ErrInvalidID)
	if err != nil {
		return nil, err
	}

	var doc reservationDocument
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrReservationNotFound
		}
		return nil, fmt.Errorf("find reservation: %w", err)
	}
	return fromReservationDocument(doc), nil
}

func (r *ReservationRepository) List(ctx context.Context, f ports.ListReservationsFilter) ([]*domain.Reservation, error) {
	filter, err := buildListFilter(f)
	if err != nil {
		return nil, err
	}
	return r.find(ctx, filter)
}

// ListByDate returns the calendar of one day, optionally restricted to a room.
func (r *ReservationRepository) ListByDate(ctx context.Context, d domain.Date, roomID string) ([]*domain.Reservation, error) {
	filter, err := buildListFilter(ports.ListReservationsFilter{RoomID: roomID, Date: d})
	if err != nil {
		return nil, err
	}
	return r.find(ctx, filter)
}

func (r *ReservationRepository) Update(ctx context.Context, res *domain.Reservation, patch domain.ReservationPatch) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc, err := toReservationDocument(res)
	if err != nil {
		return err
	}
	result, err := r.coll.UpdateOne(ctx, bson.M{"_id": doc.ID}, buildUpdate(doc, patch))
	if err != nil {
		return fmt.Errorf("update reservation: %w", err)
	}
	if result.MatchedCount == 0 {
		return domain.ErrReservationNotFound
	}
	return nil
}

// buildUpdate sets the fields present in patch and nothing else, so a
// concurrent writer's change to an untouched field survives.
func buildUpdate(doc reservationDocument, patch domain.ReservationPatch) bson.M {
	set := bson.M{"updated_at": doc.UpdatedAt}
	if patch.EventName != nil {
		set["event_name"] = doc.EventName
	}
	if patch.Description != nil {
		set["description"] = doc.Description
	}
	if patch.Subject != nil {
		set["subject"] = doc.Subject
	}

	update := bson.M{}
	if patch.TouchesSchedule() {
		set["date"] = doc.Date
		set["start_at"] = doc.StartAt
		set["end_at"] = doc.EndAt
		if doc.RoomID != nil {
			set["room_id"] = *doc.RoomID
		} else {
			update["$unset"] = bson.M{"room_id": ""}
		}
	}
	update["$set"] = set
	return update
}

func (r *ReservationRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, err := objectID(id, domain.ErrInvalidID)
	if err != nil {
		return err
	}
	result, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete reservation: %w", err)
	}
	if result.DeletedCount == 0 {
		return domain.ErrReservationNotFound
	}
	return nil
}

func (r *ReservationRepository) find(ctx context.Context, filter bson.M) ([]*domain.Reservation, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.coll.Find(ctx, filter, options.Find().SetSort(byDayAndStart))
	if err != nil {
		return nil, fmt.Errorf("list reservations: %w", err)
	}
	var docs []reservationDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode reservations: %w", err)
	}

	out := make([]*domain.Reservation, 0, len(docs))
	for _, d := range docs {
		out = append(out, fromReservationDocument(d))
	}
	return out, nil
}

func buildListFilter(f ports.ListReservationsFilter) (bson.M, error) {
	filter := bson.M{}
	if f.RoomID != "" {
		oid, err := objectID(f.RoomID, domain.ErrInvalidID)
		if err != nil {
			return nil, err
		}
		filter["room_id"] = oid
	}
	if !f.Date.IsZero() {
		filter["date"] = f.Date.Time()
	}
	return filter, nil
}
