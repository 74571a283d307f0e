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

const revokedTokensCollection = "revoked_tokens"

// RevokedTokenRepository implements ports.RevokedTokenRepository using MongoDB.
type RevokedTokenRepository struct {
	coll *mongo.Collection
}

func NewRevokedTokenRepository(db *mongo.Database) *RevokedTokenRepository {
	return &RevokedTokenRepository{coll: db.Collection(revokedTokensCollection)}
}

// Revoke upserts on the token so repeated logouts keep the first record.
func (r *RevokedTokenRepository) Revoke(ctx context.Context, t domain.RevokedToken) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := revokedTokenDocument{
		Token:     t.Token,
		RevokedAt: t.RevokedAt.UTC(),
		ExpiresAt: t.ExpiresAt.UTC(),
	}
	_, err := r.coll.UpdateOne(ctx,
		bson.M{"token": doc.Token},
		bson.M{"$setOnInsert": doc},
		options.Update().SetUpsert(true),
	)
	if err != nil && !mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

func (r *RevokedTokenRepository) IsRevoked(ctx context.Context, token string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	n, err := r.coll.CountDocuments(ctx, bson.M{"token": token}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("lookup revoked token: %w", err)
	}
	return n > 0, nil
}

func (r *RevokedTokenRepository) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.coll.DeleteMany(ctx, bson.M{"expires_at": bson.M{"$lt": now.UTC()}})
	if err != nil {
		return 0, fmt.Errorf("purge revoked tokens: %w", err)
	}
	return res.DeletedCount, nil
}
