package ports

import (
	"context"
	"time"

	"github.com/agendaav/room-booking/internal/core/domain"
)

// RevokedTokenRepository is the durable, append-only revocation set.
type RevokedTokenRepository interface {
	// Revoke is idempotent: revoking an already revoked token succeeds.
	Revoke(ctx context.Context, token domain.RevokedToken) error
	IsRevoked(ctx context.Context, token string) (bool, error)
	// PurgeExpired drops records whose token expired before now.
	PurgeExpired(ctx context.Context, now time.Time) (int64, error)
}

// RevocationCache is a fast, lossy view of the revocation set. A miss
// proves nothing; callers fall back to the repository.
type RevocationCache interface {
	IsRevoked(ctx context.Context, token string) (bool, error)
	MarkRevoked(ctx context.Context, token string, ttl time.Duration) error
}
