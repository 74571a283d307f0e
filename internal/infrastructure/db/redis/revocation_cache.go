package redis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RevocationCache mirrors revoked tokens in Redis until they expire.
// Key format: revoked:<sha256 of the token>
type RevocationCache struct {
	client redis.Cmdable
}

// NewRevocationCache creates a RevocationCache wrapping the given client.
func NewRevocationCache(client redis.Cmdable) *RevocationCache {
	return &RevocationCache{client: client}
}

func (c *RevocationCache) IsRevoked(ctx context.Context, token string) (bool, error) {
	n, err := c.client.Exists(ctx, c.key(token)).Result()
	if err != nil {
		return false, fmt.Errorf("revocation cache lookup: %w", err)
	}
	return n > 0, nil
}

// MarkRevoked caches the revocation for ttl. Tokens already past their
// expiry are not cached.
func (c *RevocationCache) MarkRevoked(ctx context.Context, token string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return c.client.Set(ctx, c.key(token), "1", ttl).Err()
}

func (c *RevocationCache) key(token string) string {
	sum := sha256.Sum256([]byte(token))
	return "revoked:" + hex.EncodeToString(sum[:])
}
