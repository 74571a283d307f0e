package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/agendaav/room-booking/internal/core/domain"
)

const (
	defaultLockTTL     = 10 * time.Second
	defaultLockRetries = 50
	defaultLockBackoff = 20 * time.Millisecond

	leaseNumerator   = 4
	leaseDenominator = 5
)

// releaseScript deletes the lock only while it is still held by the caller's
// token, so a holder whose TTL ran out never frees someone else's lock.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// SlotLock is a distributed mutex per calendar key.
// Key format: lock:<calendar key>
//
// The lease handed to the holder ends leaseFraction of the TTL after the
// acquire attempt started, leaving the rest as slack for in-flight writes.
type SlotLock struct {
	client  redis.Cmdable
	ttl     time.Duration
	retries int
	backoff time.Duration
}

// NewSlotLock creates a SlotLock. A non-positive ttl uses defaultLockTTL.
func NewSlotLock(client redis.Cmdable, ttl time.Duration) *SlotLock {
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	return &SlotLock{
		client:  client,
		ttl:     ttl,
		retries: defaultLockRetries,
		backoff: defaultLockBackoff,
	}
}

// Lock acquires the lock for key, polling until it is free. It gives up with
// domain.ErrSlotBusy after the retry budget is spent. The returned context
// expires before the key does.
func (l *SlotLock) Lock(ctx context.Context, key string) (context.Context, func(), error) {
	lockKey := l.key(key)
	token := uuid.NewString()

	for attempt := 0; attempt < l.retries; attempt++ {
		// Measured before the round trip so the lease never outlasts the key.
		started := time.Now()
		ok, err := l.client.SetNX(ctx, lockKey, token, l.ttl).Result()
		if err != nil {
			return nil, nil, fmt.Errorf("acquire slot lock: %w", err)
		}
		if ok {
			lease, cancel := context.WithDeadline(ctx, started.Add(l.leaseDuration()))
			return lease, func() {
				cancel()
				l.release(lockKey, token)
			}, nil
		}

		select {
		case <-ctx.Done():
			return nil, nil, ctx.Err()
		case <-time.After(l.backoff):
		}
	}
	return nil, nil, domain.ErrSlotBusy
}

func (l *SlotLock) leaseDuration() time.Duration {
	return l.ttl * leaseNumerator / leaseDenominator
}

func (l *SlotLock) release(lockKey, token string) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()
	// A failed release is left to the TTL.
	_ = releaseScript.Run(ctx, l.client, []string{lockKey}, token).Err()
}

func (l *SlotLock) key(calendarKey string) string {
	return "lock:" + calendarKey
}
