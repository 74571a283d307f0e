package ports

import "context"

// SlotLocker serialises check-then-write sequences on one calendar key.
//
// Lock returns a lease context derived from ctx. It is cancelled before the
// lock can expire, so any store call made with it fails instead of writing
// after another holder may have taken the key. The returned release func
// must be called exactly once.
type SlotLocker interface {
	Lock(ctx context.Context, key string) (context.Context, func(), error)
}
