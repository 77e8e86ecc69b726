package adapter

import (
	"context"
	"time"
)

// Locker grants short exclusive leases on a key.
// TryLock returns domain.ErrSubmissionInProgress when the key is already held.
type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (token string, err error)
	Unlock(ctx context.Context, key, token string) error
	// Held reports whether an unexpired lease exists on key.
	Held(ctx context.Context, key string) (bool, error)
}

// RateLimiter counts events per key in a fixed window.
type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}
