package ports

import (
	"context"
	"time"
)

// LeaseManager hands out exclusive, time-bounded claims on a key.
// Acquire returns domain.ErrLeaseHeld when another holder owns the key.
type LeaseManager interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (Lease, error)
}

// Lease is a held claim. Extend and Release return domain.ErrLeaseLost
// once the claim expired or was taken by someone else.
type Lease interface {
	Key() string
	Extend(ctx context.Context, ttl time.Duration) error
	Release(ctx context.Context) error
}
