package tokenstore

import (
	"context"
	"errors"
	"time"
)

// Store holds short-lived values: OTP codes, session handles, idempotency
// replay payloads. Values expire after their TTL and are never listed. The
// interface exists so multi-instance deployments can back it with a shared
// store instead of a process-local map.
type Store interface {
	// Put writes the value under key with the given TTL, overwriting any
	// previous value.
	Put(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Get returns the value if present and not expired.
	Get(ctx context.Context, key string) ([]byte, error)

	// TakeIfValid returns the value and deletes it in the same step, so a
	// token can only ever be redeemed once.
	TakeIfValid(ctx context.Context, key string) ([]byte, error)
}

var (
	// ErrTokenNotFound is returned when the key is absent or expired.
	ErrTokenNotFound = errors.New("token not found or expired")
)
