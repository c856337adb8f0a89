package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/titipin/api/internal/tokenstore"
)

// Store backs the token store with Redis so multiple API instances share
// tokens. Expiry is delegated to Redis TTLs; single-use semantics rely on
// GETDEL being atomic.
type Store struct {
	client *redis.Client
}

// NewStore connects to Redis using the given URL and verifies the
// connection.
func NewStore(ctx context.Context, redisURL string) (*Store, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return &Store{client: client}, nil
}

// Close closes the Redis connection.
func (s *Store) Close() error {
	return s.client.Close()
}

func tokenKey(key string) string {
	return "token:" + key
}

// Put stores or overwrites the value for a key.
func (s *Store) Put(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := s.client.Set(ctx, tokenKey(key), value, ttl).Err(); err != nil {
		return fmt.Errorf("set token: %w", err)
	}
	return nil
}

// Get returns the value if present and not expired.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := s.client.Get(ctx, tokenKey(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, tokenstore.ErrTokenNotFound
		}
		return nil, fmt.Errorf("get token: %w", err)
	}
	return value, nil
}

// TakeIfValid returns the value and removes it atomically.
func (s *Store) TakeIfValid(ctx context.Context, key string) ([]byte, error) {
	value, err := s.client.GetDel(ctx, tokenKey(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, tokenstore.ErrTokenNotFound
		}
		return nil, fmt.Errorf("getdel token: %w", err)
	}
	return value, nil
}
