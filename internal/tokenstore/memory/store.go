package memory

import (
	"context"
	"sync"
	"time"

	"github.com/titipin/api/internal/tokenstore"
)

type entry struct {
	value     []byte
	expiresAt time.Time
}

// Store retains tokens in process memory. Expiry is checked lazily on read,
// so no janitor goroutine is needed. Suitable for single-instance
// deployments and tests.
type Store struct {
	mu    sync.Mutex
	items map[string]entry
	clock func() time.Time
}

// NewStore creates a new in-memory token store. A nil clock means time.Now.
func NewStore(clock func() time.Time) *Store {
	if clock == nil {
		clock = time.Now
	}
	return &Store{
		items: make(map[string]entry),
		clock: clock,
	}
}

// Put stores or overwrites the value for a key.
func (s *Store) Put(_ context.Context, key string, value []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := make([]byte, len(value))
	copy(copied, value)

	s.items[key] = entry{
		value:     copied,
		expiresAt: s.clock().Add(ttl),
	}
	return nil
}

// Get returns the value if present and not expired.
func (s *Store) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.items[key]
	if !ok {
		return nil, tokenstore.ErrTokenNotFound
	}
	if s.clock().After(item.expiresAt) {
		delete(s.items, key)
		return nil, tokenstore.ErrTokenNotFound
	}

	copied := make([]byte, len(item.value))
	copy(copied, item.value)
	return copied, nil
}

// TakeIfValid returns the value and removes it atomically.
func (s *Store) TakeIfValid(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.items[key]
	if !ok {
		return nil, tokenstore.ErrTokenNotFound
	}
	delete(s.items, key)

	if s.clock().After(item.expiresAt) {
		return nil, tokenstore.ErrTokenNotFound
	}

	return item.value, nil
}
