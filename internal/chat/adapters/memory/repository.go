package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/titipin/api/internal/chat/domain"
)

// Repository provides an in-memory message store useful for local
// development and tests.
type Repository struct {
	mu       sync.RWMutex
	messages map[string][]domain.Message // keyed by chat id
}

// NewRepository constructs a new in-memory repository.
func NewRepository() *Repository {
	return &Repository{messages: make(map[string][]domain.Message)}
}

// Create stores a new message instance.
func (r *Repository) Create(_ context.Context, message domain.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages[message.ChatID] = append(r.messages[message.ChatID], message)
	return nil
}

// ListByChat returns up to limit messages for a chat, oldest first.
func (r *Repository) ListByChat(_ context.Context, chatID string, limit int) ([]domain.Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stored := r.messages[chatID]
	result := make([]domain.Message, len(stored))
	copy(result, stored)

	sort.Slice(result, func(i, j int) bool {
		return result[i].SentAt.Before(result[j].SentAt)
	})

	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}

	return result, nil
}

// MarkRead flags messages addressed to readerID as read.
func (r *Repository) MarkRead(_ context.Context, chatID, readerID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var flipped int64
	stored := r.messages[chatID]
	for i := range stored {
		if stored[i].RecipientID == readerID && !stored[i].Read {
			stored[i].Read = true
			flipped++
		}
	}

	return flipped, nil
}
