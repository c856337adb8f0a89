package ports

import (
	"context"
	"errors"

	"github.com/titipin/api/internal/chat/domain"
)

// MessageRepository exposes persistence operations for chat messages.
type MessageRepository interface {
	Create(ctx context.Context, message domain.Message) error
	ListByChat(ctx context.Context, chatID string, limit int) ([]domain.Message, error)

	// MarkRead flags every message in the chat addressed to readerID as read
	// and returns how many messages were flipped.
	MarkRead(ctx context.Context, chatID, readerID string) (int64, error)
}

var (
	// ErrMessageNotFound is returned when the requested message does not exist.
	ErrMessageNotFound = errors.New("message not found")
)
