package ports

import (
	"context"

	"github.com/titipin/api/internal/chat/domain"
)

// MessageDispatcher fans message-sent events out to notification channels.
// Dispatch runs after the message is persisted and is best-effort.
type MessageDispatcher interface {
	DispatchMessageSent(ctx context.Context, event domain.MessageSentEvent) error
}
