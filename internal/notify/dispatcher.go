package notify

import (
	"context"
	"log/slog"

	chatdomain "github.com/titipin/api/internal/chat/domain"
	ordersdomain "github.com/titipin/api/internal/orders/domain"
)

// LogDispatcher logs events without fanning them out to email or push
// channels. Useful for local dev before wiring a real notification backend.
type LogDispatcher struct{}

// NewLogDispatcher returns a new log-only dispatcher.
func NewLogDispatcher() *LogDispatcher {
	return &LogDispatcher{}
}

func (d *LogDispatcher) DispatchLifecycle(_ context.Context, event ordersdomain.LifecycleEvent) error {
	slog.Debug("event::order_transition",
		"order_id", event.OrderID,
		"from", event.From,
		"to", event.To,
		"actor_id", event.ActorID,
	)
	return nil
}

func (d *LogDispatcher) DispatchMessageSent(_ context.Context, event chatdomain.MessageSentEvent) error {
	slog.Debug("event::message_sent",
		"chat_id", event.ChatID,
		"sender_id", event.SenderID,
		"recipient_id", event.RecipientID,
	)
	return nil
}
