package app

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/titipin/api/internal/chat/domain"
	"github.com/titipin/api/internal/chat/metrics"
	"github.com/titipin/api/internal/chat/ports"
	"github.com/titipin/api/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

// Service handles chat message submission and retrieval. All coordination
// between the two parties of an order is forced through this channel, which
// is why the contact-info filter sits in front of persistence.
type Service struct {
	repo       ports.MessageRepository
	dispatcher ports.MessageDispatcher
	clock      func() time.Time
	logger     *slog.Logger
	metrics    *metrics.Metrics
}

// NewService wires required dependencies. A nil clock means time.Now.
func NewService(
	repo ports.MessageRepository,
	dispatcher ports.MessageDispatcher,
	logger *slog.Logger,
	m *metrics.Metrics,
	clock func() time.Time,
) *Service {
	if clock == nil {
		clock = time.Now
	}
	return &Service{
		repo:       repo,
		dispatcher: dispatcher,
		clock:      clock,
		logger:     logger,
		metrics:    m,
	}
}

// SubmitMessageInput captures payload for sending a chat message.
type SubmitMessageInput struct {
	ChatID      string `json:"chat_id"`
	SenderID    string `json:"sender_id"`
	RecipientID string `json:"recipient_id"`
	Content     string `json:"content"`
}

// SubmitMessage validates content through the contact-info filter, persists
// the message, and emits a message-sent event. A rejected message fails with
// *domain.ContentRejectedError and nothing is stored.
func (s *Service) SubmitMessage(ctx context.Context, input SubmitMessageInput) (*domain.Message, error) {
	ctx, span := telemetry.StartSpan(ctx, "ChatService.SubmitMessage")
	defer span.End()

	message := domain.Message{
		ID:          uuid.NewString(),
		ChatID:      input.ChatID,
		SenderID:    input.SenderID,
		RecipientID: input.RecipientID,
		Content:     input.Content,
		SentAt:      s.clock().UTC(),
	}

	if err := message.Validate(); err != nil {
		telemetry.RecordSpanError(span, err)
		return nil, err
	}

	if verdict := domain.CheckContactInfo(input.Content); !verdict.Allowed {
		err := &domain.ContentRejectedError{Category: verdict.Category}
		s.metrics.RecordSubmission(ctx, false)
		s.metrics.RecordRejection(ctx, string(verdict.Category))
		s.logger.InfoContext(ctx, "chat message rejected",
			"chat_id", input.ChatID,
			"sender_id", input.SenderID,
			"category", verdict.Category,
		)
		telemetry.RecordSpanError(span, err)
		return nil, err
	}

	if err := s.repo.Create(ctx, message); err != nil {
		s.metrics.RecordSubmission(ctx, false)
		telemetry.RecordSpanError(span, err)
		return nil, err
	}

	s.metrics.RecordSubmission(ctx, true)

	event := domain.MessageSentEvent{
		ChatID:      message.ChatID,
		SenderID:    message.SenderID,
		RecipientID: message.RecipientID,
		OccurredAt:  message.SentAt,
	}
	if err := s.dispatcher.DispatchMessageSent(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "message dispatch failed after persist",
			"chat_id", message.ChatID,
			"error", err,
		)
	}

	telemetry.AddSpanAttributes(span,
		attribute.String("chat.id", message.ChatID),
		attribute.String("message.id", message.ID),
	)
	telemetry.SetSpanSuccess(span)

	return &message, nil
}

// ListMessages returns up to limit messages for a chat, oldest first.
func (s *Service) ListMessages(ctx context.Context, chatID string, limit int) ([]domain.Message, error) {
	if chatID == "" {
		return nil, errors.New("chat_id is required")
	}
	if limit <= 0 {
		limit = 50
	}
	return s.repo.ListByChat(ctx, chatID, limit)
}

// MarkRead flags every message addressed to readerID in the chat as read.
func (s *Service) MarkRead(ctx context.Context, chatID, readerID string) (int64, error) {
	if chatID == "" {
		return 0, errors.New("chat_id is required")
	}
	if readerID == "" {
		return 0, errors.New("reader_id is required")
	}
	return s.repo.MarkRead(ctx, chatID, readerID)
}
