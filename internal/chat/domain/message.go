package domain

import (
	"errors"
	"strings"
	"time"
)

// Message is a single chat message between the two parties of an order.
// Content is validated by the contact-info filter before a Message ever
// exists; rejected content is never persisted, not even partially.
type Message struct {
	ID          string    `json:"id"`
	ChatID      string    `json:"chat_id"`
	SenderID    string    `json:"sender_id"`
	RecipientID string    `json:"recipient_id"`
	Content     string    `json:"content"`
	Read        bool      `json:"read"`
	SentAt      time.Time `json:"sent_at"`
}

// Validate ensures the message adheres to business constraints.
func (m Message) Validate() error {
	if strings.TrimSpace(m.ChatID) == "" {
		return errors.New("chat_id is required")
	}
	if strings.TrimSpace(m.SenderID) == "" {
		return errors.New("sender_id is required")
	}
	if strings.TrimSpace(m.RecipientID) == "" {
		return errors.New("recipient_id is required")
	}
	if strings.TrimSpace(m.Content) == "" {
		return errors.New("content is required")
	}
	return nil
}

// MessageSentEvent describes an accepted chat message, emitted for
// asynchronous notification fan-out.
type MessageSentEvent struct {
	ChatID      string    `json:"chat_id"`
	SenderID    string    `json:"sender_id"`
	RecipientID string    `json:"recipient_id"`
	OccurredAt  time.Time `json:"occurred_at"`
}
