package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/titipin/api/internal/chat/adapters/memory"
	"github.com/titipin/api/internal/chat/domain"
)

func seedMessage(t *testing.T, repo *memory.Repository, chatID, sender, recipient string, sentAt time.Time) domain.Message {
	t.Helper()
	message := domain.Message{
		ID:          sender + "-" + sentAt.Format(time.RFC3339Nano),
		ChatID:      chatID,
		SenderID:    sender,
		RecipientID: recipient,
		Content:     "on my way to the store now",
		SentAt:      sentAt,
	}
	if err := repo.Create(context.Background(), message); err != nil {
		t.Fatalf("seed message: %v", err)
	}
	return message
}

func TestListByChat(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	t.Run("returns messages oldest first regardless of insert order", func(t *testing.T) {
		repo := memory.NewRepository()
		seedMessage(t, repo, "chat-1", "traveler-1", "shopper-1", base.Add(2*time.Minute))
		seedMessage(t, repo, "chat-1", "shopper-1", "traveler-1", base)
		seedMessage(t, repo, "chat-1", "shopper-1", "traveler-1", base.Add(time.Minute))

		messages, err := repo.ListByChat(ctx, "chat-1", 10)
		if err != nil {
			t.Fatalf("ListByChat failed: %v", err)
		}
		if len(messages) != 3 {
			t.Fatalf("messages = %d, want 3", len(messages))
		}
		for i := 1; i < len(messages); i++ {
			if messages[i].SentAt.Before(messages[i-1].SentAt) {
				t.Errorf("messages out of order at %d", i)
			}
		}
	})

	t.Run("applies the limit", func(t *testing.T) {
		repo := memory.NewRepository()
		for i := 0; i < 5; i++ {
			seedMessage(t, repo, "chat-1", "shopper-1", "traveler-1", base.Add(time.Duration(i)*time.Minute))
		}

		messages, err := repo.ListByChat(ctx, "chat-1", 2)
		if err != nil {
			t.Fatalf("ListByChat failed: %v", err)
		}
		if len(messages) != 2 {
			t.Errorf("messages = %d, want 2", len(messages))
		}
	})

	t.Run("unknown chat is empty", func(t *testing.T) {
		repo := memory.NewRepository()
		messages, err := repo.ListByChat(ctx, "missing", 10)
		if err != nil {
			t.Fatalf("ListByChat failed: %v", err)
		}
		if len(messages) != 0 {
			t.Errorf("messages = %d, want 0", len(messages))
		}
	})

	t.Run("chats are isolated from each other", func(t *testing.T) {
		repo := memory.NewRepository()
		seedMessage(t, repo, "chat-1", "shopper-1", "traveler-1", base)
		seedMessage(t, repo, "chat-2", "shopper-2", "traveler-2", base)

		messages, err := repo.ListByChat(ctx, "chat-1", 10)
		if err != nil {
			t.Fatalf("ListByChat failed: %v", err)
		}
		if len(messages) != 1 || messages[0].ChatID != "chat-1" {
			t.Errorf("messages = %+v, want just chat-1", messages)
		}
	})
}

func TestMarkRead(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	t.Run("flips only unread messages addressed to the reader", func(t *testing.T) {
		repo := memory.NewRepository()
		seedMessage(t, repo, "chat-1", "shopper-1", "traveler-1", base)
		seedMessage(t, repo, "chat-1", "shopper-1", "traveler-1", base.Add(time.Minute))
		seedMessage(t, repo, "chat-1", "traveler-1", "shopper-1", base.Add(2*time.Minute))

		flipped, err := repo.MarkRead(ctx, "chat-1", "traveler-1")
		if err != nil {
			t.Fatalf("MarkRead failed: %v", err)
		}
		if flipped != 2 {
			t.Errorf("flipped = %d, want 2", flipped)
		}

		messages, err := repo.ListByChat(ctx, "chat-1", 10)
		if err != nil {
			t.Fatalf("ListByChat failed: %v", err)
		}
		for _, m := range messages {
			wantRead := m.RecipientID == "traveler-1"
			if m.Read != wantRead {
				t.Errorf("message %s read = %v, want %v", m.ID, m.Read, wantRead)
			}
		}
	})

	t.Run("second call flips nothing", func(t *testing.T) {
		repo := memory.NewRepository()
		seedMessage(t, repo, "chat-1", "shopper-1", "traveler-1", base)

		if _, err := repo.MarkRead(ctx, "chat-1", "traveler-1"); err != nil {
			t.Fatalf("MarkRead failed: %v", err)
		}
		flipped, err := repo.MarkRead(ctx, "chat-1", "traveler-1")
		if err != nil {
			t.Fatalf("MarkRead failed: %v", err)
		}
		if flipped != 0 {
			t.Errorf("flipped = %d, want 0", flipped)
		}
	})
}
