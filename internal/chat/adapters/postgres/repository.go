package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/titipin/api/internal/chat/domain"
)

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) Create(ctx context.Context, message domain.Message) error {
	query := `
		INSERT INTO chat_messages (id, chat_id, sender_id, recipient_id, content, read, sent_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.pool.Exec(ctx, query,
		message.ID,
		message.ChatID,
		message.SenderID,
		message.RecipientID,
		message.Content,
		message.Read,
		message.SentAt,
	)
	if err != nil {
		return fmt.Errorf("insert chat message: %w", err)
	}

	return nil
}

func (r *Repository) ListByChat(ctx context.Context, chatID string, limit int) ([]domain.Message, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, chat_id, sender_id, recipient_id, content, read, sent_at
		FROM chat_messages
		WHERE chat_id = $1
		ORDER BY sent_at ASC
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, chatID, limit)
	if err != nil {
		return nil, fmt.Errorf("query chat messages: %w", err)
	}
	defer rows.Close()

	var messages []domain.Message
	for rows.Next() {
		var message domain.Message
		if err := rows.Scan(
			&message.ID,
			&message.ChatID,
			&message.SenderID,
			&message.RecipientID,
			&message.Content,
			&message.Read,
			&message.SentAt,
		); err != nil {
			return nil, fmt.Errorf("scan chat message: %w", err)
		}
		messages = append(messages, message)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate chat messages: %w", err)
	}

	return messages, nil
}

func (r *Repository) MarkRead(ctx context.Context, chatID, readerID string) (int64, error) {
	query := `
		UPDATE chat_messages
		SET read = TRUE
		WHERE chat_id = $1 AND recipient_id = $2 AND read = FALSE
	`

	tag, err := r.pool.Exec(ctx, query, chatID, readerID)
	if err != nil {
		return 0, fmt.Errorf("mark chat messages read: %w", err)
	}

	return tag.RowsAffected(), nil
}
