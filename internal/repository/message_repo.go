package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/girmmy/gimmyai/internal/domain"
)

type MessageRepository interface {
	Create(ctx context.Context, message domain.Message) error
	ListByConversationID(ctx context.Context, conversationID string) ([]domain.Message, error)
}

type PgMessageRepository struct {
	pool *pgxpool.Pool
}

func NewPgMessageRepository(pool *pgxpool.Pool) *PgMessageRepository {
	return &PgMessageRepository{pool: pool}
}

func (r *PgMessageRepository) Create(ctx context.Context, message domain.Message) error {
	const query = `
		INSERT INTO messages (id, conversation_id, role, content, image_url, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	var imageURL interface{}
	if message.ImageURL != "" {
		imageURL = message.ImageURL
	}

	_, err := r.pool.Exec(ctx, query,
		message.ID,
		message.ConversationID,
		message.Role,
		message.Content,
		imageURL,
		message.CreatedAt,
	)
	return err
}

// ListByConversationID devuelve los mensajes en orden ascendente de creación.
func (r *PgMessageRepository) ListByConversationID(ctx context.Context, conversationID string) ([]domain.Message, error) {
	const query = `
		SELECT id, conversation_id, role, content, image_url, created_at
		FROM messages
		WHERE conversation_id = $1
		ORDER BY created_at ASC
	`

	rows, err := r.pool.Query(ctx, query, conversationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []domain.Message
	for rows.Next() {
		var msg domain.Message
		var imageURL *string

		err = rows.Scan(
			&msg.ID,
			&msg.ConversationID,
			&msg.Role,
			&msg.Content,
			&imageURL,
			&msg.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		if imageURL != nil {
			msg.ImageURL = *imageURL
		}
		messages = append(messages, msg)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return messages, nil
}
