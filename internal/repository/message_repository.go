package repository

import (
	"context"

	"github.com/spec-kit/bookswap-service/internal/domain"
	"github.com/spec-kit/bookswap-service/internal/persistence"
)

// MessageRepository encapsulates exchange chat persistence.
type MessageRepository interface {
	Create(ctx context.Context, message *domain.Message) error
	ListByExchange(ctx context.Context, exchangeID string) ([]domain.Message, error)
	MarkRead(ctx context.Context, exchangeID, readerID string) error
	CountUnread(ctx context.Context, userID string) (int, error)
}

type messageRepository struct {
	db *persistence.Executor
}

// NewMessageRepository instantiates the repository.
func NewMessageRepository(db *persistence.Executor) MessageRepository {
	return &messageRepository{db: db}
}

func (r *messageRepository) Create(ctx context.Context, message *domain.Message) error {
	const query = `
        INSERT INTO messages (id, exchange_id, sender_id, content, message_type)
        VALUES (@id, @exchangeId, @senderId, @content, @messageType)
        RETURNING is_read, created_at`

	return r.db.QueryRow(ctx, "create message", query, persistence.Args{
		"id":          message.ID,
		"exchangeId":  message.ExchangeID,
		"senderId":    message.SenderID,
		"content":     message.Content,
		"messageType": message.Type,
	}).Scan(&message.IsRead, &message.CreatedAt)
}

func (r *messageRepository) ListByExchange(ctx context.Context, exchangeID string) ([]domain.Message, error) {
	const query = `
        SELECT m.id, m.exchange_id, m.sender_id, m.content, m.message_type, m.is_read, m.created_at,
               u.full_name, u.avatar_url
        FROM messages m
        INNER JOIN users u ON m.sender_id = u.id
        WHERE m.exchange_id=@exchangeId
        ORDER BY m.created_at ASC`

	rows, err := r.db.Query(ctx, "list messages", query, persistence.Args{"exchangeId": exchangeID})
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Message
	for rows.Next() {
		var message domain.Message
		if err := rows.Scan(
			&message.ID,
			&message.ExchangeID,
			&message.SenderID,
			&message.Content,
			&message.Type,
			&message.IsRead,
			&message.CreatedAt,
			&message.SenderName,
			&message.SenderAvatar,
		); err != nil {
			return nil, err
		}
		result = append(result, message)
	}
	return result, rows.Err()
}

// MarkRead flags all messages sent by the other party as read.
func (r *messageRepository) MarkRead(ctx context.Context, exchangeID, readerID string) error {
	const query = `
        UPDATE messages SET is_read=TRUE
        WHERE exchange_id=@exchangeId AND sender_id <> @readerId AND is_read=FALSE`

	_, err := r.db.Exec(ctx, "mark messages read", query, persistence.Args{
		"exchangeId": exchangeID,
		"readerId":   readerID,
	})
	return err
}

func (r *messageRepository) CountUnread(ctx context.Context, userID string) (int, error) {
	const query = `
        SELECT COUNT(*)
        FROM messages m
        INNER JOIN exchanges e ON m.exchange_id = e.id
        WHERE m.is_read=FALSE AND m.sender_id <> @userId
          AND (e.seller_id=@userId OR e.buyer_id=@userId)`

	var count int
	if err := r.db.QueryRow(ctx, "count unread messages", query, persistence.Args{"userId": userID}).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}
