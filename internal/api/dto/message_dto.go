package dto

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/spec-kit/bookswap-service/internal/domain"
)

// MessageSendRequest payload for posting into an exchange conversation.
// The exchange itself is addressed by the route.
type MessageSendRequest struct {
	Content     string `json:"content"`
	MessageType string `json:"message_type,omitempty"`
}

// Validate checks required fields.
func (r MessageSendRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Content, validation.Required, validation.Length(1, 5000)),
	)
}

// MessageResponse is the outward shape of a chat message.
type MessageResponse struct {
	ID           string    `json:"id"`
	ExchangeID   string    `json:"exchange_id"`
	SenderID     string    `json:"sender_id"`
	Content      string    `json:"content"`
	MessageType  string    `json:"message_type"`
	IsRead       bool      `json:"is_read"`
	SenderName   string    `json:"sender_name,omitempty"`
	SenderAvatar *string   `json:"sender_avatar,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// NewMessageResponse maps a domain message.
func NewMessageResponse(message *domain.Message) MessageResponse {
	return MessageResponse{
		ID:           message.ID,
		ExchangeID:   message.ExchangeID,
		SenderID:     message.SenderID,
		Content:      message.Content,
		MessageType:  string(message.Type),
		IsRead:       message.IsRead,
		SenderName:   message.SenderName,
		SenderAvatar: message.SenderAvatar,
		CreatedAt:    message.CreatedAt,
	}
}

// NewMessageResponses maps a slice of domain messages.
func NewMessageResponses(messages []domain.Message) []MessageResponse {
	result := make([]MessageResponse, 0, len(messages))
	for i := range messages {
		result = append(result, NewMessageResponse(&messages[i]))
	}
	return result
}
