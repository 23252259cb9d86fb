package service

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/bookswap-service/internal/domain"
	"github.com/spec-kit/bookswap-service/internal/events"
	"github.com/spec-kit/bookswap-service/internal/repository"
	apperrors "github.com/spec-kit/bookswap-service/pkg/util"
)

// MessageService handles exchange chat.
type MessageService struct {
	messages   repository.MessageRepository
	exchanges  repository.ExchangeRepository
	dispatcher events.Dispatcher
}

// MessageDependencies bundles repositories for the message service.
type MessageDependencies struct {
	MessageRepo  repository.MessageRepository
	ExchangeRepo repository.ExchangeRepository
	Dispatcher   events.Dispatcher
}

// NewMessageService constructs the service.
func NewMessageService(deps MessageDependencies) *MessageService {
	return &MessageService{
		messages:   deps.MessageRepo,
		exchanges:  deps.ExchangeRepo,
		dispatcher: deps.Dispatcher,
	}
}

// Send posts a message into an exchange the sender participates in. The
// receiver is the other party, derived rather than client-supplied.
func (s *MessageService) Send(ctx context.Context, senderID, exchangeID, content string, msgType domain.MessageType) (*domain.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperrors.NewValidationError("message content is required", nil)
	}
	if msgType == "" {
		msgType = domain.MessageTypeText
	}
	if !msgType.Valid() {
		return nil, apperrors.NewValidationError("invalid message type", nil)
	}

	exchange, err := s.partyExchange(ctx, senderID, exchangeID)
	if err != nil {
		return nil, err
	}

	message := &domain.Message{
		ID:         uuid.NewString(),
		ExchangeID: exchange.ID,
		SenderID:   senderID,
		Content:    content,
		Type:       msgType,
	}
	if err := s.messages.Create(ctx, message); err != nil {
		return nil, err
	}

	receiverID := exchange.SellerID
	if senderID == exchange.SellerID {
		receiverID = exchange.BuyerID
	}
	if s.dispatcher != nil {
		_ = s.dispatcher.Publish(ctx, events.Event{
			ID:         uuid.NewString(),
			Type:       events.EventMessageSent,
			ActorID:    senderID,
			ResourceID: message.ID,
			Timestamp:  time.Now(),
			Payload: events.MessageSentPayload{
				ExchangeID: exchange.ID,
				ReceiverID: receiverID,
				Preview:    preview(content),
			},
		})
	}

	return message, nil
}

// List returns the conversation for an exchange and marks the other
// party's messages as read.
func (s *MessageService) List(ctx context.Context, userID, exchangeID string) ([]domain.Message, error) {
	if _, err := s.partyExchange(ctx, userID, exchangeID); err != nil {
		return nil, err
	}

	messages, err := s.messages.ListByExchange(ctx, exchangeID)
	if err != nil {
		return nil, err
	}
	_ = s.messages.MarkRead(ctx, exchangeID, userID)
	return messages, nil
}

// UnreadCount reports messages awaiting the user across all exchanges.
func (s *MessageService) UnreadCount(ctx context.Context, userID string) (int, error) {
	return s.messages.CountUnread(ctx, userID)
}

// partyExchange loads the exchange and rejects callers who are not one
// of its two parties. Outsiders get the same not-found as a missing
// exchange so conversation existence is not revealed.
func (s *MessageService) partyExchange(ctx context.Context, userID, exchangeID string) (*domain.Exchange, error) {
	exchange, err := s.exchanges.GetByID(ctx, exchangeID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("exchange")
		}
		return nil, err
	}
	if !exchange.IsParty(userID) {
		return nil, apperrors.NewNotFound("exchange")
	}
	return exchange, nil
}

// preview shortens content for event payloads, backing up to a rune
// boundary so the cut never produces invalid UTF-8.
func preview(content string) string {
	const max = 80
	if len(content) <= max {
		return content
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(content[cut]) {
		cut--
	}
	return content[:cut]
}
