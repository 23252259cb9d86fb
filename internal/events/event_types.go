package events

import (
	"time"

	"github.com/spec-kit/bookswap-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventBookCreated           EventType = "book_created"
	EventExchangeRequested     EventType = "exchange_requested"
	EventExchangeStatusChanged EventType = "exchange_status_changed"
	EventMessageSent           EventType = "message_sent"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID         string      `json:"id"`
	Type       EventType   `json:"type"`
	ActorID    string      `json:"actor_id"`
	ResourceID string      `json:"resource_id"`
	Timestamp  time.Time   `json:"timestamp"`
	Payload    interface{} `json:"payload"`
}

// BookCreatedPayload payload.
type BookCreatedPayload struct {
	Title       string             `json:"title"`
	Category    string             `json:"category"`
	ListingType domain.ListingType `json:"listing_type"`
}

// ExchangeRequestedPayload payload.
type ExchangeRequestedPayload struct {
	BookID   string `json:"book_id"`
	SellerID string `json:"seller_id"`
	BuyerID  string `json:"buyer_id"`
}

// ExchangeStatusChangedPayload payload.
type ExchangeStatusChangedPayload struct {
	OldStatus domain.ExchangeStatus `json:"old_status"`
	NewStatus domain.ExchangeStatus `json:"new_status"`
	BookID    string                `json:"book_id"`
}

// MessageSentPayload payload.
type MessageSentPayload struct {
	ExchangeID string `json:"exchange_id"`
	ReceiverID string `json:"receiver_id"`
	Preview    string `json:"preview"`
}
