package dto

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"

	"github.com/spec-kit/bookswap-service/internal/domain"
)

// ExchangeCreateRequest payload for requesting a book.
type ExchangeCreateRequest struct {
	BookID          string     `json:"book_id"`
	Message         *string    `json:"message,omitempty"`
	MeetingLocation *string    `json:"meeting_location,omitempty"`
	MeetingTime     *time.Time `json:"meeting_time,omitempty"`
}

// Validate checks required fields.
func (r ExchangeCreateRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.BookID, validation.Required, is.UUIDv4),
		validation.Field(&r.Message, validation.Length(1, 1000)),
		validation.Field(&r.MeetingLocation, validation.Length(1, 300)),
	)
}

// ExchangeStatusRequest payload for a status transition.
type ExchangeStatusRequest struct {
	Status string `json:"status"`
}

// Validate checks presence; the service validates the transition itself.
func (r ExchangeStatusRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Status, validation.Required),
	)
}

// ExchangeResponse is the outward shape of an exchange.
type ExchangeResponse struct {
	ID              string     `json:"id"`
	BookID          string     `json:"book_id"`
	SellerID        string     `json:"seller_id"`
	BuyerID         string     `json:"buyer_id"`
	Status          string     `json:"status"`
	Message         *string    `json:"message,omitempty"`
	MeetingLocation *string    `json:"meeting_location,omitempty"`
	MeetingTime     *time.Time `json:"meeting_time,omitempty"`
	BookTitle       string     `json:"book_title"`
	BookAuthor      string     `json:"book_author"`
	BookImageURL    *string    `json:"book_image_url,omitempty"`
	SellerName      string     `json:"seller_name"`
	BuyerName       string     `json:"buyer_name"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// NewExchangeResponse maps a domain exchange.
func NewExchangeResponse(exchange *domain.Exchange) ExchangeResponse {
	return ExchangeResponse{
		ID:              exchange.ID,
		BookID:          exchange.BookID,
		SellerID:        exchange.SellerID,
		BuyerID:         exchange.BuyerID,
		Status:          string(exchange.Status),
		Message:         exchange.Message,
		MeetingLocation: exchange.MeetingLocation,
		MeetingTime:     exchange.MeetingTime,
		BookTitle:       exchange.BookTitle,
		BookAuthor:      exchange.BookAuthor,
		BookImageURL:    exchange.BookImageURL,
		SellerName:      exchange.SellerName,
		BuyerName:       exchange.BuyerName,
		CreatedAt:       exchange.CreatedAt,
		UpdatedAt:       exchange.UpdatedAt,
	}
}

// NewExchangeResponses maps a slice of domain exchanges.
func NewExchangeResponses(exchanges []domain.Exchange) []ExchangeResponse {
	result := make([]ExchangeResponse, 0, len(exchanges))
	for i := range exchanges {
		result = append(result, NewExchangeResponse(&exchanges[i]))
	}
	return result
}
