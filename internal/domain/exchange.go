package domain

import "time"

// ExchangeStatus enumerates the lifecycle of an exchange request.
type ExchangeStatus string

const (
	ExchangeStatusPending   ExchangeStatus = "pending"
	ExchangeStatusAccepted  ExchangeStatus = "accepted"
	ExchangeStatusRejected  ExchangeStatus = "rejected"
	ExchangeStatusCompleted ExchangeStatus = "completed"
	ExchangeStatusCancelled ExchangeStatus = "cancelled"
)

// Valid reports whether the status is known.
func (s ExchangeStatus) Valid() bool {
	switch s {
	case ExchangeStatusPending, ExchangeStatusAccepted, ExchangeStatusRejected,
		ExchangeStatusCompleted, ExchangeStatusCancelled:
		return true
	}
	return false
}

// CanTransitionTo encodes the exchange state machine. Rejected, completed
// and cancelled are terminal.
func (s ExchangeStatus) CanTransitionTo(next ExchangeStatus) bool {
	switch s {
	case ExchangeStatusPending:
		return next == ExchangeStatusAccepted || next == ExchangeStatusRejected || next == ExchangeStatusCancelled
	case ExchangeStatusAccepted:
		return next == ExchangeStatusCompleted || next == ExchangeStatusCancelled
	}
	return false
}

// Exchange is a buyer's request to acquire a listed book.
type Exchange struct {
	ID              string
	BookID          string
	SellerID        string
	BuyerID         string
	Status          ExchangeStatus
	Message         *string
	MeetingLocation *string
	MeetingTime     *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time

	// Joined fields for listings.
	BookTitle    string
	BookAuthor   string
	BookImageURL *string
	SellerName   string
	BuyerName    string
}

// IsParty reports whether the user participates in the exchange.
func (e *Exchange) IsParty(userID string) bool {
	return e.SellerID == userID || e.BuyerID == userID
}
