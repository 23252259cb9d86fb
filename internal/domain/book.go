package domain

import "time"

// BookCondition grades physical state of a listed book.
type BookCondition string

const (
	BookConditionNew        BookCondition = "new"
	BookConditionLikeNew    BookCondition = "like_new"
	BookConditionGood       BookCondition = "good"
	BookConditionAcceptable BookCondition = "acceptable"
	BookConditionPoor       BookCondition = "poor"
)

// Valid reports whether the condition is a known grade.
func (c BookCondition) Valid() bool {
	switch c {
	case BookConditionNew, BookConditionLikeNew, BookConditionGood, BookConditionAcceptable, BookConditionPoor:
		return true
	}
	return false
}

// ListingType describes how the owner wants to part with the book.
type ListingType string

const (
	ListingTypeSell     ListingType = "sell"
	ListingTypeExchange ListingType = "exchange"
	ListingTypeDonate   ListingType = "donate"
)

// Valid reports whether the listing type is known.
func (t ListingType) Valid() bool {
	switch t {
	case ListingTypeSell, ListingTypeExchange, ListingTypeDonate:
		return true
	}
	return false
}

// BookStatus tracks marketplace availability.
type BookStatus string

const (
	BookStatusAvailable BookStatus = "available"
	BookStatusReserved  BookStatus = "reserved"
	BookStatusSold      BookStatus = "sold"
)

// Book is a textbook listing in the marketplace.
type Book struct {
	ID          string
	UserID      string
	Title       string
	Author      string
	ISBN        *string
	Description *string
	Condition   BookCondition
	Category    string
	Price       *float64
	ListingType ListingType
	Status      BookStatus
	ImageURL    *string
	Location    *string
	ViewsCount  int64
	CreatedAt   time.Time
	UpdatedAt   time.Time

	// Joined owner fields for marketplace listings.
	OwnerName   string
	OwnerAvatar *string
}
