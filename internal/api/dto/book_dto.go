package dto

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/spec-kit/bookswap-service/internal/domain"
)

// BookCreateRequest payload for a new listing.
type BookCreateRequest struct {
	Title       string   `json:"title"`
	Author      string   `json:"author"`
	ISBN        *string  `json:"isbn,omitempty"`
	Description *string  `json:"description,omitempty"`
	Condition   string   `json:"condition"`
	Category    string   `json:"category"`
	Price       *float64 `json:"price,omitempty"`
	ListingType string   `json:"listing_type"`
	ImageURL    *string  `json:"image_url,omitempty"`
	Location    *string  `json:"location,omitempty"`
}

// Validate checks required fields and bounds.
func (r BookCreateRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Required, validation.Length(1, 300)),
		validation.Field(&r.Author, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.Condition, validation.Required),
		validation.Field(&r.Category, validation.Required, validation.Length(1, 100)),
		validation.Field(&r.ListingType, validation.Required),
		validation.Field(&r.Price, validation.Min(0.0)),
	)
}

// BookUpdateRequest carries the allow-listed updatable fields.
type BookUpdateRequest struct {
	Title       *string  `json:"title,omitempty"`
	Author      *string  `json:"author,omitempty"`
	ISBN        *string  `json:"isbn,omitempty"`
	Description *string  `json:"description,omitempty"`
	Condition   *string  `json:"condition,omitempty"`
	Category    *string  `json:"category,omitempty"`
	Price       *float64 `json:"price,omitempty"`
	ListingType *string  `json:"listing_type,omitempty"`
	ImageURL    *string  `json:"image_url,omitempty"`
	Location    *string  `json:"location,omitempty"`
}

// Validate bounds the optional fields.
func (r BookUpdateRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Length(1, 300)),
		validation.Field(&r.Author, validation.Length(1, 200)),
		validation.Field(&r.Category, validation.Length(1, 100)),
		validation.Field(&r.Price, validation.Min(0.0)),
	)
}

// BookResponse is the outward shape of a listing.
type BookResponse struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Title       string    `json:"title"`
	Author      string    `json:"author"`
	ISBN        *string   `json:"isbn,omitempty"`
	Description *string   `json:"description,omitempty"`
	Condition   string    `json:"condition"`
	Category    string    `json:"category"`
	Price       *float64  `json:"price,omitempty"`
	ListingType string    `json:"listing_type"`
	Status      string    `json:"status"`
	ImageURL    *string   `json:"image_url,omitempty"`
	Location    *string   `json:"location,omitempty"`
	ViewsCount  int64     `json:"views_count"`
	OwnerName   string    `json:"owner_name"`
	OwnerAvatar *string   `json:"owner_avatar,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewBookResponse maps a domain book.
func NewBookResponse(book *domain.Book) BookResponse {
	return BookResponse{
		ID:          book.ID,
		UserID:      book.UserID,
		Title:       book.Title,
		Author:      book.Author,
		ISBN:        book.ISBN,
		Description: book.Description,
		Condition:   string(book.Condition),
		Category:    book.Category,
		Price:       book.Price,
		ListingType: string(book.ListingType),
		Status:      string(book.Status),
		ImageURL:    book.ImageURL,
		Location:    book.Location,
		ViewsCount:  book.ViewsCount,
		OwnerName:   book.OwnerName,
		OwnerAvatar: book.OwnerAvatar,
		CreatedAt:   book.CreatedAt,
		UpdatedAt:   book.UpdatedAt,
	}
}

// NewBookResponses maps a slice of domain books.
func NewBookResponses(books []domain.Book) []BookResponse {
	result := make([]BookResponse, 0, len(books))
	for i := range books {
		result = append(result, NewBookResponse(&books[i]))
	}
	return result
}

// Pagination describes one result page.
type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}
