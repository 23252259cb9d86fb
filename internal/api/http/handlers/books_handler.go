package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/bookswap-service/internal/api/dto"
	"github.com/spec-kit/bookswap-service/internal/domain"
	"github.com/spec-kit/bookswap-service/internal/repository"
	"github.com/spec-kit/bookswap-service/internal/service"
	apperrors "github.com/spec-kit/bookswap-service/pkg/util"
)

const defaultPageLimit = 20

// BooksHandler serves listing CRUD and search.
type BooksHandler struct {
	books *service.BookService
}

func NewBooksHandler(books *service.BookService) *BooksHandler {
	return &BooksHandler{books: books}
}

// Search handles GET /books.
func (h *BooksHandler) Search(c *fiber.Ctx) error {
	filter, err := parseBookFilter(c)
	if err != nil {
		return err
	}

	result, err := h.books.SearchBooks(c.Context(), filter)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"data": dto.NewBookResponses(result.Books),
		"pagination": dto.Pagination{
			Page:  result.Page,
			Limit: result.Limit,
			Total: result.Total,
			Pages: result.Pages,
		},
	})
}

// Get handles GET /books/:id.
func (h *BooksHandler) Get(c *fiber.Ctx) error {
	book, err := h.books.GetBook(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewBookResponse(book)})
}

// ListMine handles GET /books/mine.
func (h *BooksHandler) ListMine(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	books, err := h.books.ListUserBooks(c.Context(), user.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewBookResponses(books)})
}

// Create handles POST /books.
func (h *BooksHandler) Create(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	var req dto.BookCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := req.Validate(); err != nil {
		return apperrors.NewValidationError(err.Error(), nil)
	}

	book, err := h.books.CreateBook(c.Context(), user.ID, service.BookCreateInput{
		Title:       req.Title,
		Author:      req.Author,
		ISBN:        req.ISBN,
		Description: req.Description,
		Condition:   domain.BookCondition(req.Condition),
		Category:    req.Category,
		Price:       req.Price,
		ListingType: domain.ListingType(req.ListingType),
		ImageURL:    req.ImageURL,
		Location:    req.Location,
	}, requestMeta(c))
	if err != nil {
		return err
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewBookResponse(book)})
}

// Update handles PUT /books/:id.
func (h *BooksHandler) Update(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	var req dto.BookUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := req.Validate(); err != nil {
		return apperrors.NewValidationError(err.Error(), nil)
	}

	update := repository.BookUpdate{
		Title:       req.Title,
		Author:      req.Author,
		ISBN:        req.ISBN,
		Description: req.Description,
		Category:    req.Category,
		Price:       req.Price,
		ImageURL:    req.ImageURL,
		Location:    req.Location,
	}
	if req.Condition != nil {
		condition := domain.BookCondition(*req.Condition)
		update.Condition = &condition
	}
	if req.ListingType != nil {
		listingType := domain.ListingType(*req.ListingType)
		update.ListingType = &listingType
	}

	book, err := h.books.UpdateBook(c.Context(), user.ID, c.Params("id"), update, requestMeta(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewBookResponse(book)})
}

// Delete handles DELETE /books/:id.
func (h *BooksHandler) Delete(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	if err := h.books.DeleteBook(c.Context(), user.ID, c.Params("id"), requestMeta(c)); err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"data": fiber.Map{"message": "book deleted"},
	})
}

func parseBookFilter(c *fiber.Ctx) (repository.BookFilter, error) {
	filter := repository.BookFilter{Limit: defaultPageLimit}

	page := 1
	if raw := c.Query("page"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			return filter, apperrors.NewValidationError("page must be a positive integer", nil)
		}
		page = parsed
	}
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			return filter, apperrors.NewValidationError("limit must be a positive integer", nil)
		}
		if parsed > repository.MaxSearchLimit {
			parsed = repository.MaxSearchLimit
		}
		filter.Limit = parsed
	}
	// Offset is derived from the clamped limit so it matches the LIMIT
	// the query runs with.
	filter.Offset = (page - 1) * filter.Limit

	if raw := strings.TrimSpace(c.Query("search")); raw != "" {
		filter.SearchTerm = &raw
	}
	if raw := strings.TrimSpace(c.Query("category")); raw != "" {
		filter.Category = &raw
	}
	if raw := strings.TrimSpace(c.Query("university")); raw != "" {
		filter.University = &raw
	}
	if raw := c.Query("condition"); raw != "" {
		condition := domain.BookCondition(raw)
		if !condition.Valid() {
			return filter, apperrors.NewValidationError("invalid condition filter", nil)
		}
		filter.Condition = &condition
	}
	if raw := c.Query("listing_type"); raw != "" {
		listingType := domain.ListingType(raw)
		if !listingType.Valid() {
			return filter, apperrors.NewValidationError("invalid listing_type filter", nil)
		}
		filter.ListingType = &listingType
	}
	if raw := c.Query("min_price"); raw != "" {
		price, err := strconv.ParseFloat(raw, 64)
		if err != nil || price < 0 {
			return filter, apperrors.NewValidationError("min_price must be a non-negative number", nil)
		}
		filter.MinPrice = &price
	}
	if raw := c.Query("max_price"); raw != "" {
		price, err := strconv.ParseFloat(raw, 64)
		if err != nil || price < 0 {
			return filter, apperrors.NewValidationError("max_price must be a non-negative number", nil)
		}
		filter.MaxPrice = &price
	}

	return filter, nil
}
