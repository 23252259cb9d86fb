package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"hash/fnv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/bookswap-service/internal/domain"
	"github.com/spec-kit/bookswap-service/internal/events"
	"github.com/spec-kit/bookswap-service/internal/persistence"
	"github.com/spec-kit/bookswap-service/internal/repository"
	apperrors "github.com/spec-kit/bookswap-service/pkg/util"
)

const (
	searchCacheTTL    = time.Minute
	searchCacheGenKey = "books:search:gen"

	xpBookListed = 10
)

// BookService coordinates marketplace listing workflows.
type BookService struct {
	books      repository.BookRepository
	exchanges  repository.ExchangeRepository
	stats      repository.StatsRepository
	activity   repository.ActivityRepository
	dispatcher events.Dispatcher
	cache      *persistence.Redis
	logger     *zap.Logger
}

// BookDependencies bundles repositories for the book service.
type BookDependencies struct {
	BookRepo     repository.BookRepository
	ExchangeRepo repository.ExchangeRepository
	StatsRepo    repository.StatsRepository
	ActivityRepo repository.ActivityRepository
	Dispatcher   events.Dispatcher
	Cache        *persistence.Redis
	Logger       *zap.Logger
}

// BookCreateInput describes a new listing.
type BookCreateInput struct {
	Title       string
	Author      string
	ISBN        *string
	Description *string
	Condition   domain.BookCondition
	Category    string
	Price       *float64
	ListingType domain.ListingType
	ImageURL    *string
	Location    *string
}

// SearchResult is one page of marketplace results.
type SearchResult struct {
	Books []domain.Book `json:"books"`
	Total int           `json:"total"`
	Page  int           `json:"page"`
	Pages int           `json:"pages"`
	Limit int           `json:"limit"`
}

// NewBookService constructs the service.
func NewBookService(deps BookDependencies) *BookService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BookService{
		books:      deps.BookRepo,
		exchanges:  deps.ExchangeRepo,
		stats:      deps.StatsRepo,
		activity:   deps.ActivityRepo,
		dispatcher: deps.Dispatcher,
		cache:      deps.Cache,
		logger:     logger,
	}
}

// CreateBook lists a book for the user.
func (s *BookService) CreateBook(ctx context.Context, userID string, input BookCreateInput, meta RequestMeta) (*domain.Book, error) {
	if input.Title == "" || input.Author == "" || input.Category == "" {
		return nil, apperrors.NewValidationError("title, author and category are required", nil)
	}
	if !input.Condition.Valid() {
		return nil, apperrors.NewValidationError("invalid condition value", nil)
	}
	if !input.ListingType.Valid() {
		return nil, apperrors.NewValidationError("invalid listing type value", nil)
	}

	book := &domain.Book{
		ID:          uuid.NewString(),
		UserID:      userID,
		Title:       input.Title,
		Author:      input.Author,
		ISBN:        input.ISBN,
		Description: input.Description,
		Condition:   input.Condition,
		Category:    input.Category,
		Price:       input.Price,
		ListingType: input.ListingType,
		Status:      domain.BookStatusAvailable,
		ImageURL:    input.ImageURL,
		Location:    input.Location,
	}
	if err := s.books.Create(ctx, book); err != nil {
		return nil, err
	}

	// Stats are best-effort relative to the listing already created.
	if err := s.stats.IncrementBooksListed(ctx, userID); err != nil {
		s.logger.Warn("failed to bump books-listed counter",
			zap.String("user_id", userID), zap.Error(err))
	}
	if err := s.stats.AddExperience(ctx, userID, xpBookListed); err != nil {
		s.logger.Warn("failed to award experience",
			zap.String("user_id", userID), zap.Error(err))
	}

	details := fmt.Sprintf("listed book: %s", book.Title)
	s.appendActivity(ctx, userID, domain.ActivityBookCreated, "book", book.ID, &details, meta)
	s.invalidateSearchCache(ctx)
	s.publish(ctx, events.Event{
		Type:       events.EventBookCreated,
		ActorID:    userID,
		ResourceID: book.ID,
		Payload: events.BookCreatedPayload{
			Title:       book.Title,
			Category:    book.Category,
			ListingType: book.ListingType,
		},
	})

	return s.books.GetByID(ctx, book.ID)
}

// UpdateBook applies allow-listed fields after an ownership check.
func (s *BookService) UpdateBook(ctx context.Context, userID, bookID string, update repository.BookUpdate, meta RequestMeta) (*domain.Book, error) {
	book, err := s.books.GetByID(ctx, bookID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("book")
		}
		return nil, err
	}
	if book.UserID != userID {
		return nil, apperrors.NewForbidden("only the owner can update a listing")
	}
	if update.Condition != nil && !update.Condition.Valid() {
		return nil, apperrors.NewValidationError("invalid condition value", nil)
	}
	if update.ListingType != nil && !update.ListingType.Valid() {
		return nil, apperrors.NewValidationError("invalid listing type value", nil)
	}
	if update == (repository.BookUpdate{}) {
		return nil, apperrors.NewValidationError("no updates provided", nil)
	}

	if err := s.books.Update(ctx, bookID, update); err != nil {
		return nil, err
	}

	s.appendActivity(ctx, userID, domain.ActivityBookUpdated, "book", bookID, nil, meta)
	s.invalidateSearchCache(ctx)
	return s.books.GetByID(ctx, bookID)
}

// DeleteBook removes a listing; listings with pending or accepted
// exchanges cannot be deleted.
func (s *BookService) DeleteBook(ctx context.Context, userID, bookID string, meta RequestMeta) error {
	book, err := s.books.GetByID(ctx, bookID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("book")
		}
		return err
	}
	if book.UserID != userID {
		return apperrors.NewForbidden("only the owner can delete a listing")
	}

	active, err := s.exchanges.CountActiveForBook(ctx, bookID)
	if err != nil {
		return err
	}
	if active > 0 {
		return apperrors.NewValidationError("cannot delete a book with active exchanges", nil)
	}

	if err := s.books.Delete(ctx, bookID); err != nil {
		return err
	}

	details := fmt.Sprintf("deleted book: %s", book.Title)
	s.appendActivity(ctx, userID, domain.ActivityBookDeleted, "book", bookID, &details, meta)
	s.invalidateSearchCache(ctx)
	return nil
}

// GetBook fetches one listing and records the view.
func (s *BookService) GetBook(ctx context.Context, bookID string) (*domain.Book, error) {
	book, err := s.books.GetByID(ctx, bookID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("book")
		}
		return nil, err
	}
	// View counting is best-effort.
	_ = s.books.IncrementViews(ctx, bookID)
	return book, nil
}

// ListUserBooks returns every listing of one user.
func (s *BookService) ListUserBooks(ctx context.Context, userID string) ([]domain.Book, error) {
	return s.books.ListByUser(ctx, userID)
}

// SearchBooks pages through available listings. Result pages are cached
// briefly in Redis; any write to the books table bumps the cache
// generation, orphaning stale keys.
func (s *BookService) SearchBooks(ctx context.Context, filter repository.BookFilter) (*SearchResult, error) {
	key := s.searchCacheKey(ctx, filter)
	if key != "" {
		if cached, ok := s.cache.CacheGet(ctx, key); ok {
			var result SearchResult
			if err := json.Unmarshal(cached, &result); err == nil {
				return &result, nil
			}
		}
	}

	books, total, err := s.books.Search(ctx, filter)
	if err != nil {
		return nil, err
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = repository.DefaultSearchLimit
	}
	if limit > repository.MaxSearchLimit {
		limit = repository.MaxSearchLimit
	}
	result := &SearchResult{
		Books: books,
		Total: total,
		Page:  filter.Offset/limit + 1,
		Pages: (total + limit - 1) / limit,
		Limit: limit,
	}

	if key != "" {
		if payload, err := json.Marshal(result); err == nil {
			s.cache.CacheSet(ctx, key, payload, searchCacheTTL)
		}
	}
	return result, nil
}

func (s *BookService) searchCacheKey(ctx context.Context, filter repository.BookFilter) string {
	if s.cache == nil {
		return ""
	}
	raw, err := json.Marshal(filter)
	if err != nil {
		return ""
	}
	h := fnv.New64a()
	_, _ = h.Write(raw)
	gen := s.cache.Generation(ctx, searchCacheGenKey)
	return fmt.Sprintf("books:search:%d:%x", gen, h.Sum64())
}

func (s *BookService) invalidateSearchCache(ctx context.Context) {
	if s.cache != nil {
		s.cache.Bump(ctx, searchCacheGenKey)
	}
}

func (s *BookService) appendActivity(ctx context.Context, userID string, action domain.ActivityAction, resourceType, resourceID string, details *string, meta RequestMeta) {
	entry := &domain.ActivityEntry{
		ID:           uuid.NewString(),
		UserID:       &userID,
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   &resourceID,
		Details:      details,
	}
	if meta.IPAddress != "" {
		entry.IPAddress = &meta.IPAddress
	}
	if meta.UserAgent != "" {
		entry.UserAgent = &meta.UserAgent
	}
	if err := s.activity.Append(ctx, entry); err != nil {
		s.logger.Warn("failed to append activity log",
			zap.String("action", string(action)), zap.Error(err))
	}
}

func (s *BookService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	event.ID = uuid.NewString()
	event.Timestamp = time.Now()
	_ = s.dispatcher.Publish(ctx, event)
}
