package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/bookswap-service/internal/domain"
	"github.com/spec-kit/bookswap-service/internal/events"
	"github.com/spec-kit/bookswap-service/internal/repository"
	apperrors "github.com/spec-kit/bookswap-service/pkg/util"
)

const (
	xpExchangeCompletedSeller = 25
	xpExchangeCompletedBuyer  = 20
)

// ExchangeService coordinates exchange request workflows.
type ExchangeService struct {
	exchanges  repository.ExchangeRepository
	books      repository.BookRepository
	stats      repository.StatsRepository
	activity   repository.ActivityRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// ExchangeDependencies bundles repositories for the exchange service.
type ExchangeDependencies struct {
	ExchangeRepo repository.ExchangeRepository
	BookRepo     repository.BookRepository
	StatsRepo    repository.StatsRepository
	ActivityRepo repository.ActivityRepository
	Dispatcher   events.Dispatcher
	Logger       *zap.Logger
}

// ExchangeCreateInput describes a new exchange request.
type ExchangeCreateInput struct {
	BookID          string
	Message         *string
	MeetingLocation *string
	MeetingTime     *time.Time
}

// NewExchangeService constructs the service.
func NewExchangeService(deps ExchangeDependencies) *ExchangeService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExchangeService{
		exchanges:  deps.ExchangeRepo,
		books:      deps.BookRepo,
		stats:      deps.StatsRepo,
		activity:   deps.ActivityRepo,
		dispatcher: deps.Dispatcher,
		logger:     logger,
	}
}

// CreateExchange opens a pending request from buyer to the book owner.
func (s *ExchangeService) CreateExchange(ctx context.Context, buyerID string, input ExchangeCreateInput, meta RequestMeta) (*domain.Exchange, error) {
	book, err := s.books.GetByID(ctx, input.BookID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("book")
		}
		return nil, err
	}
	if book.UserID == buyerID {
		return nil, apperrors.NewValidationError("cannot create an exchange request for your own book", nil)
	}
	if book.Status != domain.BookStatusAvailable {
		return nil, apperrors.NewValidationError("book is not available for exchange", nil)
	}

	exchange := &domain.Exchange{
		ID:              uuid.NewString(),
		BookID:          book.ID,
		SellerID:        book.UserID,
		BuyerID:         buyerID,
		Status:          domain.ExchangeStatusPending,
		Message:         input.Message,
		MeetingLocation: input.MeetingLocation,
		MeetingTime:     input.MeetingTime,
	}
	if err := s.exchanges.Create(ctx, exchange); err != nil {
		return nil, err
	}

	details := fmt.Sprintf("requested exchange for book: %s", book.Title)
	s.appendActivity(ctx, buyerID, domain.ActivityExchangeRequested, exchange.ID, &details, meta)
	s.publish(ctx, events.Event{
		Type:       events.EventExchangeRequested,
		ActorID:    buyerID,
		ResourceID: exchange.ID,
		Payload: events.ExchangeRequestedPayload{
			BookID:   book.ID,
			SellerID: book.UserID,
			BuyerID:  buyerID,
		},
	})

	return s.exchanges.GetByID(ctx, exchange.ID)
}

// UpdateStatus moves an exchange through its state machine. The seller
// decides accept/reject, either party may cancel, and either party may
// complete an accepted exchange. Book availability tracks the exchange:
// accepted reserves it, completed sells it, abandoning an accepted
// exchange releases it.
func (s *ExchangeService) UpdateStatus(ctx context.Context, userID, exchangeID string, next domain.ExchangeStatus, meta RequestMeta) (*domain.Exchange, error) {
	if !next.Valid() {
		return nil, apperrors.NewValidationError("invalid status value", nil)
	}

	exchange, err := s.exchanges.GetByID(ctx, exchangeID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("exchange")
		}
		return nil, err
	}
	if !exchange.IsParty(userID) {
		return nil, apperrors.NewForbidden("not a participant of this exchange")
	}
	if !exchange.Status.CanTransitionTo(next) {
		return nil, apperrors.NewValidationError(
			fmt.Sprintf("cannot change status from %s to %s", exchange.Status, next), nil)
	}

	switch next {
	case domain.ExchangeStatusAccepted, domain.ExchangeStatusRejected:
		if userID != exchange.SellerID {
			return nil, apperrors.NewForbidden("only the seller can accept or reject a request")
		}
	}

	var bookStatus *domain.BookStatus
	switch {
	case next == domain.ExchangeStatusAccepted:
		status := domain.BookStatusReserved
		bookStatus = &status
	case next == domain.ExchangeStatusCompleted:
		status := domain.BookStatusSold
		bookStatus = &status
	case next == domain.ExchangeStatusCancelled && exchange.Status == domain.ExchangeStatusAccepted:
		status := domain.BookStatusAvailable
		bookStatus = &status
	}

	if err := s.exchanges.UpdateStatus(ctx, exchangeID, next, exchange.BookID, bookStatus); err != nil {
		return nil, err
	}

	// Stats are best-effort relative to the transition already committed.
	if next == domain.ExchangeStatusCompleted {
		if err := s.stats.IncrementExchanges(ctx, exchange.SellerID); err != nil {
			s.logger.Warn("failed to bump exchange counter",
				zap.String("user_id", exchange.SellerID), zap.Error(err))
		}
		if err := s.stats.AddExperience(ctx, exchange.SellerID, xpExchangeCompletedSeller); err != nil {
			s.logger.Warn("failed to award experience",
				zap.String("user_id", exchange.SellerID), zap.Error(err))
		}
		if err := s.stats.AddExperience(ctx, exchange.BuyerID, xpExchangeCompletedBuyer); err != nil {
			s.logger.Warn("failed to award experience",
				zap.String("user_id", exchange.BuyerID), zap.Error(err))
		}
	}

	details := fmt.Sprintf("exchange status changed from %s to %s", exchange.Status, next)
	s.appendActivity(ctx, userID, domain.ActivityExchangeUpdated, exchangeID, &details, meta)
	s.publish(ctx, events.Event{
		Type:       events.EventExchangeStatusChanged,
		ActorID:    userID,
		ResourceID: exchangeID,
		Payload: events.ExchangeStatusChangedPayload{
			OldStatus: exchange.Status,
			NewStatus: next,
			BookID:    exchange.BookID,
		},
	})

	return s.exchanges.GetByID(ctx, exchangeID)
}

// ListExchanges returns the user's exchanges, optionally narrowed by
// status or role.
func (s *ExchangeService) ListExchanges(ctx context.Context, userID string, filter repository.ExchangeFilter) ([]domain.Exchange, error) {
	if filter.Status != nil && !filter.Status.Valid() {
		return nil, apperrors.NewValidationError("invalid status value", nil)
	}
	return s.exchanges.ListForUser(ctx, userID, filter)
}

func (s *ExchangeService) appendActivity(ctx context.Context, userID string, action domain.ActivityAction, exchangeID string, details *string, meta RequestMeta) {
	entry := &domain.ActivityEntry{
		ID:           uuid.NewString(),
		UserID:       &userID,
		Action:       action,
		ResourceType: "exchange",
		ResourceID:   &exchangeID,
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

func (s *ExchangeService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	event.ID = uuid.NewString()
	event.Timestamp = time.Now()
	_ = s.dispatcher.Publish(ctx, event)
}
