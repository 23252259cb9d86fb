package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/bookswap-service/internal/domain"
	"github.com/spec-kit/bookswap-service/internal/persistence"
)

// ExchangeFilter narrows exchange listings for one user.
type ExchangeFilter struct {
	Status *domain.ExchangeStatus
	// Role is "buying", "selling" or empty for both sides.
	Role string
}

// ExchangeRepository encapsulates exchange persistence.
type ExchangeRepository interface {
	Create(ctx context.Context, exchange *domain.Exchange) error
	GetByID(ctx context.Context, id string) (*domain.Exchange, error)
	ListForUser(ctx context.Context, userID string, filter ExchangeFilter) ([]domain.Exchange, error)
	CountActiveForBook(ctx context.Context, bookID string) (int, error)
	// UpdateStatus transitions the exchange and applies the book status
	// side effect in a single transaction.
	UpdateStatus(ctx context.Context, id string, status domain.ExchangeStatus, bookID string, bookStatus *domain.BookStatus) error
}

type exchangeRepository struct {
	db    *persistence.Executor
	books BookRepository
}

// NewExchangeRepository instantiates the repository. Book status side
// effects go through the book repository inside the same transaction.
func NewExchangeRepository(db *persistence.Executor, books BookRepository) ExchangeRepository {
	return &exchangeRepository{db: db, books: books}
}

const exchangeSelect = `
        SELECT e.id, e.book_id, e.seller_id, e.buyer_id, e.status, e.message,
               e.meeting_location, e.meeting_time, e.created_at, e.updated_at,
               b.title, b.author, b.image_url,
               seller.full_name, buyer.full_name
        FROM exchanges e
        INNER JOIN books b ON e.book_id = b.id
        INNER JOIN users seller ON e.seller_id = seller.id
        INNER JOIN users buyer ON e.buyer_id = buyer.id`

func (r *exchangeRepository) Create(ctx context.Context, exchange *domain.Exchange) error {
	const query = `
        INSERT INTO exchanges (id, book_id, seller_id, buyer_id, status, message, meeting_location, meeting_time)
        VALUES (@id, @bookId, @sellerId, @buyerId, @status, @message, @meetingLocation, @meetingTime)
        RETURNING created_at, updated_at`

	return r.db.QueryRow(ctx, "create exchange", query, persistence.Args{
		"id":              exchange.ID,
		"bookId":          exchange.BookID,
		"sellerId":        exchange.SellerID,
		"buyerId":         exchange.BuyerID,
		"status":          exchange.Status,
		"message":         exchange.Message,
		"meetingLocation": exchange.MeetingLocation,
		"meetingTime":     exchange.MeetingTime,
	}).Scan(&exchange.CreatedAt, &exchange.UpdatedAt)
}

func (r *exchangeRepository) GetByID(ctx context.Context, id string) (*domain.Exchange, error) {
	query := exchangeSelect + ` WHERE e.id=@id`

	var exchange domain.Exchange
	if err := r.db.QueryRow(ctx, "get exchange", query, persistence.Args{"id": id}).Scan(
		&exchange.ID,
		&exchange.BookID,
		&exchange.SellerID,
		&exchange.BuyerID,
		&exchange.Status,
		&exchange.Message,
		&exchange.MeetingLocation,
		&exchange.MeetingTime,
		&exchange.CreatedAt,
		&exchange.UpdatedAt,
		&exchange.BookTitle,
		&exchange.BookAuthor,
		&exchange.BookImageURL,
		&exchange.SellerName,
		&exchange.BuyerName,
	); err != nil {
		return nil, err
	}
	return &exchange, nil
}

func (r *exchangeRepository) ListForUser(ctx context.Context, userID string, filter ExchangeFilter) ([]domain.Exchange, error) {
	query := exchangeSelect
	args := persistence.Args{"userId": userID}

	switch filter.Role {
	case "selling":
		query += ` WHERE e.seller_id=@userId`
	case "buying":
		query += ` WHERE e.buyer_id=@userId`
	default:
		query += ` WHERE (e.seller_id=@userId OR e.buyer_id=@userId)`
	}

	if filter.Status != nil {
		query += ` AND e.status=@status`
		args["status"] = *filter.Status
	}
	query += ` ORDER BY e.created_at DESC`

	rows, err := r.db.Query(ctx, "list exchanges", query, args)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Exchange
	for rows.Next() {
		var exchange domain.Exchange
		if err := rows.Scan(
			&exchange.ID,
			&exchange.BookID,
			&exchange.SellerID,
			&exchange.BuyerID,
			&exchange.Status,
			&exchange.Message,
			&exchange.MeetingLocation,
			&exchange.MeetingTime,
			&exchange.CreatedAt,
			&exchange.UpdatedAt,
			&exchange.BookTitle,
			&exchange.BookAuthor,
			&exchange.BookImageURL,
			&exchange.SellerName,
			&exchange.BuyerName,
		); err != nil {
			return nil, err
		}
		result = append(result, exchange)
	}
	return result, rows.Err()
}

func (r *exchangeRepository) CountActiveForBook(ctx context.Context, bookID string) (int, error) {
	const query = `
        SELECT COUNT(*) FROM exchanges
        WHERE book_id=@bookId AND status IN ('pending', 'accepted')`

	var count int
	if err := r.db.QueryRow(ctx, "count active exchanges", query, persistence.Args{"bookId": bookID}).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *exchangeRepository) UpdateStatus(ctx context.Context, id string, status domain.ExchangeStatus, bookID string, bookStatus *domain.BookStatus) error {
	return r.db.InTx(ctx, "update exchange status", func(q persistence.Querier) error {
		const update = `UPDATE exchanges SET status=@status, updated_at=NOW() WHERE id=@id`
		cmd, err := q.Exec(ctx, "update exchange status", update, persistence.Args{
			"id":     id,
			"status": status,
		})
		if err != nil {
			return err
		}
		if cmd.RowsAffected() == 0 {
			return pgx.ErrNoRows
		}

		if bookStatus == nil {
			return nil
		}
		return r.books.SetStatus(ctx, q, bookID, *bookStatus)
	})
}
