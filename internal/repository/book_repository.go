package repository

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/bookswap-service/internal/domain"
	"github.com/spec-kit/bookswap-service/internal/persistence"
)

// Search page bounds, shared with the HTTP layer so the offset a
// handler computes always matches the limit the query runs with.
const (
	DefaultSearchLimit = 12
	MaxSearchLimit     = 50
)

// BookFilter captures marketplace search parameters.
type BookFilter struct {
	Category    *string
	Condition   *domain.BookCondition
	ListingType *domain.ListingType
	MinPrice    *float64
	MaxPrice    *float64
	SearchTerm  *string
	University  *string
	Limit       int
	Offset      int
}

// BookUpdate carries the fixed allow-list of updatable listing fields.
type BookUpdate struct {
	Title       *string
	Author      *string
	ISBN        *string
	Description *string
	Condition   *domain.BookCondition
	Category    *string
	Price       *float64
	ListingType *domain.ListingType
	ImageURL    *string
	Location    *string
}

// BookRepository encapsulates book listing persistence.
type BookRepository interface {
	Create(ctx context.Context, book *domain.Book) error
	Update(ctx context.Context, id string, update BookUpdate) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Book, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Book, error)
	Search(ctx context.Context, filter BookFilter) ([]domain.Book, int, error)
	IncrementViews(ctx context.Context, id string) error
	SetStatus(ctx context.Context, q persistence.Querier, id string, status domain.BookStatus) error
}

type bookRepository struct {
	db *persistence.Executor
}

// NewBookRepository instantiates the repository.
func NewBookRepository(db *persistence.Executor) BookRepository {
	return &bookRepository{db: db}
}

const bookSelect = `
        SELECT b.id, b.user_id, b.title, b.author, b.isbn, b.description,
               b.condition, b.category, b.price, b.listing_type, b.status,
               b.image_url, b.location, b.views_count, b.created_at, b.updated_at,
               u.full_name, u.avatar_url
        FROM books b
        INNER JOIN users u ON b.user_id = u.id`

func (r *bookRepository) Create(ctx context.Context, book *domain.Book) error {
	const query = `
        INSERT INTO books (id, user_id, title, author, isbn, description, condition,
                           category, price, listing_type, status, image_url, location)
        VALUES (@id, @userId, @title, @author, @isbn, @description, @condition,
                @category, @price, @listingType, @status, @imageUrl, @location)
        RETURNING views_count, created_at, updated_at`

	return r.db.QueryRow(ctx, "create book", query, persistence.Args{
		"id":          book.ID,
		"userId":      book.UserID,
		"title":       book.Title,
		"author":      book.Author,
		"isbn":        book.ISBN,
		"description": book.Description,
		"condition":   book.Condition,
		"category":    book.Category,
		"price":       book.Price,
		"listingType": book.ListingType,
		"status":      book.Status,
		"imageUrl":    book.ImageURL,
		"location":    book.Location,
	}).Scan(&book.ViewsCount, &book.CreatedAt, &book.UpdatedAt)
}

func (r *bookRepository) Update(ctx context.Context, id string, update BookUpdate) error {
	const query = `
        UPDATE books SET
            title        = COALESCE(@title, title),
            author       = COALESCE(@author, author),
            isbn         = COALESCE(@isbn, isbn),
            description  = COALESCE(@description, description),
            condition    = COALESCE(@condition, condition),
            category     = COALESCE(@category, category),
            price        = COALESCE(@price, price),
            listing_type = COALESCE(@listingType, listing_type),
            image_url    = COALESCE(@imageUrl, image_url),
            location     = COALESCE(@location, location),
            updated_at   = NOW()
        WHERE id=@id`

	cmd, err := r.db.Exec(ctx, "update book", query, persistence.Args{
		"id":          id,
		"title":       update.Title,
		"author":      update.Author,
		"isbn":        update.ISBN,
		"description": update.Description,
		"condition":   update.Condition,
		"category":    update.Category,
		"price":       update.Price,
		"listingType": update.ListingType,
		"imageUrl":    update.ImageURL,
		"location":    update.Location,
	})
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *bookRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.db.Exec(ctx, "delete book", `DELETE FROM books WHERE id=@id`, persistence.Args{"id": id})
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *bookRepository) GetByID(ctx context.Context, id string) (*domain.Book, error) {
	query := bookSelect + ` WHERE b.id=@id`

	var book domain.Book
	if err := r.db.QueryRow(ctx, "get book", query, persistence.Args{"id": id}).Scan(
		&book.ID,
		&book.UserID,
		&book.Title,
		&book.Author,
		&book.ISBN,
		&book.Description,
		&book.Condition,
		&book.Category,
		&book.Price,
		&book.ListingType,
		&book.Status,
		&book.ImageURL,
		&book.Location,
		&book.ViewsCount,
		&book.CreatedAt,
		&book.UpdatedAt,
		&book.OwnerName,
		&book.OwnerAvatar,
	); err != nil {
		return nil, err
	}
	return &book, nil
}

func (r *bookRepository) ListByUser(ctx context.Context, userID string) ([]domain.Book, error) {
	query := bookSelect + ` WHERE b.user_id=@userId ORDER BY b.created_at DESC`

	rows, err := r.db.Query(ctx, "list books by user", query, persistence.Args{"userId": userID})
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanBooks(rows)
}

// Search lists available books matching the filter, returning rows and
// the unpaginated total.
func (r *bookRepository) Search(ctx context.Context, filter BookFilter) ([]domain.Book, int, error) {
	clauses := []string{"b.status = 'available'"}
	args := persistence.Args{}

	if filter.Category != nil {
		clauses = append(clauses, "b.category = @category")
		args["category"] = *filter.Category
	}
	if filter.Condition != nil {
		clauses = append(clauses, "b.condition = @condition")
		args["condition"] = *filter.Condition
	}
	if filter.ListingType != nil {
		clauses = append(clauses, "b.listing_type = @listingType")
		args["listingType"] = *filter.ListingType
	}
	if filter.MinPrice != nil {
		clauses = append(clauses, "b.price >= @minPrice")
		args["minPrice"] = *filter.MinPrice
	}
	if filter.MaxPrice != nil {
		clauses = append(clauses, "b.price <= @maxPrice")
		args["maxPrice"] = *filter.MaxPrice
	}
	if filter.University != nil {
		clauses = append(clauses, "u.university = @university")
		args["university"] = *filter.University
	}
	if filter.SearchTerm != nil && strings.TrimSpace(*filter.SearchTerm) != "" {
		clauses = append(clauses, "(b.title ILIKE @search OR b.author ILIKE @search OR b.description ILIKE @search)")
		args["search"] = "%" + strings.TrimSpace(*filter.SearchTerm) + "%"
	}

	where := strings.Join(clauses, " AND ")

	limit := filter.Limit
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	if limit > MaxSearchLimit {
		limit = MaxSearchLimit
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	countQuery := `SELECT COUNT(*) FROM books b INNER JOIN users u ON b.user_id = u.id WHERE ` + where
	var total int
	if err := r.db.QueryRow(ctx, "count books", countQuery, args).Scan(&total); err != nil {
		return nil, 0, err
	}

	listArgs := persistence.Args{"limit": limit, "offset": offset}
	for k, v := range args {
		listArgs[k] = v
	}
	listQuery := bookSelect + ` WHERE ` + where + `
        ORDER BY b.created_at DESC LIMIT @limit OFFSET @offset`

	rows, err := r.db.Query(ctx, "search books", listQuery, listArgs)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	books, err := scanBooks(rows)
	if err != nil {
		return nil, 0, err
	}
	return books, total, nil
}

func (r *bookRepository) IncrementViews(ctx context.Context, id string) error {
	const query = `UPDATE books SET views_count = views_count + 1 WHERE id=@id`
	_, err := r.db.Exec(ctx, "increment book views", query, persistence.Args{"id": id})
	return err
}

// SetStatus updates availability, optionally inside a caller-owned
// transaction when q is non-nil.
func (r *bookRepository) SetStatus(ctx context.Context, q persistence.Querier, id string, status domain.BookStatus) error {
	if q == nil {
		q = r.db
	}
	const query = `UPDATE books SET status=@status, updated_at=NOW() WHERE id=@id`
	cmd, err := q.Exec(ctx, "set book status", query, persistence.Args{"id": id, "status": status})
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func scanBooks(rows pgx.Rows) ([]domain.Book, error) {
	var result []domain.Book
	for rows.Next() {
		var book domain.Book
		if err := rows.Scan(
			&book.ID,
			&book.UserID,
			&book.Title,
			&book.Author,
			&book.ISBN,
			&book.Description,
			&book.Condition,
			&book.Category,
			&book.Price,
			&book.ListingType,
			&book.Status,
			&book.ImageURL,
			&book.Location,
			&book.ViewsCount,
			&book.CreatedAt,
			&book.UpdatedAt,
			&book.OwnerName,
			&book.OwnerAvatar,
		); err != nil {
			return nil, err
		}
		result = append(result, book)
	}
	return result, rows.Err()
}
