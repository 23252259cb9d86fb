package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/bookswap-service/internal/domain"
	"github.com/spec-kit/bookswap-service/internal/events"
	"github.com/spec-kit/bookswap-service/internal/persistence"
	"github.com/spec-kit/bookswap-service/internal/repository"
)

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*domain.User
	// createErr makes the next Create fail when set.
	createErr error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]*domain.User{}}
}

func (f *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	user.IsActive = true
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	clone := *user
	f.users[user.ID] = &clone
	return nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *user
	return &clone, nil
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, user := range f.users {
		if strings.EqualFold(user.Email, email) {
			clone := *user
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeUserRepo) UpdateProfile(_ context.Context, id string, update repository.ProfileUpdate) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok {
		return pgx.ErrNoRows
	}
	if update.FullName != nil {
		user.FullName = *update.FullName
	}
	if update.University != nil {
		user.University = update.University
	}
	if update.StudentID != nil {
		user.StudentID = update.StudentID
	}
	if update.Phone != nil {
		user.Phone = update.Phone
	}
	if update.AvatarURL != nil {
		user.AvatarURL = update.AvatarURL
	}
	user.UpdatedAt = time.Now()
	return nil
}

func (f *fakeUserRepo) UpdateLastLogin(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok {
		return pgx.ErrNoRows
	}
	now := time.Now()
	user.LastLoginAt = &now
	return nil
}

type fakeActivityRepo struct {
	mu      sync.Mutex
	entries []domain.ActivityEntry
}

func (f *fakeActivityRepo) Append(_ context.Context, entry *domain.ActivityEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	entry.CreatedAt = time.Now()
	f.entries = append(f.entries, *entry)
	return nil
}

func (f *fakeActivityRepo) ListByUser(_ context.Context, userID string, limit int) ([]domain.ActivityEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.ActivityEntry
	for _, e := range f.entries {
		if e.UserID != nil && *e.UserID == userID {
			out = append(out, e)
		}
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (f *fakeActivityRepo) actions() []domain.ActivityAction {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.ActivityAction, 0, len(f.entries))
	for _, e := range f.entries {
		out = append(out, e.Action)
	}
	return out
}

func (f *fakeActivityRepo) last() *domain.ActivityEntry {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.entries) == 0 {
		return nil
	}
	entry := f.entries[len(f.entries)-1]
	return &entry
}

type fakeBookRepo struct {
	mu    sync.Mutex
	books map[string]*domain.Book
}

func newFakeBookRepo() *fakeBookRepo {
	return &fakeBookRepo{books: map[string]*domain.Book{}}
}

func (f *fakeBookRepo) Create(_ context.Context, book *domain.Book) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	book.CreatedAt = time.Now()
	book.UpdatedAt = book.CreatedAt
	clone := *book
	f.books[book.ID] = &clone
	return nil
}

func (f *fakeBookRepo) Update(_ context.Context, id string, update repository.BookUpdate) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	book, ok := f.books[id]
	if !ok {
		return pgx.ErrNoRows
	}
	if update.Title != nil {
		book.Title = *update.Title
	}
	if update.Author != nil {
		book.Author = *update.Author
	}
	if update.Condition != nil {
		book.Condition = *update.Condition
	}
	if update.Category != nil {
		book.Category = *update.Category
	}
	if update.Price != nil {
		book.Price = update.Price
	}
	if update.ListingType != nil {
		book.ListingType = *update.ListingType
	}
	book.UpdatedAt = time.Now()
	return nil
}

func (f *fakeBookRepo) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.books[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(f.books, id)
	return nil
}

func (f *fakeBookRepo) GetByID(_ context.Context, id string) (*domain.Book, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	book, ok := f.books[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *book
	return &clone, nil
}

func (f *fakeBookRepo) ListByUser(_ context.Context, userID string) ([]domain.Book, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Book
	for _, book := range f.books {
		if book.UserID == userID {
			out = append(out, *book)
		}
	}
	return out, nil
}

func (f *fakeBookRepo) Search(_ context.Context, filter repository.BookFilter) ([]domain.Book, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Book
	for _, book := range f.books {
		if book.Status != domain.BookStatusAvailable {
			continue
		}
		if filter.Category != nil && book.Category != *filter.Category {
			continue
		}
		out = append(out, *book)
	}
	return out, len(out), nil
}

func (f *fakeBookRepo) IncrementViews(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if book, ok := f.books[id]; ok {
		book.ViewsCount++
	}
	return nil
}

func (f *fakeBookRepo) SetStatus(_ context.Context, _ persistence.Querier, id string, status domain.BookStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	book, ok := f.books[id]
	if !ok {
		return pgx.ErrNoRows
	}
	book.Status = status
	return nil
}

type fakeExchangeRepo struct {
	mu        sync.Mutex
	exchanges map[string]*domain.Exchange
	books     *fakeBookRepo
}

func newFakeExchangeRepo(books *fakeBookRepo) *fakeExchangeRepo {
	return &fakeExchangeRepo{exchanges: map[string]*domain.Exchange{}, books: books}
}

func (f *fakeExchangeRepo) Create(_ context.Context, exchange *domain.Exchange) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	exchange.CreatedAt = time.Now()
	exchange.UpdatedAt = exchange.CreatedAt
	clone := *exchange
	f.exchanges[exchange.ID] = &clone
	return nil
}

func (f *fakeExchangeRepo) GetByID(_ context.Context, id string) (*domain.Exchange, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	exchange, ok := f.exchanges[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *exchange
	return &clone, nil
}

func (f *fakeExchangeRepo) ListForUser(_ context.Context, userID string, filter repository.ExchangeFilter) ([]domain.Exchange, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Exchange
	for _, e := range f.exchanges {
		switch filter.Role {
		case "buying":
			if e.BuyerID != userID {
				continue
			}
		case "selling":
			if e.SellerID != userID {
				continue
			}
		default:
			if !e.IsParty(userID) {
				continue
			}
		}
		if filter.Status != nil && e.Status != *filter.Status {
			continue
		}
		out = append(out, *e)
	}
	return out, nil
}

func (f *fakeExchangeRepo) CountActiveForBook(_ context.Context, bookID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	count := 0
	for _, e := range f.exchanges {
		if e.BookID == bookID &&
			(e.Status == domain.ExchangeStatusPending || e.Status == domain.ExchangeStatusAccepted) {
			count++
		}
	}
	return count, nil
}

func (f *fakeExchangeRepo) UpdateStatus(ctx context.Context, id string, status domain.ExchangeStatus, bookID string, bookStatus *domain.BookStatus) error {
	f.mu.Lock()
	exchange, ok := f.exchanges[id]
	if !ok {
		f.mu.Unlock()
		return pgx.ErrNoRows
	}
	exchange.Status = status
	exchange.UpdatedAt = time.Now()
	f.mu.Unlock()

	if bookStatus != nil && f.books != nil {
		return f.books.SetStatus(ctx, nil, bookID, *bookStatus)
	}
	return nil
}

type fakeStatsRepo struct {
	mu          sync.Mutex
	xp          map[string]int
	booksListed map[string]int
	exchanges   map[string]int
	// failWith makes every counter update fail when set.
	failWith error
}

func newFakeStatsRepo() *fakeStatsRepo {
	return &fakeStatsRepo{
		xp:          map[string]int{},
		booksListed: map[string]int{},
		exchanges:   map[string]int{},
	}
}

func (f *fakeStatsRepo) GetByUser(_ context.Context, userID string) (*domain.UserStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return &domain.UserStats{
		UserID:              userID,
		ExperiencePoints:    f.xp[userID],
		LevelNumber:         f.xp[userID]/100 + 1,
		BooksListed:         f.booksListed[userID],
		SuccessfulExchanges: f.exchanges[userID],
	}, nil
}

func (f *fakeStatsRepo) AddExperience(_ context.Context, userID string, points int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return f.failWith
	}
	f.xp[userID] += points
	return nil
}

func (f *fakeStatsRepo) IncrementBooksListed(_ context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return f.failWith
	}
	f.booksListed[userID]++
	return nil
}

func (f *fakeStatsRepo) IncrementExchanges(_ context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return f.failWith
	}
	f.exchanges[userID]++
	return nil
}

type fakeMessageRepo struct {
	mu       sync.Mutex
	messages []domain.Message
	reads    []string
}

func (f *fakeMessageRepo) Create(_ context.Context, message *domain.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	message.CreatedAt = time.Now()
	f.messages = append(f.messages, *message)
	return nil
}

func (f *fakeMessageRepo) ListByExchange(_ context.Context, exchangeID string) ([]domain.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Message
	for _, m := range f.messages {
		if m.ExchangeID == exchangeID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeMessageRepo) MarkRead(_ context.Context, exchangeID, readerID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reads = append(f.reads, exchangeID+":"+readerID)
	for i := range f.messages {
		if f.messages[i].ExchangeID == exchangeID && f.messages[i].SenderID != readerID {
			f.messages[i].IsRead = true
		}
	}
	return nil
}

func (f *fakeMessageRepo) CountUnread(_ context.Context, userID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	count := 0
	for _, m := range f.messages {
		if !m.IsRead && m.SenderID != userID {
			count++
		}
	}
	return count, nil
}

type capturingDispatcher struct {
	mu     sync.Mutex
	events []events.Event
}

func (d *capturingDispatcher) Publish(_ context.Context, event events.Event) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, event)
	return nil
}

func (d *capturingDispatcher) Subscribe(events.EventType, events.EventHandler) {}

func (d *capturingDispatcher) types() []events.EventType {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]events.EventType, 0, len(d.events))
	for _, e := range d.events {
		out = append(out, e.Type)
	}
	return out
}
