package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/bookswap-service/internal/domain"
	"github.com/spec-kit/bookswap-service/internal/events"
	"github.com/spec-kit/bookswap-service/internal/repository"
	apperrors "github.com/spec-kit/bookswap-service/pkg/util"
)

type bookFixture struct {
	svc        *BookService
	books      *fakeBookRepo
	exchanges  *fakeExchangeRepo
	stats      *fakeStatsRepo
	activity   *fakeActivityRepo
	dispatcher *capturingDispatcher
}

func newBookFixture() *bookFixture {
	books := newFakeBookRepo()
	exchanges := newFakeExchangeRepo(books)
	stats := newFakeStatsRepo()
	activity := &fakeActivityRepo{}
	dispatcher := &capturingDispatcher{}
	svc := NewBookService(BookDependencies{
		BookRepo:     books,
		ExchangeRepo: exchanges,
		StatsRepo:    stats,
		ActivityRepo: activity,
		Dispatcher:   dispatcher,
	})
	return &bookFixture{svc: svc, books: books, exchanges: exchanges, stats: stats, activity: activity, dispatcher: dispatcher}
}

func validBookInput() BookCreateInput {
	return BookCreateInput{
		Title:       "Structure and Interpretation of Computer Programs",
		Author:      "Abelson and Sussman",
		Condition:   domain.BookConditionGood,
		Category:    "computer-science",
		ListingType: domain.ListingTypeSell,
	}
}

func TestCreateBook(t *testing.T) {
	t.Parallel()
	f := newBookFixture()

	book, err := f.svc.CreateBook(context.Background(), "owner-1", validBookInput(), testMeta())
	require.NoError(t, err)
	assert.Equal(t, domain.BookStatusAvailable, book.Status, "new listings start available")
	assert.Equal(t, "owner-1", book.UserID)

	stats, err := f.stats.GetByUser(context.Background(), "owner-1")
	require.NoError(t, err)
	assert.Equal(t, 1, stats.BooksListed)
	assert.Equal(t, xpBookListed, stats.ExperiencePoints)

	assert.Equal(t, []events.EventType{events.EventBookCreated}, f.dispatcher.types())
	assert.Equal(t, []domain.ActivityAction{domain.ActivityBookCreated}, f.activity.actions())
}

func TestCreateBookStatsFailureNonFatal(t *testing.T) {
	t.Parallel()
	f := newBookFixture()
	f.stats.failWith = errors.New("stats store down")

	book, err := f.svc.CreateBook(context.Background(), "owner-1", validBookInput(), testMeta())
	require.NoError(t, err, "a stats outage must not block the listing")
	assert.Equal(t, domain.BookStatusAvailable, book.Status)

	stored, err := f.books.GetByID(context.Background(), book.ID)
	require.NoError(t, err)
	assert.Equal(t, book.ID, stored.ID)
}

func TestCreateBookValidation(t *testing.T) {
	t.Parallel()
	f := newBookFixture()

	missing := validBookInput()
	missing.Title = ""
	_, err := f.svc.CreateBook(context.Background(), "owner-1", missing, testMeta())
	require.Error(t, err)
	assert.Equal(t, 400, apperrors.ToDomainError(err).HTTPStatus)

	badCondition := validBookInput()
	badCondition.Condition = "mint"
	_, err = f.svc.CreateBook(context.Background(), "owner-1", badCondition, testMeta())
	require.Error(t, err)

	badListing := validBookInput()
	badListing.ListingType = "rent"
	_, err = f.svc.CreateBook(context.Background(), "owner-1", badListing, testMeta())
	require.Error(t, err)
}

func TestUpdateBookOwnership(t *testing.T) {
	t.Parallel()
	f := newBookFixture()

	book, err := f.svc.CreateBook(context.Background(), "owner-1", validBookInput(), testMeta())
	require.NoError(t, err)

	title := "Renamed"
	_, err = f.svc.UpdateBook(context.Background(), "intruder", book.ID, repository.BookUpdate{Title: &title}, testMeta())
	require.Error(t, err)
	assert.Equal(t, 403, apperrors.ToDomainError(err).HTTPStatus)

	updated, err := f.svc.UpdateBook(context.Background(), "owner-1", book.ID, repository.BookUpdate{Title: &title}, testMeta())
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Title)
}

func TestUpdateBookEmpty(t *testing.T) {
	t.Parallel()
	f := newBookFixture()

	book, err := f.svc.CreateBook(context.Background(), "owner-1", validBookInput(), testMeta())
	require.NoError(t, err)

	_, err = f.svc.UpdateBook(context.Background(), "owner-1", book.ID, repository.BookUpdate{}, testMeta())
	require.Error(t, err)
	assert.Equal(t, 400, apperrors.ToDomainError(err).HTTPStatus)
}

func TestDeleteBookBlockedByActiveExchange(t *testing.T) {
	t.Parallel()
	f := newBookFixture()

	book, err := f.svc.CreateBook(context.Background(), "owner-1", validBookInput(), testMeta())
	require.NoError(t, err)

	require.NoError(t, f.exchanges.Create(context.Background(), &domain.Exchange{
		ID:       "ex-1",
		BookID:   book.ID,
		SellerID: "owner-1",
		BuyerID:  "buyer-1",
		Status:   domain.ExchangeStatusPending,
	}))

	err = f.svc.DeleteBook(context.Background(), "owner-1", book.ID, testMeta())
	require.Error(t, err)
	assert.Equal(t, "cannot delete a book with active exchanges", apperrors.ToDomainError(err).Message)

	// A rejected exchange no longer blocks deletion.
	f.exchanges.exchanges["ex-1"].Status = domain.ExchangeStatusRejected
	require.NoError(t, f.svc.DeleteBook(context.Background(), "owner-1", book.ID, testMeta()))
	_, err = f.books.GetByID(context.Background(), book.ID)
	require.Error(t, err)
}

func TestDeleteBookForbiddenForNonOwner(t *testing.T) {
	t.Parallel()
	f := newBookFixture()

	book, err := f.svc.CreateBook(context.Background(), "owner-1", validBookInput(), testMeta())
	require.NoError(t, err)

	err = f.svc.DeleteBook(context.Background(), "someone-else", book.ID, testMeta())
	require.Error(t, err)
	assert.Equal(t, 403, apperrors.ToDomainError(err).HTTPStatus)
}

func TestGetBookCountsView(t *testing.T) {
	t.Parallel()
	f := newBookFixture()

	book, err := f.svc.CreateBook(context.Background(), "owner-1", validBookInput(), testMeta())
	require.NoError(t, err)

	_, err = f.svc.GetBook(context.Background(), book.ID)
	require.NoError(t, err)
	_, err = f.svc.GetBook(context.Background(), book.ID)
	require.NoError(t, err)

	stored, err := f.books.GetByID(context.Background(), book.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stored.ViewsCount)
}

func TestGetBookNotFound(t *testing.T) {
	t.Parallel()
	f := newBookFixture()

	_, err := f.svc.GetBook(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, 404, apperrors.ToDomainError(err).HTTPStatus)
}

func TestSearchBooksPaging(t *testing.T) {
	t.Parallel()
	f := newBookFixture()

	for i := 0; i < 3; i++ {
		_, err := f.svc.CreateBook(context.Background(), "owner-1", validBookInput(), testMeta())
		require.NoError(t, err)
	}

	result, err := f.svc.SearchBooks(context.Background(), repository.BookFilter{Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, result.Total)
	assert.Equal(t, 1, result.Page)
	assert.Equal(t, 2, result.Pages)
	assert.Equal(t, 2, result.Limit)
}
