package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/bookswap-service/internal/repository"
)

// filterApp routes a request through parseBookFilter and captures the
// result.
func filterApp(captured *repository.BookFilter) *fiber.App {
	app := fiber.New()
	app.Get("/books", func(c *fiber.Ctx) error {
		filter, err := parseBookFilter(c)
		if err != nil {
			return c.SendStatus(http.StatusBadRequest)
		}
		*captured = filter
		return c.SendStatus(http.StatusOK)
	})
	return app
}

func TestParseBookFilterClampsOversizedLimit(t *testing.T) {
	t.Parallel()

	var filter repository.BookFilter
	app := filterApp(&filter)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/books?limit=100&page=2", nil), -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	assert.Equal(t, repository.MaxSearchLimit, filter.Limit)
	assert.Equal(t, repository.MaxSearchLimit, filter.Offset, "page 2 must start right after page 1's rows")
}

func TestParseBookFilterDefaults(t *testing.T) {
	t.Parallel()

	var filter repository.BookFilter
	app := filterApp(&filter)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/books", nil), -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	assert.Equal(t, defaultPageLimit, filter.Limit)
	assert.Zero(t, filter.Offset)
}

func TestParseBookFilterSmallLimitKept(t *testing.T) {
	t.Parallel()

	var filter repository.BookFilter
	app := filterApp(&filter)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/books?limit=5&page=3", nil), -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	assert.Equal(t, 5, filter.Limit)
	assert.Equal(t, 10, filter.Offset)
}

func TestParseBookFilterRejectsBadPaging(t *testing.T) {
	t.Parallel()

	var filter repository.BookFilter
	app := filterApp(&filter)

	for _, target := range []string{
		"/books?limit=0",
		"/books?limit=abc",
		"/books?page=0",
		"/books?page=-1",
	} {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, target, nil), -1)
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, target)
	}
}
