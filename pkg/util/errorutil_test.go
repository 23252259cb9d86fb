package util

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5"
)

func TestToDomainErrorPassesThrough(t *testing.T) {
	t.Parallel()

	original := NewValidationError("bad input", map[string]any{"field": "email"})
	mapped := ToDomainError(original)
	if mapped.HTTPStatus != http.StatusBadRequest {
		t.Fatalf("unexpected status %d", mapped.HTTPStatus)
	}
	if mapped.Code != "VALIDATION_FAILED" {
		t.Fatalf("unexpected code %q", mapped.Code)
	}
	if mapped.Details["field"] != "email" {
		t.Fatalf("details lost: %v", mapped.Details)
	}
}

func TestToDomainErrorWrapped(t *testing.T) {
	t.Parallel()

	wrapped := fmt.Errorf("handler: %w", NewForbidden("nope"))
	mapped := ToDomainError(wrapped)
	if mapped.HTTPStatus != http.StatusForbidden {
		t.Fatalf("wrapped DomainError not unwrapped: %d", mapped.HTTPStatus)
	}
}

func TestToDomainErrorNoRows(t *testing.T) {
	t.Parallel()

	mapped := ToDomainError(fmt.Errorf("query failed: %w", pgx.ErrNoRows))
	if mapped.HTTPStatus != http.StatusNotFound {
		t.Fatalf("ErrNoRows should map to 404, got %d", mapped.HTTPStatus)
	}
}

// Raw infrastructure errors collapse to a generic message so driver
// details never reach clients.
func TestToDomainErrorGeneric(t *testing.T) {
	t.Parallel()

	cause := errors.New("connection refused to 10.0.0.5:5432")
	mapped := ToDomainError(cause)
	if mapped.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("unexpected status %d", mapped.HTTPStatus)
	}
	if mapped.Message != "internal server error" {
		t.Fatalf("internal cause leaked: %q", mapped.Message)
	}
	if !errors.Is(mapped, cause) {
		t.Fatal("cause must stay reachable for logging")
	}
}

func TestToDomainErrorNil(t *testing.T) {
	t.Parallel()

	if ToDomainError(nil) != nil {
		t.Fatal("nil error must map to nil")
	}
}
