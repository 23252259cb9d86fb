package domain

import "time"

// ActivityAction identifies an auditable event.
type ActivityAction string

const (
	ActivityUserRegistered    ActivityAction = "user_registered"
	ActivityLoginSuccess      ActivityAction = "login_success"
	ActivityLoginFailed       ActivityAction = "login_failed"
	ActivityLoginBlocked      ActivityAction = "login_blocked"
	ActivityBookCreated       ActivityAction = "book_created"
	ActivityBookUpdated       ActivityAction = "book_updated"
	ActivityBookDeleted       ActivityAction = "book_deleted"
	ActivityExchangeRequested ActivityAction = "exchange_requested"
	ActivityExchangeUpdated   ActivityAction = "exchange_updated"
	ActivityProfileUpdated    ActivityAction = "profile_updated"
)

// ActivityEntry is an append-only audit record. Entries are never mutated
// or deleted by the service.
type ActivityEntry struct {
	ID           string
	UserID       *string
	Action       ActivityAction
	ResourceType string
	ResourceID   *string
	Details      *string
	IPAddress    *string
	UserAgent    *string
	CreatedAt    time.Time
}
