package domain

import "time"

// User is the domain model for a student account.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	FullName     string
	University   *string
	StudentID    *string
	Phone        *string
	AvatarURL    *string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
	LastLoginAt  *time.Time
}

// Sanitized returns a copy safe to hand back to callers: the password
// hash never leaves the credential store boundary.
func (u User) Sanitized() User {
	u.PasswordHash = ""
	return u
}
