package domain

import "time"

// UserStats tracks per-user marketplace counters and experience points.
type UserStats struct {
	UserID              string
	ExperiencePoints    int
	LevelNumber         int
	BooksListed         int
	SuccessfulExchanges int
	CreatedAt           time.Time
	UpdatedAt           time.Time
}
