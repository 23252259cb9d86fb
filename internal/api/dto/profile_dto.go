package dto

import (
	"time"

	"github.com/spec-kit/bookswap-service/internal/domain"
)

// StatsResponse is the public shape of a user's marketplace counters.
type StatsResponse struct {
	ExperiencePoints    int `json:"experience_points"`
	LevelNumber         int `json:"level_number"`
	BooksListed         int `json:"books_listed"`
	SuccessfulExchanges int `json:"successful_exchanges"`
}

func NewStatsResponse(s *domain.UserStats) StatsResponse {
	return StatsResponse{
		ExperiencePoints:    s.ExperiencePoints,
		LevelNumber:         s.LevelNumber,
		BooksListed:         s.BooksListed,
		SuccessfulExchanges: s.SuccessfulExchanges,
	}
}

// ActivityResponse is a single entry of the caller's activity feed.
type ActivityResponse struct {
	ID           string    `json:"id"`
	Action       string    `json:"action"`
	ResourceType string    `json:"resource_type,omitempty"`
	ResourceID   *string   `json:"resource_id,omitempty"`
	Details      *string   `json:"details,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

func NewActivityResponses(entries []domain.ActivityEntry) []ActivityResponse {
	out := make([]ActivityResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, ActivityResponse{
			ID:           e.ID,
			Action:       string(e.Action),
			ResourceType: e.ResourceType,
			ResourceID:   e.ResourceID,
			Details:      e.Details,
			CreatedAt:    e.CreatedAt,
		})
	}
	return out
}
