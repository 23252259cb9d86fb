package repository

import (
	"context"

	"github.com/spec-kit/bookswap-service/internal/domain"
	"github.com/spec-kit/bookswap-service/internal/persistence"
)

// StatsRepository tracks per-user marketplace counters. Rows are created
// alongside the user account at registration.
type StatsRepository interface {
	GetByUser(ctx context.Context, userID string) (*domain.UserStats, error)
	AddExperience(ctx context.Context, userID string, points int) error
	IncrementBooksListed(ctx context.Context, userID string) error
	IncrementExchanges(ctx context.Context, userID string) error
}

type statsRepository struct {
	db *persistence.Executor
}

// NewStatsRepository instantiates the repository.
func NewStatsRepository(db *persistence.Executor) StatsRepository {
	return &statsRepository{db: db}
}

func (r *statsRepository) GetByUser(ctx context.Context, userID string) (*domain.UserStats, error) {
	const query = `
        SELECT user_id, experience_points, level_number, books_listed,
               successful_exchanges, created_at, updated_at
        FROM user_stats WHERE user_id=@userId`

	var stats domain.UserStats
	if err := r.db.QueryRow(ctx, "get user stats", query, persistence.Args{"userId": userID}).Scan(
		&stats.UserID,
		&stats.ExperiencePoints,
		&stats.LevelNumber,
		&stats.BooksListed,
		&stats.SuccessfulExchanges,
		&stats.CreatedAt,
		&stats.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &stats, nil
}

// AddExperience awards points and recomputes the level. One level per
// hundred points, starting at level 1.
func (r *statsRepository) AddExperience(ctx context.Context, userID string, points int) error {
	const query = `
        UPDATE user_stats SET
            experience_points = experience_points + @points,
            level_number = (experience_points + @points) / 100 + 1,
            updated_at = NOW()
        WHERE user_id=@userId`

	_, err := r.db.Exec(ctx, "add experience", query, persistence.Args{
		"userId": userID,
		"points": points,
	})
	return err
}

func (r *statsRepository) IncrementBooksListed(ctx context.Context, userID string) error {
	const query = `
        UPDATE user_stats SET books_listed = books_listed + 1, updated_at = NOW()
        WHERE user_id=@userId`

	_, err := r.db.Exec(ctx, "increment books listed", query, persistence.Args{"userId": userID})
	return err
}

// IncrementExchanges bumps the completed-exchange counter.
func (r *statsRepository) IncrementExchanges(ctx context.Context, userID string) error {
	const query = `
        UPDATE user_stats SET successful_exchanges = successful_exchanges + 1, updated_at = NOW()
        WHERE user_id=@userId`

	_, err := r.db.Exec(ctx, "increment exchanges", query, persistence.Args{"userId": userID})
	return err
}
