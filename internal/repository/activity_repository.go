package repository

import (
	"context"

	"github.com/spec-kit/bookswap-service/internal/domain"
	"github.com/spec-kit/bookswap-service/internal/persistence"
)

// ActivityRepository appends to and reads the audit trail. Entries are
// append-only; there is no update or delete.
type ActivityRepository interface {
	Append(ctx context.Context, entry *domain.ActivityEntry) error
	ListByUser(ctx context.Context, userID string, limit int) ([]domain.ActivityEntry, error)
}

type activityRepository struct {
	db *persistence.Executor
}

// NewActivityRepository returns a Postgres-backed implementation.
func NewActivityRepository(db *persistence.Executor) ActivityRepository {
	return &activityRepository{db: db}
}

func (r *activityRepository) Append(ctx context.Context, entry *domain.ActivityEntry) error {
	const query = `
        INSERT INTO activity_logs (id, user_id, action, resource_type, resource_id, details, ip_address, user_agent)
        VALUES (@id, @userId, @action, @resourceType, @resourceId, @details, @ipAddress, @userAgent)
        RETURNING created_at`

	return r.db.QueryRow(ctx, "append activity", query, persistence.Args{
		"id":           entry.ID,
		"userId":       entry.UserID,
		"action":       entry.Action,
		"resourceType": entry.ResourceType,
		"resourceId":   entry.ResourceID,
		"details":      entry.Details,
		"ipAddress":    entry.IPAddress,
		"userAgent":    entry.UserAgent,
	}).Scan(&entry.CreatedAt)
}

func (r *activityRepository) ListByUser(ctx context.Context, userID string, limit int) ([]domain.ActivityEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	const query = `
        SELECT id, user_id, action, resource_type, resource_id, details, ip_address, user_agent, created_at
        FROM activity_logs WHERE user_id=@userId
        ORDER BY created_at DESC LIMIT @limit`

	rows, err := r.db.Query(ctx, "list activity", query, persistence.Args{
		"userId": userID,
		"limit":  limit,
	})
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.ActivityEntry
	for rows.Next() {
		var entry domain.ActivityEntry
		if err := rows.Scan(
			&entry.ID,
			&entry.UserID,
			&entry.Action,
			&entry.ResourceType,
			&entry.ResourceID,
			&entry.Details,
			&entry.IPAddress,
			&entry.UserAgent,
			&entry.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}
