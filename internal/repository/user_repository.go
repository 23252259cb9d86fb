package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/spec-kit/bookswap-service/internal/domain"
	"github.com/spec-kit/bookswap-service/internal/persistence"
)

// ErrDuplicateEmail reports an insert that hit the unique email index,
// which happens when two registrations for the same address race past
// the pre-insert lookup.
var ErrDuplicateEmail = errors.New("email already registered")

// ProfileUpdate carries the fixed allow-list of updatable profile fields.
// SQL fragments are never derived from request keys; absent pointers
// leave the column untouched.
type ProfileUpdate struct {
	FullName   *string
	University *string
	StudentID  *string
	Phone      *string
	AvatarURL  *string
}

// UserRepository defines persistence access for user accounts.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	UpdateProfile(ctx context.Context, id string, update ProfileUpdate) error
	UpdateLastLogin(ctx context.Context, id string) error
}

type userRepository struct {
	db *persistence.Executor
}

// NewUserRepository returns a Postgres-backed implementation.
func NewUserRepository(db *persistence.Executor) UserRepository {
	return &userRepository{db: db}
}

const userColumns = `
        id, email, password_hash, full_name, university, student_id, phone,
        avatar_url, is_active, created_at, updated_at, last_login_at`

// Create inserts the user row together with its user_stats row; both
// commit or neither does.
func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	return r.db.InTx(ctx, "create user", func(q persistence.Querier) error {
		const insertUser = `
        INSERT INTO users (id, email, password_hash, full_name, university, is_active)
        VALUES (@id, @email, @passwordHash, @fullName, @university, TRUE)
        RETURNING is_active, created_at, updated_at`

		if err := q.QueryRow(ctx, "create user", insertUser, persistence.Args{
			"id":           user.ID,
			"email":        user.Email,
			"passwordHash": user.PasswordHash,
			"fullName":     user.FullName,
			"university":   user.University,
		}).Scan(&user.IsActive, &user.CreatedAt, &user.UpdatedAt); err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == "23505" {
				return ErrDuplicateEmail
			}
			return err
		}

		const insertStats = `
        INSERT INTO user_stats (user_id, experience_points, level_number)
        VALUES (@userId, 0, 1)`

		_, err := q.Exec(ctx, "create user stats", insertStats, persistence.Args{
			"userId": user.ID,
		})
		return err
	})
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	const query = `SELECT` + userColumns + ` FROM users WHERE id=@id`
	return r.fetchSingle(ctx, "get user by id", query, persistence.Args{"id": id})
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	const query = `SELECT` + userColumns + ` FROM users WHERE LOWER(email)=LOWER(@email)`
	return r.fetchSingle(ctx, "get user by email", query, persistence.Args{"email": email})
}

func (r *userRepository) fetchSingle(ctx context.Context, op, query string, args persistence.Args) (*domain.User, error) {
	var user domain.User
	if err := r.db.QueryRow(ctx, op, query, args).Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.FullName,
		&user.University,
		&user.StudentID,
		&user.Phone,
		&user.AvatarURL,
		&user.IsActive,
		&user.CreatedAt,
		&user.UpdatedAt,
		&user.LastLoginAt,
	); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) UpdateProfile(ctx context.Context, id string, update ProfileUpdate) error {
	const query = `
        UPDATE users SET
            full_name  = COALESCE(@fullName, full_name),
            university = COALESCE(@university, university),
            student_id = COALESCE(@studentId, student_id),
            phone      = COALESCE(@phone, phone),
            avatar_url = COALESCE(@avatarUrl, avatar_url),
            updated_at = NOW()
        WHERE id=@id`

	cmd, err := r.db.Exec(ctx, "update profile", query, persistence.Args{
		"id":         id,
		"fullName":   update.FullName,
		"university": update.University,
		"studentId":  update.StudentID,
		"phone":      update.Phone,
		"avatarUrl":  update.AvatarURL,
	})
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *userRepository) UpdateLastLogin(ctx context.Context, id string) error {
	const query = `UPDATE users SET last_login_at=NOW() WHERE id=@id`
	_, err := r.db.Exec(ctx, "update last login", query, persistence.Args{"id": id})
	return err
}
