package dto

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"

	"github.com/spec-kit/bookswap-service/internal/domain"
)

// RegisterRequest payload for new accounts.
type RegisterRequest struct {
	Email      string  `json:"email"`
	Password   string  `json:"password"`
	FullName   string  `json:"fullName"`
	University *string `json:"university,omitempty"`
}

// Validate checks the request shape. The auth service re-checks email
// format and password strength with its own ordered policy.
func (r RegisterRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, validation.Length(5, 100), is.Email),
		validation.Field(&r.Password, validation.Required, validation.Length(1, 100)),
		validation.Field(&r.FullName, validation.Length(0, 200)),
	)
}

// LoginRequest payload for login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate checks presence only; login does not reveal format problems.
func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required),
		validation.Field(&r.Password, validation.Required),
	)
}

// ProfileUpdateRequest carries the allow-listed profile fields.
type ProfileUpdateRequest struct {
	FullName   *string `json:"fullName,omitempty"`
	University *string `json:"university,omitempty"`
	StudentID  *string `json:"studentId,omitempty"`
	Phone      *string `json:"phone,omitempty"`
	AvatarURL  *string `json:"avatarUrl,omitempty"`
}

// Validate bounds field lengths.
func (r ProfileUpdateRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.FullName, validation.Length(1, 200)),
		validation.Field(&r.University, validation.Length(1, 200)),
		validation.Field(&r.StudentID, validation.Length(1, 50)),
		validation.Field(&r.Phone, validation.Length(5, 20)),
		validation.Field(&r.AvatarURL, validation.Length(1, 500), is.URL),
	)
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// UserResponse is the outward shape of an account. It never carries the
// password hash.
type UserResponse struct {
	ID          string     `json:"id"`
	Email       string     `json:"email"`
	FullName    string     `json:"full_name"`
	University  *string    `json:"university,omitempty"`
	StudentID   *string    `json:"student_id,omitempty"`
	Phone       *string    `json:"phone,omitempty"`
	AvatarURL   *string    `json:"avatar_url,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
}

// NewUserResponse maps a domain user.
func NewUserResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:          user.ID,
		Email:       user.Email,
		FullName:    user.FullName,
		University:  user.University,
		StudentID:   user.StudentID,
		Phone:       user.Phone,
		AvatarURL:   user.AvatarURL,
		CreatedAt:   user.CreatedAt,
		UpdatedAt:   user.UpdatedAt,
		LastLoginAt: user.LastLoginAt,
	}
}
