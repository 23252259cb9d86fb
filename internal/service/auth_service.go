package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/bookswap-service/internal/auth"
	"github.com/spec-kit/bookswap-service/internal/config"
	"github.com/spec-kit/bookswap-service/internal/domain"
	"github.com/spec-kit/bookswap-service/internal/repository"
	apperrors "github.com/spec-kit/bookswap-service/pkg/util"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// RequestMeta carries client metadata recorded with auth events.
type RequestMeta struct {
	IPAddress string
	UserAgent string
}

// RegisterInput is the registration payload.
type RegisterInput struct {
	Email      string
	Password   string
	FullName   string
	University *string
}

// AuthService coordinates registration and login flows.
type AuthService struct {
	users      repository.UserRepository
	activity   repository.ActivityRepository
	tokenMgr   *auth.TokenManager
	bcryptCost int
	logger     *zap.Logger
}

// AuthDependencies encapsulates repo requirements for the auth service.
type AuthDependencies struct {
	UserRepo     repository.UserRepository
	ActivityRepo repository.ActivityRepository
	Logger       *zap.Logger
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, deps AuthDependencies) *AuthService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		users:      deps.UserRepo,
		activity:   deps.ActivityRepo,
		tokenMgr:   auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL()),
		bcryptCost: cfg.Auth.BcryptCost,
		logger:     logger,
	}
}

// ValidatePasswordPolicy returns the list of unmet strength rules, empty
// when the password is acceptable.
func ValidatePasswordPolicy(password string) []string {
	var unmet []string
	if len(password) < 8 {
		unmet = append(unmet, "password must be at least 8 characters long")
	}

	var hasUpper, hasLower, hasDigit, hasSymbol bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			hasSymbol = true
		}
	}
	if !hasUpper {
		unmet = append(unmet, "password must contain at least one uppercase letter")
	}
	if !hasLower {
		unmet = append(unmet, "password must contain at least one lowercase letter")
	}
	if !hasDigit {
		unmet = append(unmet, "password must contain at least one number")
	}
	if !hasSymbol {
		unmet = append(unmet, "password must contain at least one special character")
	}
	return unmet
}

// Register creates a new account. Checks run in a fixed order, each a
// distinct rejection: email shape, password policy, duplicate email.
func (s *AuthService) Register(ctx context.Context, input RegisterInput, meta RequestMeta) (*domain.User, string, time.Time, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))

	if !emailPattern.MatchString(email) {
		return nil, "", time.Time{}, apperrors.NewValidationError("invalid email format", nil)
	}

	if unmet := ValidatePasswordPolicy(input.Password); len(unmet) > 0 {
		return nil, "", time.Time{}, apperrors.NewValidationError(
			"password does not meet requirements",
			map[string]any{"rules": unmet},
		)
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, "", time.Time{}, apperrors.NewValidationError("user with this email already exists", nil)
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, "", time.Time{}, err
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, "", time.Time{}, err
	}

	user := &domain.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		FullName:     strings.TrimSpace(input.FullName),
		University:   input.University,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, "", time.Time{}, apperrors.NewValidationError("user with this email already exists", nil)
		}
		return nil, "", time.Time{}, err
	}

	s.logActivity(ctx, &user.ID, domain.ActivityUserRegistered, "user", &user.ID, nil, meta)

	token, exp, err := s.tokenMgr.Issue(user.ID, user.Email)
	if err != nil {
		return nil, "", time.Time{}, err
	}

	sanitized := user.Sanitized()
	return &sanitized, token, exp, nil
}

// Login authenticates a user. Every failure collapses to a generic
// rejection externally, except a deactivated account, which gets its
// own message. The status check runs before the password comparison.
func (s *AuthService) Login(ctx context.Context, email, password string, meta RequestMeta) (*domain.User, string, time.Time, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			details := fmt.Sprintf("failed login attempt for email: %s", email)
			s.logActivity(ctx, nil, domain.ActivityLoginFailed, "auth", nil, &details, meta)
			return nil, "", time.Time{}, apperrors.NewUnauthorized("invalid email or password")
		}
		return nil, "", time.Time{}, err
	}

	if !user.IsActive {
		details := "login attempt for deactivated account"
		s.logActivity(ctx, &user.ID, domain.ActivityLoginBlocked, "auth", nil, &details, meta)
		return nil, "", time.Time{}, apperrors.NewUnauthorized("your account has been deactivated, please contact support")
	}

	if !auth.VerifyPassword(password, user.PasswordHash) {
		details := "invalid password"
		s.logActivity(ctx, &user.ID, domain.ActivityLoginFailed, "auth", nil, &details, meta)
		return nil, "", time.Time{}, apperrors.NewUnauthorized("invalid email or password")
	}

	if err := s.users.UpdateLastLogin(ctx, user.ID); err != nil {
		return nil, "", time.Time{}, err
	}

	details := "user logged in"
	s.logActivity(ctx, &user.ID, domain.ActivityLoginSuccess, "auth", nil, &details, meta)

	token, exp, err := s.tokenMgr.Issue(user.ID, user.Email)
	if err != nil {
		return nil, "", time.Time{}, err
	}

	sanitized := user.Sanitized()
	return &sanitized, token, exp, nil
}

// GetUser loads an account without its password hash.
func (s *AuthService) GetUser(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user")
		}
		return nil, err
	}
	sanitized := user.Sanitized()
	return &sanitized, nil
}

// UpdateProfile applies allow-listed profile fields.
func (s *AuthService) UpdateProfile(ctx context.Context, userID string, update repository.ProfileUpdate, meta RequestMeta) (*domain.User, error) {
	if update == (repository.ProfileUpdate{}) {
		return nil, apperrors.NewValidationError("no updates provided", nil)
	}
	if err := s.users.UpdateProfile(ctx, userID, update); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user")
		}
		return nil, err
	}

	s.logActivity(ctx, &userID, domain.ActivityProfileUpdated, "user", &userID, nil, meta)
	return s.GetUser(ctx, userID)
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

// logActivity appends an audit entry. The audit trail is best-effort
// relative to the auth decision already made; failures are logged, not
// surfaced.
func (s *AuthService) logActivity(ctx context.Context, userID *string, action domain.ActivityAction, resourceType string, resourceID, details *string, meta RequestMeta) {
	entry := &domain.ActivityEntry{
		ID:           uuid.NewString(),
		UserID:       userID,
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		Details:      details,
	}
	if meta.IPAddress != "" {
		entry.IPAddress = &meta.IPAddress
	}
	if meta.UserAgent != "" {
		entry.UserAgent = &meta.UserAgent
	}

	if err := s.activity.Append(ctx, entry); err != nil {
		s.logger.Warn("failed to append activity log",
			zap.String("action", string(action)),
			zap.Error(err))
	}
}
