package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/bookswap-service/internal/auth"
	"github.com/spec-kit/bookswap-service/internal/config"
	"github.com/spec-kit/bookswap-service/internal/domain"
	"github.com/spec-kit/bookswap-service/internal/repository"
	apperrors "github.com/spec-kit/bookswap-service/pkg/util"
)

func newTestAuthService() (*AuthService, *fakeUserRepo, *fakeActivityRepo) {
	users := newFakeUserRepo()
	activity := &fakeActivityRepo{}
	cfg := config.Config{
		Auth: config.AuthConfig{
			JWTSecret:     "test-secret",
			TokenTTLHours: 1,
			BcryptCost:    bcrypt.MinCost,
		},
	}
	svc := NewAuthService(cfg, AuthDependencies{UserRepo: users, ActivityRepo: activity})
	return svc, users, activity
}

func testMeta() RequestMeta {
	return RequestMeta{IPAddress: "203.0.113.9", UserAgent: "test-agent"}
}

func TestRegisterSuccess(t *testing.T) {
	t.Parallel()
	svc, users, activity := newTestAuthService()

	user, token, _, err := svc.Register(context.Background(), RegisterInput{
		Email:    "Alice@Example.EDU",
		Password: "Sw0rdfish!",
		FullName: "Alice Liddell",
	}, testMeta())
	require.NoError(t, err)

	assert.Equal(t, "alice@example.edu", user.Email, "email must be normalized")
	assert.Empty(t, user.PasswordHash, "hash must not leave the service")
	assert.True(t, user.IsActive)

	stored, err := users.GetByEmail(context.Background(), "alice@example.edu")
	require.NoError(t, err)
	assert.NotEmpty(t, stored.PasswordHash)
	assert.NotEqual(t, "Sw0rdfish!", stored.PasswordHash)
	assert.True(t, auth.VerifyPassword("Sw0rdfish!", stored.PasswordHash))

	claims, err := svc.TokenManager().Verify(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)

	require.Equal(t, []domain.ActivityAction{domain.ActivityUserRegistered}, activity.actions())
	entry := activity.last()
	require.NotNil(t, entry.IPAddress)
	assert.Equal(t, "203.0.113.9", *entry.IPAddress)
}

func TestRegisterInvalidEmail(t *testing.T) {
	t.Parallel()
	svc, _, _ := newTestAuthService()

	for _, email := range []string{"", "no-at-sign", "a@b", "spaces in@example.edu"} {
		_, _, _, err := svc.Register(context.Background(), RegisterInput{
			Email:    email,
			Password: "Sw0rdfish!",
			FullName: "X",
		}, testMeta())
		require.Error(t, err, "email %q", email)
		domainErr := apperrors.ToDomainError(err)
		assert.Equal(t, 400, domainErr.HTTPStatus)
		assert.Equal(t, "invalid email format", domainErr.Message)
	}
}

func TestRegisterWeakPasswordListsRules(t *testing.T) {
	t.Parallel()
	svc, _, _ := newTestAuthService()

	_, _, _, err := svc.Register(context.Background(), RegisterInput{
		Email:    "bob@example.edu",
		Password: "abc",
		FullName: "Bob",
	}, testMeta())
	require.Error(t, err)

	domainErr := apperrors.ToDomainError(err)
	assert.Equal(t, 400, domainErr.HTTPStatus)
	rules, ok := domainErr.Details["rules"].([]string)
	require.True(t, ok, "details must carry the unmet rules")
	assert.Len(t, rules, 4)
	assert.Contains(t, rules, "password must be at least 8 characters long")
	assert.Contains(t, rules, "password must contain at least one uppercase letter")
	assert.Contains(t, rules, "password must contain at least one number")
	assert.Contains(t, rules, "password must contain at least one special character")
}

func TestRegisterDuplicateEmail(t *testing.T) {
	t.Parallel()
	svc, _, _ := newTestAuthService()

	input := RegisterInput{Email: "carol@example.edu", Password: "Sw0rdfish!", FullName: "Carol"}
	_, _, _, err := svc.Register(context.Background(), input, testMeta())
	require.NoError(t, err)

	// Same address in a different case is still a duplicate.
	input.Email = "CAROL@example.edu"
	_, _, _, err = svc.Register(context.Background(), input, testMeta())
	require.Error(t, err)
	domainErr := apperrors.ToDomainError(err)
	assert.Equal(t, 400, domainErr.HTTPStatus)
	assert.Equal(t, "user with this email already exists", domainErr.Message)
}

func TestRegisterDuplicateEmailInsertRace(t *testing.T) {
	t.Parallel()
	svc, users, _ := newTestAuthService()

	// The pre-insert lookup sees nothing, but the insert itself loses
	// the race and reports the unique-index violation.
	users.createErr = repository.ErrDuplicateEmail

	_, _, _, err := svc.Register(context.Background(), RegisterInput{
		Email:    "erin@example.edu",
		Password: "Sw0rdfish!",
		FullName: "Erin",
	}, testMeta())
	require.Error(t, err)
	domainErr := apperrors.ToDomainError(err)
	assert.Equal(t, 400, domainErr.HTTPStatus)
	assert.Equal(t, "user with this email already exists", domainErr.Message)
}

func TestLoginSuccess(t *testing.T) {
	t.Parallel()
	svc, users, activity := newTestAuthService()

	_, _, _, err := svc.Register(context.Background(), RegisterInput{
		Email:    "dave@example.edu",
		Password: "Sw0rdfish!",
		FullName: "Dave",
	}, testMeta())
	require.NoError(t, err)

	user, token, _, err := svc.Login(context.Background(), "Dave@example.edu", "Sw0rdfish!", testMeta())
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Empty(t, user.PasswordHash)

	stored, err := users.GetByID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.NotNil(t, stored.LastLoginAt, "successful login must stamp last_login_at")

	assert.Equal(t, []domain.ActivityAction{
		domain.ActivityUserRegistered,
		domain.ActivityLoginSuccess,
	}, activity.actions())
}

func TestLoginUnknownEmail(t *testing.T) {
	t.Parallel()
	svc, _, activity := newTestAuthService()

	_, _, _, err := svc.Login(context.Background(), "ghost@example.edu", "whatever", testMeta())
	require.Error(t, err)
	domainErr := apperrors.ToDomainError(err)
	assert.Equal(t, 401, domainErr.HTTPStatus)
	assert.Equal(t, "invalid email or password", domainErr.Message)

	entry := activity.last()
	require.NotNil(t, entry)
	assert.Equal(t, domain.ActivityLoginFailed, entry.Action)
	assert.Nil(t, entry.UserID, "no account to attribute the failure to")
}

func TestLoginWrongPassword(t *testing.T) {
	t.Parallel()
	svc, users, activity := newTestAuthService()

	reg, _, _, err := svc.Register(context.Background(), RegisterInput{
		Email:    "erin@example.edu",
		Password: "Sw0rdfish!",
		FullName: "Erin",
	}, testMeta())
	require.NoError(t, err)

	_, _, _, err = svc.Login(context.Background(), "erin@example.edu", "wrong-pass", testMeta())
	require.Error(t, err)
	domainErr := apperrors.ToDomainError(err)
	assert.Equal(t, 401, domainErr.HTTPStatus)
	assert.Equal(t, "invalid email or password", domainErr.Message,
		"wrong password and unknown email must be indistinguishable")

	stored, err := users.GetByID(context.Background(), reg.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.LastLoginAt, "failed login must not stamp last_login_at")

	entry := activity.last()
	require.NotNil(t, entry)
	assert.Equal(t, domain.ActivityLoginFailed, entry.Action)
}

func TestLoginDeactivatedAccount(t *testing.T) {
	t.Parallel()
	svc, users, activity := newTestAuthService()

	reg, _, _, err := svc.Register(context.Background(), RegisterInput{
		Email:    "frank@example.edu",
		Password: "Sw0rdfish!",
		FullName: "Frank",
	}, testMeta())
	require.NoError(t, err)
	users.users[reg.ID].IsActive = false

	// The status check runs before the password comparison, so even the
	// correct password gets the deactivated response.
	_, _, _, err = svc.Login(context.Background(), "frank@example.edu", "Sw0rdfish!", testMeta())
	require.Error(t, err)
	domainErr := apperrors.ToDomainError(err)
	assert.Equal(t, 401, domainErr.HTTPStatus)
	assert.Equal(t, "your account has been deactivated, please contact support", domainErr.Message)

	entry := activity.last()
	require.NotNil(t, entry)
	assert.Equal(t, domain.ActivityLoginBlocked, entry.Action)
}

func TestUpdateProfile(t *testing.T) {
	t.Parallel()
	svc, _, activity := newTestAuthService()

	reg, _, _, err := svc.Register(context.Background(), RegisterInput{
		Email:    "gina@example.edu",
		Password: "Sw0rdfish!",
		FullName: "Gina",
	}, testMeta())
	require.NoError(t, err)

	phone := "+1-555-0100"
	updated, err := svc.UpdateProfile(context.Background(), reg.ID, repository.ProfileUpdate{Phone: &phone}, testMeta())
	require.NoError(t, err)
	require.NotNil(t, updated.Phone)
	assert.Equal(t, phone, *updated.Phone)
	assert.Empty(t, updated.PasswordHash)

	entry := activity.last()
	require.NotNil(t, entry)
	assert.Equal(t, domain.ActivityProfileUpdated, entry.Action)
}

func TestUpdateProfileEmpty(t *testing.T) {
	t.Parallel()
	svc, _, _ := newTestAuthService()

	_, err := svc.UpdateProfile(context.Background(), "any-id", repository.ProfileUpdate{}, testMeta())
	require.Error(t, err)
	assert.Equal(t, 400, apperrors.ToDomainError(err).HTTPStatus)
}

func TestPasswordPolicyAcceptsStrongPassword(t *testing.T) {
	t.Parallel()
	assert.Empty(t, ValidatePasswordPolicy("Sw0rdfish!"))
	assert.NotEmpty(t, ValidatePasswordPolicy("alllowercase1!"))
	assert.NotEmpty(t, ValidatePasswordPolicy("NoDigits!!"))
}
