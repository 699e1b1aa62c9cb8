package contacts_test

import (
	"context"
	"testing"
	"time"

	contacts "github.com/goliatone/go-contacts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthFixture(t *testing.T) (*contacts.Auther, *testRepoManager, *contacts.UserCache) {
	t.Helper()

	tokens := contacts.NewTokenService(testSigningKey, "HS256", nil)
	cache := contacts.NewUserCache(contacts.NewMemoryCache(), time.Minute)
	repo := newTestRepoManager()
	auther := contacts.NewAuthenticator(tokens, repo, cache, newTestConfig())

	return auther, repo, cache
}

func verifiedUser(t *testing.T, password string) *contacts.User {
	t.Helper()

	hash, err := contacts.HashPassword(password)
	require.NoError(t, err)

	return &contacts.User{
		ID:           1,
		Email:        "pepe@example.com",
		PasswordHash: hash,
		Verified:     true,
		Role:         contacts.RoleUser,
	}
}

func TestLoginSuccess(t *testing.T) {
	ctx := context.Background()
	auther, repo, cache := newAuthFixture(t)

	user := verifiedUser(t, "password123")
	repo.users.On("GetByEmail", ctx, user.Email).Return(user, nil).Once()

	pair, err := auther.Login(ctx, user.Email, "password123")
	require.NoError(t, err)

	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.Equal(t, "bearer", pair.TokenType)

	// access token carries the access scope
	claims, err := auther.TokenService().Validate(pair.AccessToken)
	require.NoError(t, err)
	assert.True(t, claims.HasScope(contacts.ScopeAccess))
	assert.Equal(t, user.Email, claims.Email())

	// refresh token carries the refresh scope
	claims, err = auther.TokenService().Validate(pair.RefreshToken)
	require.NoError(t, err)
	assert.True(t, claims.HasScope(contacts.ScopeRefresh))

	// login writes the user through to the cache
	cached, ok := cache.Get(ctx, user.Email)
	require.True(t, ok)
	assert.Equal(t, user.ID, cached.ID)

	repo.users.AssertExpectations(t)
}

func TestLoginWrongPassword(t *testing.T) {
	ctx := context.Background()
	auther, repo, _ := newAuthFixture(t)

	user := verifiedUser(t, "password123")
	repo.users.On("GetByEmail", ctx, user.Email).Return(user, nil).Once()

	_, err := auther.Login(ctx, user.Email, "not-the-password")
	require.Error(t, err)
	assert.ErrorIs(t, err, contacts.ErrInvalidCredentials)
}

func TestLoginUnknownEmail(t *testing.T) {
	ctx := context.Background()
	auther, repo, _ := newAuthFixture(t)

	repo.users.On("GetByEmail", ctx, "ghost@example.com").
		Return(nil, contacts.ErrUserNotFound).Once()

	_, err := auther.Login(ctx, "ghost@example.com", "whatever")
	require.Error(t, err)

	// unknown accounts and bad passwords are indistinguishable
	assert.ErrorIs(t, err, contacts.ErrInvalidCredentials)
}

func TestLoginUnverifiedEmail(t *testing.T) {
	ctx := context.Background()
	auther, repo, _ := newAuthFixture(t)

	user := verifiedUser(t, "password123")
	user.Verified = false
	repo.users.On("GetByEmail", ctx, user.Email).Return(user, nil).Once()

	_, err := auther.Login(ctx, user.Email, "password123")
	require.Error(t, err)
	assert.ErrorIs(t, err, contacts.ErrEmailNotVerified)
}

func TestRefreshSuccess(t *testing.T) {
	ctx := context.Background()
	auther, repo, _ := newAuthFixture(t)

	user := verifiedUser(t, "password123")
	repo.users.On("GetByEmail", ctx, user.Email).Return(user, nil)

	token, err := auther.TokenService().Issue(user.Email, contacts.ScopeRefresh, time.Minute)
	require.NoError(t, err)

	pair, err := auther.Refresh(ctx, token)
	require.NoError(t, err)

	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)

	claims, err := auther.TokenService().Validate(pair.AccessToken)
	require.NoError(t, err)
	assert.True(t, claims.HasScope(contacts.ScopeAccess))
}

func TestRefreshRejectsAccessToken(t *testing.T) {
	ctx := context.Background()
	auther, _, _ := newAuthFixture(t)

	token, err := auther.TokenService().Issue("pepe@example.com", contacts.ScopeAccess, time.Minute)
	require.NoError(t, err)

	_, err = auther.Refresh(ctx, token)
	require.Error(t, err)
}

func TestRefreshRejectsExpiredToken(t *testing.T) {
	ctx := context.Background()
	auther, _, _ := newAuthFixture(t)

	token, err := auther.TokenService().Issue("pepe@example.com", contacts.ScopeRefresh, time.Millisecond)
	require.NoError(t, err)

	time.Sleep(10 * time.Millisecond)

	_, err = auther.Refresh(ctx, token)
	require.Error(t, err)
	assert.ErrorIs(t, err, contacts.ErrTokenExpired)
}

func TestRefreshUnknownSubject(t *testing.T) {
	ctx := context.Background()
	auther, repo, _ := newAuthFixture(t)

	repo.users.On("GetByEmail", ctx, "ghost@example.com").
		Return(nil, contacts.ErrUserNotFound).Once()

	token, err := auther.TokenService().Issue("ghost@example.com", contacts.ScopeRefresh, time.Minute)
	require.NoError(t, err)

	_, err = auther.Refresh(ctx, token)
	require.Error(t, err)
	assert.ErrorIs(t, err, contacts.ErrUserNotFound)
}
