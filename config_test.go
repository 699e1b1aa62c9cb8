package contacts_test

import (
	"testing"
	"time"

	contacts "github.com/goliatone/go-contacts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("SECRET_KEY", "test-secret")

	cfg, err := contacts.LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "test-secret", cfg.GetSigningKey())
	assert.Equal(t, "HS256", cfg.GetSigningMethod())
	assert.Equal(t, 30*time.Minute, cfg.GetAccessTokenTTL())
	assert.Equal(t, 7*24*time.Hour, cfg.GetRefreshTokenTTL())
	assert.Equal(t, time.Hour, cfg.GetResetTokenTTL())
	assert.Equal(t, 24*time.Hour, cfg.GetVerificationTokenTTL())
	assert.Equal(t, "http://localhost:8000", cfg.GetBaseURL())
	assert.Equal(t, "8000", cfg.Port)
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("SECRET_KEY", "test-secret")
	t.Setenv("ACCESS_TOKEN_EXPIRE_MINUTES", "5")
	t.Setenv("REFRESH_TOKEN_EXPIRE_MINUTES", "60")
	t.Setenv("BASE_URL", "https://contacts.example.com")
	t.Setenv("PORT", "9000")

	cfg, err := contacts.LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 5*time.Minute, cfg.GetAccessTokenTTL())
	assert.Equal(t, time.Hour, cfg.GetRefreshTokenTTL())
	assert.Equal(t, "https://contacts.example.com", cfg.GetBaseURL())
	assert.Equal(t, "9000", cfg.Port)
}

func TestLoadConfigRequiresSigningKey(t *testing.T) {
	t.Setenv("SECRET_KEY", "")

	_, err := contacts.LoadConfig()
	assert.Error(t, err)
}

func TestLoadConfigIgnoresBadNumbers(t *testing.T) {
	t.Setenv("SECRET_KEY", "test-secret")
	t.Setenv("ACCESS_TOKEN_EXPIRE_MINUTES", "not-a-number")

	cfg, err := contacts.LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 30*time.Minute, cfg.GetAccessTokenTTL())
}
