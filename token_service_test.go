package contacts_test

import (
	"encoding/base64"
	"strings"
	"testing"
	"time"

	contacts "github.com/goliatone/go-contacts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSigningKey = []byte("test-signing-key")

func TestTokenServiceIssueAndValidate(t *testing.T) {
	svc := contacts.NewTokenService(testSigningKey, "HS256", nil)

	token, err := svc.Issue("pepe@example.com", contacts.ScopeAccess, time.Minute)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.Validate(token)
	require.NoError(t, err)

	assert.Equal(t, "pepe@example.com", claims.Email())
	assert.Equal(t, contacts.ScopeAccess, claims.TokenScope())
	assert.True(t, claims.HasScope(contacts.ScopeAccess))
	assert.False(t, claims.HasScope(contacts.ScopeRefresh))
	assert.WithinDuration(t, time.Now().Add(time.Minute), claims.Expires(), 5*time.Second)
}

func TestTokenServiceIssueValidation(t *testing.T) {
	svc := contacts.NewTokenService(testSigningKey, "HS256", nil)

	_, err := svc.Issue("", contacts.ScopeAccess, time.Minute)
	assert.Error(t, err)

	_, err = svc.Issue("pepe@example.com", contacts.ScopeAccess, 0)
	assert.Error(t, err)
}

func TestTokenServiceScopesAreDistinct(t *testing.T) {
	svc := contacts.NewTokenService(testSigningKey, "HS256", nil)

	for _, scope := range []contacts.TokenScope{
		contacts.ScopeAccess,
		contacts.ScopeRefresh,
		contacts.ScopeReset,
		contacts.ScopeVerification,
	} {
		token, err := svc.Issue("pepe@example.com", scope, time.Minute)
		require.NoError(t, err)

		claims, err := svc.Validate(token)
		require.NoError(t, err)
		assert.Equal(t, scope, claims.TokenScope())
	}
}

func TestTokenServiceValidateExpired(t *testing.T) {
	svc := contacts.NewTokenService(testSigningKey, "HS256", nil)

	token, err := svc.Issue("pepe@example.com", contacts.ScopeAccess, time.Millisecond)
	require.NoError(t, err)

	time.Sleep(10 * time.Millisecond)

	_, err = svc.Validate(token)
	require.Error(t, err)
	assert.ErrorIs(t, err, contacts.ErrTokenExpired)
}

func TestTokenServiceValidateTampered(t *testing.T) {
	svc := contacts.NewTokenService(testSigningKey, "HS256", nil)

	token, err := svc.Issue("pepe@example.com", contacts.ScopeAccess, time.Minute)
	require.NoError(t, err)

	// flip a character inside the payload segment
	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)

	payload := []byte(parts[1])
	if payload[0] == 'A' {
		payload[0] = 'B'
	} else {
		payload[0] = 'A'
	}
	parts[1] = string(payload)

	_, err = svc.Validate(strings.Join(parts, "."))
	assert.Error(t, err)
}

func TestTokenServiceValidateWrongKey(t *testing.T) {
	svc := contacts.NewTokenService(testSigningKey, "HS256", nil)
	other := contacts.NewTokenService([]byte("another-key"), "HS256", nil)

	token, err := svc.Issue("pepe@example.com", contacts.ScopeAccess, time.Minute)
	require.NoError(t, err)

	_, err = other.Validate(token)
	assert.Error(t, err)
}

func TestTokenServiceValidateGarbage(t *testing.T) {
	svc := contacts.NewTokenService(testSigningKey, "HS256", nil)

	_, err := svc.Validate("not-a-token")
	assert.Error(t, err)
}

func TestTokenServiceConfiguredAlgorithm(t *testing.T) {
	svc := contacts.NewTokenService(testSigningKey, "HS384", nil)

	token, err := svc.Issue("pepe@example.com", contacts.ScopeAccess, time.Minute)
	require.NoError(t, err)

	header := decodeSegment(t, strings.Split(token, ".")[0])
	assert.Contains(t, string(header), `"HS384"`)

	claims, err := svc.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "pepe@example.com", claims.Email())
}

func TestTokenServiceRejectsNonHMACAlgorithm(t *testing.T) {
	// RS256 needs key material we do not carry; the service falls back to HS256
	svc := contacts.NewTokenService(testSigningKey, "RS256", nil)

	token, err := svc.Issue("pepe@example.com", contacts.ScopeAccess, time.Minute)
	require.NoError(t, err)

	header := decodeSegment(t, strings.Split(token, ".")[0])
	assert.Contains(t, string(header), `"HS256"`)
}

func decodeSegment(t *testing.T, seg string) []byte {
	t.Helper()

	raw, err := base64.RawURLEncoding.DecodeString(seg)
	require.NoError(t, err)
	return raw
}
