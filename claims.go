package contacts

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenScope is the claimed purpose of a token; every flow checks the
// scope of the tokens it consumes and rejects the rest.
type TokenScope string

const (
	// ScopeAccess grants API calls
	ScopeAccess TokenScope = "access"
	// ScopeRefresh grants new access/refresh pairs
	ScopeRefresh TokenScope = "refresh"
	// ScopeReset grants a single password change
	ScopeReset TokenScope = "reset"
	// ScopeVerification grants one email confirmation
	ScopeVerification TokenScope = "verification"
)

// ParseScope validates a raw scope claim
func ParseScope(raw string) (TokenScope, bool) {
	switch s := TokenScope(raw); s {
	case ScopeAccess, ScopeRefresh, ScopeReset, ScopeVerification:
		return s, true
	}
	return "", false
}

// TokenClaims is the payload carried by every token we issue.
// Subject is the user email; Scope restricts which flow may consume
// the token.
type TokenClaims struct {
	jwt.RegisteredClaims
	Scope string `json:"scope,omitempty"`
}

// Email returns the subject claim
func (c *TokenClaims) Email() string {
	return c.RegisteredClaims.Subject
}

// TokenScope returns the parsed scope claim, empty when the raw claim
// is not one of the known scopes
func (c *TokenClaims) TokenScope() TokenScope {
	s, _ := ParseScope(c.Scope)
	return s
}

// HasScope checks for an exact scope match
func (c *TokenClaims) HasScope(scope TokenScope) bool {
	return c.Scope == string(scope)
}

// Expires returns the expiration time
func (c *TokenClaims) Expires() time.Time {
	if c.RegisteredClaims.ExpiresAt != nil {
		return c.RegisteredClaims.ExpiresAt.Time
	}
	return time.Time{}
}

// IssuedAtTime returns the issued at time
func (c *TokenClaims) IssuedAtTime() time.Time {
	if c.RegisteredClaims.IssuedAt != nil {
		return c.RegisteredClaims.IssuedAt.Time
	}
	return time.Time{}
}

func ensureTokenID(claims *jwt.RegisteredClaims) {
	if claims.ID == "" {
		claims.ID = uuid.NewString()
	}
}
