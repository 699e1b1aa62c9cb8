package contacts

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-errors"
)

// TokenService signs and validates scoped tokens. The service is
// scope-agnostic: it records whatever scope the caller asks for and
// leaves scope enforcement to the consuming flow.
type TokenService interface {
	Issue(subject string, scope TokenScope, ttl time.Duration) (string, error)
	Validate(tokenString string) (*TokenClaims, error)
}

// TokenServiceImpl implements the TokenService interface
type TokenServiceImpl struct {
	signingKey []byte
	method     jwt.SigningMethod
	logger     Logger
}

// NewTokenService creates a new TokenService instance. Only the HMAC
// family is supported; an unknown algorithm falls back to HS256.
func NewTokenService(signingKey []byte, algorithm string, logger Logger) TokenService {
	if logger == nil {
		logger = defLogger{}
	}

	method := jwt.GetSigningMethod(algorithm)
	if _, ok := method.(*jwt.SigningMethodHMAC); !ok {
		if algorithm != "" {
			logger.Error("TokenService unsupported signing algorithm, using HS256", "alg", algorithm)
		}
		method = jwt.SigningMethodHS256
	}

	return &TokenServiceImpl{
		signingKey: signingKey,
		method:     method,
		logger:     logger,
	}
}

// Issue mints a token for subject with the given scope. Expiry is an
// absolute timestamp computed here; the validator enforces it.
func (ts *TokenServiceImpl) Issue(subject string, scope TokenScope, ttl time.Duration) (string, error) {
	if subject == "" {
		return "", errors.New("token subject is required", errors.CategoryBadInput)
	}
	if ttl <= 0 {
		return "", errors.New("token TTL must be positive", errors.CategoryBadInput)
	}

	now := time.Now()
	claims := &TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Scope: string(scope),
	}

	ensureTokenID(&claims.RegisteredClaims)

	return ts.signClaims(claims)
}

func (ts *TokenServiceImpl) signClaims(claims *TokenClaims) (string, error) {
	token := jwt.NewWithClaims(ts.method, claims)

	signedString, err := token.SignedString(ts.signingKey)
	if err != nil {
		return "", errors.Wrap(err, errors.CategoryInternal, "failed to sign JWT")
	}

	return signedString, nil
}

// Validate parses and validates a token string, returning structured claims
func (ts *TokenServiceImpl) Validate(tokenString string) (*TokenClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &TokenClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			ts.logger.Error("TokenService validate encountered unexpected signing method", "alg", t.Header["alg"])
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return ts.signingKey, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, errors.Wrap(err, ErrTokenMalformed.Category, ErrTokenMalformed.Message).
			WithCode(ErrTokenMalformed.Code).
			WithTextCode(ErrTokenMalformed.TextCode)
	}

	if claims, ok := token.Claims.(*TokenClaims); ok && token.Valid {
		return claims, nil
	}

	ts.logger.Error("TokenService validate could not decode or validate claims")
	return nil, ErrTokenMalformed
}
