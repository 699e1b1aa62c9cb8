package contacts

import (
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

// TextCodeTokenExpired marks validation failures caused by token age
const TextCodeTokenExpired = "TOKEN_EXPIRED"

// ErrInvalidCredentials is returned for unknown emails and password
// mismatches alike; the two cases are indistinguishable on purpose.
var ErrInvalidCredentials = goerrors.New("invalid credentials", goerrors.CategoryAuth).
	WithCode(goerrors.CodeUnauthorized).
	WithTextCode("INVALID_CREDENTIALS")

// ErrEmailNotVerified blocks login until the verification flow completes
var ErrEmailNotVerified = goerrors.New("email is not verified", goerrors.CategoryAuth).
	WithCode(goerrors.CodeForbidden).
	WithTextCode("EMAIL_NOT_VERIFIED")

// ErrTokenExpired is the rich error for expired tokens
var ErrTokenExpired = goerrors.New("authentication token expired", goerrors.CategoryAuth).
	WithCode(goerrors.CodeUnauthorized).
	WithTextCode(TextCodeTokenExpired)

// ErrTokenMalformed covers bad signatures and undecodable token strings
var ErrTokenMalformed = goerrors.New("invalid authentication token", goerrors.CategoryAuth).
	WithCode(goerrors.CodeUnauthorized).
	WithTextCode("TOKEN_MALFORMED")

// ErrInvalidScope is returned when a token's scope does not match the
// scope the consuming flow expects, even if the signature is valid.
var ErrInvalidScope = goerrors.New("invalid token scope", goerrors.CategoryAuth).
	WithCode(goerrors.CodeUnauthorized).
	WithTextCode("INVALID_TOKEN_SCOPE")

// ErrUserNotFound is the error for flows that require an existing account
var ErrUserNotFound = goerrors.New("user not found", goerrors.CategoryNotFound).
	WithCode(goerrors.CodeNotFound).
	WithTextCode("USER_NOT_FOUND")

// ErrEmailTaken is returned on duplicate registration
var ErrEmailTaken = goerrors.New("user already exists", goerrors.CategoryConflict).
	WithCode(goerrors.CodeConflict).
	WithTextCode("EMAIL_TAKEN")

// ErrContactNotFound is returned when a contact is absent or owned by
// a different user; the two cases are not distinguished.
var ErrContactNotFound = goerrors.New("contact not found", goerrors.CategoryNotFound).
	WithCode(goerrors.CodeNotFound).
	WithTextCode("CONTACT_NOT_FOUND")

// ErrContactEmailTaken enforces per-owner contact email uniqueness
var ErrContactEmailTaken = goerrors.New("contact already exists", goerrors.CategoryConflict).
	WithCode(goerrors.CodeConflict).
	WithTextCode("CONTACT_EMAIL_TAKEN")

// IsDuplicateKeyError will check for unique constraint violations.
// Dialect error codes differ, so we match on message like the drivers do.
func IsDuplicateKeyError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value")
}
