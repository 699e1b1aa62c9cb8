package contacts

import (
	"context"
	"fmt"
	"time"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// Config holds auth and service options
type Config interface {
	GetSigningKey() string
	GetSigningMethod() string
	GetAccessTokenTTL() time.Duration
	GetRefreshTokenTTL() time.Duration
	GetResetTokenTTL() time.Duration
	GetVerificationTokenTTL() time.Duration
	GetBaseURL() string
}

// Cache is the pluggable key-value backend fronting the user store.
// Implementations must treat TTL as best effort; the in-process
// fallback ignores it entirely.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

// Mailer delivers flow notifications. Delivery is best effort and
// always dispatched off the request path.
type Mailer interface {
	Send(ctx context.Context, recipient, subject, htmlBody string) error
}

// AvatarStore persists an uploaded avatar and returns its public URL.
type AvatarStore interface {
	Put(ctx context.Context, filename string, contentType string, body []byte) (string, error)
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] CONTACTS "+newline(format), args...)
}

func (d defLogger) Warn(format string, args ...any) {
	fmt.Printf("[WRN] CONTACTS "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] CONTACTS "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] CONTACTS "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
