package contacts

import (
	"context"
	"encoding/json"
	"time"
)

// CachedUser is the serializable projection of User held in cache.
// Derived, never authoritative: a missing or stale entry is corrected
// by the durable store on the next miss.
type CachedUser struct {
	ID           int64    `json:"id"`
	Email        string   `json:"email"`
	Verified     bool     `json:"is_verified"`
	AvatarURL    string   `json:"avatar_url,omitempty"`
	Role         UserRole `json:"role"`
	PasswordHash string   `json:"hashed_password,omitempty"`
}

// NewCachedUser projects a User into its cacheable form
func NewCachedUser(user *User) CachedUser {
	return CachedUser{
		ID:           user.ID,
		Email:        user.Email,
		Verified:     user.Verified,
		AvatarURL:    user.AvatarURL,
		Role:         user.Role,
		PasswordHash: user.PasswordHash,
	}
}

// ToUser restores the projection into a User record
func (c CachedUser) ToUser() *User {
	return &User{
		ID:           c.ID,
		Email:        c.Email,
		Verified:     c.Verified,
		AvatarURL:    c.AvatarURL,
		Role:         c.Role,
		PasswordHash: c.PasswordHash,
	}
}

const userCacheKeyPrefix = "user:"

// UserCache fronts the durable user store with a best-effort cache.
// Backend failures degrade to cache misses and are never surfaced.
type UserCache struct {
	cache  Cache
	ttl    time.Duration
	logger Logger
}

// NewUserCache creates a UserCache writing entries with the given TTL,
// conventionally the access-token TTL so staleness stays inside the
// window an access token is trusted for.
func NewUserCache(cache Cache, ttl time.Duration) *UserCache {
	return &UserCache{
		cache:  cache,
		ttl:    ttl,
		logger: defLogger{},
	}
}

func (u *UserCache) WithLogger(logger Logger) *UserCache {
	if logger != nil {
		u.logger = logger
	}
	return u
}

// Store writes the user projection through to the cache, refreshing
// its TTL. Failures are logged and swallowed.
func (u *UserCache) Store(ctx context.Context, user *User) {
	if user == nil || user.Email == "" {
		return
	}

	raw, err := json.Marshal(NewCachedUser(user))
	if err != nil {
		u.logger.Warn("user cache serialize failed", "email", user.Email, "error", err)
		return
	}

	if err := u.cache.Set(ctx, userCacheKeyPrefix+user.Email, string(raw), u.ttl); err != nil {
		u.logger.Warn("user cache write failed", "email", user.Email, "error", err)
	}
}

// Get looks up the cached projection by email. Any backend or decode
// failure is a miss.
func (u *UserCache) Get(ctx context.Context, email string) (*User, bool) {
	raw, err := u.cache.Get(ctx, userCacheKeyPrefix+email)
	if err != nil || raw == "" {
		return nil, false
	}

	var cached CachedUser
	if err := json.Unmarshal([]byte(raw), &cached); err != nil {
		u.logger.Warn("user cache decode failed", "email", email, "error", err)
		return nil, false
	}

	return cached.ToUser(), true
}
