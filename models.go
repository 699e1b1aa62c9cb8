package contacts

import (
	"time"

	"github.com/uptrace/bun"
)

// UserRole is the user's role
type UserRole = string

const (
	// RoleUser is a regular account (i.e. manage own contacts)
	RoleUser UserRole = "user"
	// RoleAdmin is an administrator (i.e. manage own contacts, change avatars)
	RoleAdmin UserRole = "admin"
)

// ParseRole returns a valid role, falling back to RoleUser
func ParseRole(role string) (UserRole, bool) {
	switch role {
	case RoleUser, RoleAdmin:
		return role, true
	}
	return RoleUser, false
}

// User is the user model
type User struct {
	bun.BaseModel `bun:"table:users,alias:usr"`
	ID            int64      `bun:"id,pk,autoincrement" json:"id"`
	Email         string     `bun:"email,notnull,unique" json:"email"`
	PasswordHash  string     `bun:"password_hash,notnull" json:"-"`
	Verified      bool       `bun:"is_verified,notnull,default:false" json:"is_verified"`
	AvatarURL     string     `bun:"avatar_url" json:"avatar_url,omitempty"`
	Role          UserRole   `bun:"user_role,notnull,default:'user'" json:"role"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// IsAdmin reports whether the user carries the admin role
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// Contact is the contact model; each contact belongs to exactly one user
// and the (owner, email) pair is unique.
type Contact struct {
	bun.BaseModel `bun:"table:contacts,alias:cnt"`
	ID            int64      `bun:"id,pk,autoincrement" json:"id"`
	OwnerID       int64      `bun:"owner_id,notnull" json:"-"`
	FirstName     string     `bun:"first_name,notnull" json:"first_name"`
	LastName      string     `bun:"last_name,notnull" json:"last_name"`
	Email         string     `bun:"email,notnull" json:"email"`
	Phone         string     `bun:"phone" json:"phone,omitempty"`
	Birthday      *time.Time `bun:"birthday,nullzero" json:"birthday,omitempty"`
	Extra         string     `bun:"extra" json:"extra,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// BirthdayThisYear projects the contact's birthday onto the given year.
// Used for upcoming birthday windows that may wrap a year boundary.
func (c *Contact) BirthdayThisYear(year int) (time.Time, bool) {
	if c.Birthday == nil {
		return time.Time{}, false
	}
	b := *c.Birthday
	return time.Date(year, b.Month(), b.Day(), 0, 0, 0, 0, time.UTC), true
}
