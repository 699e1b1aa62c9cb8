package contacts

import (
	"context"
	"database/sql"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
)

var setUserPasswordSQL = `UPDATE "users" AS "usr"
SET
	"password_hash" = ?,
	"updated_at" = CURRENT_TIMESTAMP
WHERE
	"usr"."id" = ?;`

// Users is the durable user store. All operations commit before
// returning; the cache layer sits elsewhere.
type Users interface {
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByEmailTx(ctx context.Context, tx bun.IDB, email string) (*User, error)
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByIDTx(ctx context.Context, tx bun.IDB, id int64) (*User, error)

	Register(ctx context.Context, user *User) (*User, error)
	RegisterTx(ctx context.Context, tx bun.IDB, user *User) (*User, error)

	MarkVerified(ctx context.Context, user *User) error
	MarkVerifiedTx(ctx context.Context, tx bun.IDB, user *User) error

	SetPassword(ctx context.Context, id int64, passwordHash string) error
	SetPasswordTx(ctx context.Context, tx bun.IDB, id int64, passwordHash string) error

	SetAvatar(ctx context.Context, user *User, url string) error
	SetAvatarTx(ctx context.Context, tx bun.IDB, user *User, url string) error
}

type users struct {
	db *bun.DB
}

var _ Users = (*users)(nil)

// NewUsersRepository creates the bun-backed user store
func NewUsersRepository(db *bun.DB) Users {
	return &users{db: db}
}

// IsRecordNotFound will check for missing rows and rich not-found errors
func IsRecordNotFound(err error) bool {
	if err == nil {
		return false
	}
	if goerrors.Is(err, sql.ErrNoRows) {
		return true
	}
	return goerrors.IsNotFound(err)
}

func (a *users) GetByEmail(ctx context.Context, email string) (*User, error) {
	return a.GetByEmailTx(ctx, a.db, email)
}

func (a *users) GetByEmailTx(ctx context.Context, tx bun.IDB, email string) (*User, error) {
	record := &User{}
	err := tx.NewSelect().
		Model(record).
		Where("?TableAlias.email = ?", email).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if goerrors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound.Clone().WithMetadata(map[string]any{
				"email": email,
			})
		}
		return nil, err
	}

	return record, nil
}

func (a *users) GetByID(ctx context.Context, id int64) (*User, error) {
	return a.GetByIDTx(ctx, a.db, id)
}

func (a *users) GetByIDTx(ctx context.Context, tx bun.IDB, id int64) (*User, error) {
	record := &User{}
	err := tx.NewSelect().
		Model(record).
		Where("?TableAlias.id = ?", id).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if goerrors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound.Clone().WithMetadata(map[string]any{
				"id": id,
			})
		}
		return nil, err
	}

	return record, nil
}

func (a *users) Register(ctx context.Context, user *User) (*User, error) {
	return a.RegisterTx(ctx, a.db, user)
}

func (a *users) RegisterTx(ctx context.Context, tx bun.IDB, user *User) (*User, error) {
	prepareUserDefaults(user)

	if _, err := tx.NewInsert().Model(user).Exec(ctx); err != nil {
		if IsDuplicateKeyError(err) {
			return nil, ErrEmailTaken.Clone().WithMetadata(map[string]any{
				"email": user.Email,
			})
		}
		return nil, err
	}

	return user, nil
}

func (a *users) MarkVerified(ctx context.Context, user *User) error {
	return a.MarkVerifiedTx(ctx, a.db, user)
}

func (a *users) MarkVerifiedTx(ctx context.Context, tx bun.IDB, user *User) error {
	user.Verified = true
	now := time.Now()
	user.UpdatedAt = &now
	_, err := tx.NewUpdate().
		Model(user).
		Column("is_verified", "updated_at").
		WherePK().
		Exec(ctx)
	return err
}

func (a *users) SetPassword(ctx context.Context, id int64, passwordHash string) error {
	return a.SetPasswordTx(ctx, a.db, id, passwordHash)
}

// SetPasswordTx updates the stored hash. Raw SQL to sidestep the ORM
// zero-value column skipping on partial updates.
func (a *users) SetPasswordTx(ctx context.Context, tx bun.IDB, id int64, passwordHash string) error {
	res, err := tx.NewRaw(setUserPasswordSQL, passwordHash, id).Exec(ctx)
	if err != nil {
		return err
	}

	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return ErrUserNotFound.Clone().WithMetadata(map[string]any{
			"id": id,
		})
	}

	return nil
}

func (a *users) SetAvatar(ctx context.Context, user *User, url string) error {
	return a.SetAvatarTx(ctx, a.db, user, url)
}

func (a *users) SetAvatarTx(ctx context.Context, tx bun.IDB, user *User, url string) error {
	user.AvatarURL = url
	now := time.Now()
	user.UpdatedAt = &now
	_, err := tx.NewUpdate().
		Model(user).
		Column("avatar_url", "updated_at").
		WherePK().
		Exec(ctx)
	return err
}

func prepareUserDefaults(user *User) {
	if _, ok := ParseRole(user.Role); !ok || user.Role == "" {
		user.Role = RoleUser
	}
	if user.CreatedAt == nil {
		now := time.Now()
		user.CreatedAt = &now
		user.UpdatedAt = &now
	}
}
