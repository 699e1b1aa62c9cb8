package contacts

import (
	"context"
	"database/sql"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
)

// ContactQuery narrows List results. Zero values mean "no filter".
type ContactQuery struct {
	Search string
	Skip   int
	Limit  int
}

// Contacts is the per-user contact store
type Contacts interface {
	Create(ctx context.Context, contact *Contact) (*Contact, error)
	CreateTx(ctx context.Context, tx bun.IDB, contact *Contact) (*Contact, error)

	GetByID(ctx context.Context, ownerID, id int64) (*Contact, error)
	List(ctx context.Context, ownerID int64, query ContactQuery) ([]*Contact, error)

	Update(ctx context.Context, contact *Contact) (*Contact, error)
	Delete(ctx context.Context, contact *Contact) error

	ListWithBirthdays(ctx context.Context, ownerID int64) ([]*Contact, error)
}

type contactsRepo struct {
	db *bun.DB
}

var _ Contacts = (*contactsRepo)(nil)

// NewContactsRepository creates the bun-backed contact store
func NewContactsRepository(db *bun.DB) Contacts {
	return &contactsRepo{db: db}
}

func (r *contactsRepo) Create(ctx context.Context, contact *Contact) (*Contact, error) {
	return r.CreateTx(ctx, r.db, contact)
}

func (r *contactsRepo) CreateTx(ctx context.Context, tx bun.IDB, contact *Contact) (*Contact, error) {
	now := time.Now()
	if contact.CreatedAt == nil {
		contact.CreatedAt = &now
		contact.UpdatedAt = &now
	}

	// the schema enforces (owner_id, email) uniqueness too; checking
	// first keeps the error message consistent across dialects
	exists, err := tx.NewSelect().
		Model((*Contact)(nil)).
		Where("?TableAlias.owner_id = ?", contact.OwnerID).
		Where("?TableAlias.email = ?", contact.Email).
		Exists(ctx)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrContactEmailTaken.Clone().WithMetadata(map[string]any{
			"email": contact.Email,
		})
	}

	if _, err := tx.NewInsert().Model(contact).Exec(ctx); err != nil {
		if IsDuplicateKeyError(err) {
			return nil, ErrContactEmailTaken.Clone().WithMetadata(map[string]any{
				"email": contact.Email,
			})
		}
		return nil, err
	}

	return contact, nil
}

func (r *contactsRepo) GetByID(ctx context.Context, ownerID, id int64) (*Contact, error) {
	record := &Contact{}
	err := r.db.NewSelect().
		Model(record).
		Where("?TableAlias.id = ?", id).
		Where("?TableAlias.owner_id = ?", ownerID).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if goerrors.Is(err, sql.ErrNoRows) {
			return nil, ErrContactNotFound.Clone().WithMetadata(map[string]any{
				"id": id,
			})
		}
		return nil, err
	}

	return record, nil
}

func (r *contactsRepo) List(ctx context.Context, ownerID int64, query ContactQuery) ([]*Contact, error) {
	records := []*Contact{}

	q := r.db.NewSelect().
		Model(&records).
		Where("?TableAlias.owner_id = ?", ownerID).
		Order("id ASC")

	if query.Search != "" {
		pattern := "%" + query.Search + "%"
		q = q.WhereGroup(" AND ", func(sq *bun.SelectQuery) *bun.SelectQuery {
			return sq.
				WhereOr("?TableAlias.first_name LIKE ?", pattern).
				WhereOr("?TableAlias.last_name LIKE ?", pattern).
				WhereOr("?TableAlias.email LIKE ?", pattern)
		})
	}

	if query.Skip > 0 {
		q = q.Offset(query.Skip)
	}

	limit := query.Limit
	if limit <= 0 {
		limit = 100
	}
	q = q.Limit(limit)

	if err := q.Scan(ctx); err != nil {
		return nil, err
	}

	return records, nil
}

func (r *contactsRepo) Update(ctx context.Context, contact *Contact) (*Contact, error) {
	now := time.Now()
	contact.UpdatedAt = &now

	res, err := r.db.NewUpdate().
		Model(contact).
		WherePK().
		Where("?TableAlias.owner_id = ?", contact.OwnerID).
		Exec(ctx)
	if err != nil {
		if IsDuplicateKeyError(err) {
			return nil, ErrContactEmailTaken.Clone().WithMetadata(map[string]any{
				"email": contact.Email,
			})
		}
		return nil, err
	}

	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return nil, ErrContactNotFound.Clone().WithMetadata(map[string]any{
			"id": contact.ID,
		})
	}

	return contact, nil
}

func (r *contactsRepo) Delete(ctx context.Context, contact *Contact) error {
	res, err := r.db.NewDelete().
		Model(contact).
		WherePK().
		Where("?TableAlias.owner_id = ?", contact.OwnerID).
		Exec(ctx)
	if err != nil {
		return err
	}

	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return ErrContactNotFound.Clone().WithMetadata(map[string]any{
			"id": contact.ID,
		})
	}

	return nil
}

// UpcomingBirthdays filters contacts whose birthday falls within the
// next days days, including today and the final day. Year wrap is
// handled by also checking the birthday projected onto the following
// year.
func UpcomingBirthdays(contacts []*Contact, from time.Time, days int) []*Contact {
	if days <= 0 {
		days = 7
	}

	start := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, days)

	upcoming := []*Contact{}
	for _, contact := range contacts {
		for _, year := range []int{start.Year(), start.Year() + 1} {
			anniversary, ok := contact.BirthdayThisYear(year)
			if !ok {
				break
			}
			if !anniversary.Before(start) && !anniversary.After(end) {
				upcoming = append(upcoming, contact)
				break
			}
		}
	}

	return upcoming
}

// ListWithBirthdays returns the owner's contacts that have a birthday
// set; windowing happens in the service since date arithmetic across
// year boundaries is not portable SQL.
func (r *contactsRepo) ListWithBirthdays(ctx context.Context, ownerID int64) ([]*Contact, error) {
	records := []*Contact{}

	err := r.db.NewSelect().
		Model(&records).
		Where("?TableAlias.owner_id = ?", ownerID).
		Where("?TableAlias.birthday IS NOT NULL").
		Order("id ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	return records, nil
}
