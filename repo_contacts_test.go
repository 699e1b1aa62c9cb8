package contacts_test

import (
	"errors"
	"testing"
	"time"

	contacts "github.com/goliatone/go-contacts"
	"github.com/stretchr/testify/assert"
)

func contactWithBirthday(id int64, month time.Month, day int) *contacts.Contact {
	b := time.Date(1990, month, day, 0, 0, 0, 0, time.UTC)
	return &contacts.Contact{
		ID:       id,
		Birthday: &b,
	}
}

func contactIDs(list []*contacts.Contact) []int64 {
	ids := make([]int64, 0, len(list))
	for _, c := range list {
		ids = append(ids, c.ID)
	}
	return ids
}

func TestUpcomingBirthdays(t *testing.T) {
	// fixed reference date, not near a year boundary
	from := time.Date(2026, time.June, 10, 15, 30, 0, 0, time.UTC)

	all := []*contacts.Contact{
		contactWithBirthday(1, time.June, 10),      // today
		contactWithBirthday(2, time.June, 14),      // inside the window
		contactWithBirthday(3, time.June, 17),      // day 7, still inside
		contactWithBirthday(4, time.June, 18),      // right outside
		contactWithBirthday(5, time.September, 1),  // far out
		contactWithBirthday(6, time.June, 9),       // yesterday
		{ID: 7},                                    // no birthday set
	}

	upcoming := contacts.UpcomingBirthdays(all, from, 7)
	assert.Equal(t, []int64{1, 2, 3}, contactIDs(upcoming))
}

func TestUpcomingBirthdaysWrapsYearBoundary(t *testing.T) {
	from := time.Date(2026, time.December, 29, 0, 0, 0, 0, time.UTC)

	all := []*contacts.Contact{
		contactWithBirthday(1, time.December, 30),
		contactWithBirthday(2, time.January, 2),
		contactWithBirthday(3, time.January, 5), // day 7 across the wrap
		contactWithBirthday(4, time.January, 10),
	}

	upcoming := contacts.UpcomingBirthdays(all, from, 7)
	assert.Equal(t, []int64{1, 2, 3}, contactIDs(upcoming))
}

func TestUpcomingBirthdaysDefaultWindow(t *testing.T) {
	from := time.Date(2026, time.June, 10, 0, 0, 0, 0, time.UTC)

	all := []*contacts.Contact{
		contactWithBirthday(1, time.June, 12),
	}

	// zero and negative windows fall back to seven days
	assert.Len(t, contacts.UpcomingBirthdays(all, from, 0), 1)
	assert.Len(t, contacts.UpcomingBirthdays(all, from, -3), 1)
}

func TestBirthdayThisYear(t *testing.T) {
	c := contactWithBirthday(1, time.February, 14)

	projected, ok := c.BirthdayThisYear(2026)
	assert.True(t, ok)
	assert.Equal(t, time.Date(2026, time.February, 14, 0, 0, 0, 0, time.UTC), projected)

	_, ok = (&contacts.Contact{}).BirthdayThisYear(2026)
	assert.False(t, ok)
}

func TestIsDuplicateKeyError(t *testing.T) {
	assert.False(t, contacts.IsDuplicateKeyError(nil))
	assert.False(t, contacts.IsDuplicateKeyError(assert.AnError))
	assert.True(t, contacts.IsDuplicateKeyError(errors.New("UNIQUE constraint failed: users.email")))
	assert.True(t, contacts.IsDuplicateKeyError(errors.New(`duplicate key value violates unique constraint "users_email_key"`)))
}
