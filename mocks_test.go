package contacts_test

import (
	"context"
	"database/sql"
	"sync"
	"time"

	contacts "github.com/goliatone/go-contacts"
	"github.com/stretchr/testify/mock"
	"github.com/uptrace/bun"
)

// MockUsers mocks the Users repository
type MockUsers struct {
	mock.Mock
}

func (m *MockUsers) GetByEmail(ctx context.Context, email string) (*contacts.User, error) {
	args := m.Called(ctx, email)
	if user := args.Get(0); user != nil {
		return user.(*contacts.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUsers) GetByEmailTx(ctx context.Context, tx bun.IDB, email string) (*contacts.User, error) {
	args := m.Called(ctx, tx, email)
	if user := args.Get(0); user != nil {
		return user.(*contacts.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUsers) GetByID(ctx context.Context, id int64) (*contacts.User, error) {
	args := m.Called(ctx, id)
	if user := args.Get(0); user != nil {
		return user.(*contacts.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUsers) GetByIDTx(ctx context.Context, tx bun.IDB, id int64) (*contacts.User, error) {
	args := m.Called(ctx, tx, id)
	if user := args.Get(0); user != nil {
		return user.(*contacts.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUsers) Register(ctx context.Context, user *contacts.User) (*contacts.User, error) {
	args := m.Called(ctx, user)
	if created := args.Get(0); created != nil {
		return created.(*contacts.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUsers) RegisterTx(ctx context.Context, tx bun.IDB, user *contacts.User) (*contacts.User, error) {
	args := m.Called(ctx, tx, user)
	if created := args.Get(0); created != nil {
		return created.(*contacts.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUsers) MarkVerified(ctx context.Context, user *contacts.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUsers) MarkVerifiedTx(ctx context.Context, tx bun.IDB, user *contacts.User) error {
	args := m.Called(ctx, tx, user)
	return args.Error(0)
}

func (m *MockUsers) SetPassword(ctx context.Context, id int64, passwordHash string) error {
	args := m.Called(ctx, id, passwordHash)
	return args.Error(0)
}

func (m *MockUsers) SetPasswordTx(ctx context.Context, tx bun.IDB, id int64, passwordHash string) error {
	args := m.Called(ctx, tx, id, passwordHash)
	return args.Error(0)
}

func (m *MockUsers) SetAvatar(ctx context.Context, user *contacts.User, url string) error {
	args := m.Called(ctx, user, url)
	return args.Error(0)
}

func (m *MockUsers) SetAvatarTx(ctx context.Context, tx bun.IDB, user *contacts.User, url string) error {
	args := m.Called(ctx, tx, user, url)
	return args.Error(0)
}

// MockContacts mocks the Contacts repository
type MockContacts struct {
	mock.Mock
}

func (m *MockContacts) Create(ctx context.Context, contact *contacts.Contact) (*contacts.Contact, error) {
	args := m.Called(ctx, contact)
	if created := args.Get(0); created != nil {
		return created.(*contacts.Contact), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockContacts) CreateTx(ctx context.Context, tx bun.IDB, contact *contacts.Contact) (*contacts.Contact, error) {
	args := m.Called(ctx, tx, contact)
	if created := args.Get(0); created != nil {
		return created.(*contacts.Contact), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockContacts) GetByID(ctx context.Context, ownerID, id int64) (*contacts.Contact, error) {
	args := m.Called(ctx, ownerID, id)
	if contact := args.Get(0); contact != nil {
		return contact.(*contacts.Contact), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockContacts) List(ctx context.Context, ownerID int64, query contacts.ContactQuery) ([]*contacts.Contact, error) {
	args := m.Called(ctx, ownerID, query)
	if list := args.Get(0); list != nil {
		return list.([]*contacts.Contact), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockContacts) Update(ctx context.Context, contact *contacts.Contact) (*contacts.Contact, error) {
	args := m.Called(ctx, contact)
	if updated := args.Get(0); updated != nil {
		return updated.(*contacts.Contact), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockContacts) Delete(ctx context.Context, contact *contacts.Contact) error {
	args := m.Called(ctx, contact)
	return args.Error(0)
}

func (m *MockContacts) ListWithBirthdays(ctx context.Context, ownerID int64) ([]*contacts.Contact, error) {
	args := m.Called(ctx, ownerID)
	if list := args.Get(0); list != nil {
		return list.([]*contacts.Contact), args.Error(1)
	}
	return nil, args.Error(1)
}

// testRepoManager wires the mocks behind the RepositoryManager
// interface. RunInTx calls through with a zero transaction so handlers
// can be exercised without a database.
type testRepoManager struct {
	users    *MockUsers
	contacts *MockContacts
}

func newTestRepoManager() *testRepoManager {
	return &testRepoManager{
		users:    new(MockUsers),
		contacts: new(MockContacts),
	}
}

func (m *testRepoManager) Validate() error { return nil }
func (m *testRepoManager) MustValidate()   {}

func (m *testRepoManager) RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error {
	return f(ctx, bun.Tx{})
}

func (m *testRepoManager) Users() contacts.Users       { return m.users }
func (m *testRepoManager) Contacts() contacts.Contacts { return m.contacts }

// testConfig is a static Config for tests
type testConfig struct {
	signingKey string
}

func newTestConfig() testConfig {
	return testConfig{signingKey: string(testSigningKey)}
}

func (c testConfig) GetSigningKey() string                  { return c.signingKey }
func (c testConfig) GetSigningMethod() string               { return "HS256" }
func (c testConfig) GetAccessTokenTTL() time.Duration       { return 30 * time.Minute }
func (c testConfig) GetRefreshTokenTTL() time.Duration      { return 7 * 24 * time.Hour }
func (c testConfig) GetResetTokenTTL() time.Duration        { return time.Hour }
func (c testConfig) GetVerificationTokenTTL() time.Duration { return 24 * time.Hour }
func (c testConfig) GetBaseURL() string                     { return "http://localhost:8000" }

// recordingMailer captures messages for assertions. Notifier sends on
// a goroutine, so access is guarded.
type recordingMailer struct {
	mu       sync.Mutex
	messages []recordedMessage
}

type recordedMessage struct {
	Recipient string
	Subject   string
	Body      string
}

func newRecordingMailer() *recordingMailer {
	return &recordingMailer{}
}

func (m *recordingMailer) Send(_ context.Context, recipient, subject, htmlBody string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, recordedMessage{
		Recipient: recipient,
		Subject:   subject,
		Body:      htmlBody,
	})
	return nil
}

func (m *recordingMailer) sent() []recordedMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]recordedMessage, len(m.messages))
	copy(out, m.messages)
	return out
}
