package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apiErrors "github.com/dtroode/identity-server/internal/api/errors"
	"github.com/dtroode/identity-server/internal/config"
	"github.com/dtroode/identity-server/internal/mocks"
	"github.com/dtroode/identity-server/internal/model"
	"github.com/dtroode/identity-server/internal/testutil"
	"github.com/dtroode/identity-server/internal/token"
)

const testCode = "123456"

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fixture struct {
	db       *testutil.MemDB
	clock    *fakeClock
	tokens   *token.JWT
	notifier *mocks.Notifier
	google   *mocks.IdentityProvider

	verification  *Verification
	sessions      *Session
	authenticator *Authenticator
	auth          *Auth
	users         *User
}

func testVerificationConfig() config.Verification {
	return config.Verification{
		TTL:          5 * time.Minute,
		ResendAfter:  30 * time.Second,
		MaxAttempts:  5,
		DemoContacts: []string{"+18005550100", "+18005550101"},
	}
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	log := testutil.MakeNoopLogger()
	f := &fixture{
		db:       testutil.NewMemDB(),
		clock:    newFakeClock(),
		notifier: mocks.NewNotifier(t),
		google:   mocks.NewIdentityProvider(t),
	}
	f.tokens = token.NewJWT("test-secret", 15*time.Minute, 7*24*time.Hour, token.WithClock(f.clock.Now))
	f.notifier.On("Send", mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()

	f.verification = NewVerification(f.db, f.notifier, testVerificationConfig(), log)
	f.verification.now = f.clock.Now
	f.verification.generateCode = func() (string, error) { return testCode, nil }

	f.sessions = NewSession(f.tokens, 7*24*time.Hour, log)
	f.sessions.now = f.clock.Now

	f.authenticator = NewAuthenticator(f.db.Users(), f.tokens, log)

	f.auth = NewAuth(f.db, f.tokens, f.verification, f.sessions, f.google, log)
	f.auth.now = f.clock.Now

	f.users = NewUser(f.db, f.verification, f.sessions, f.google, nil, log)

	return f
}

// verify runs begin and complete with the right code and returns the token.
func (f *fixture) verify(t *testing.T, emailOrPhone string, verificationType model.VerificationType, caller *model.User) string {
	t.Helper()

	ticket, err := f.verification.Begin(context.Background(), BeginVerificationParams{
		EmailOrPhone: emailOrPhone,
		Type:         verificationType,
		Caller:       caller,
	})
	require.NoError(t, err)

	tok, err := f.verification.Complete(context.Background(), ticket.ID, testCode)
	require.NoError(t, err)
	return tok
}

func (f *fixture) liveSessions(deviceID uuid.UUID) []model.Session {
	var live []model.Session
	for _, s := range f.db.AllSessions() {
		if s.DeviceID == deviceID && s.IsLive(f.clock.Now()) {
			live = append(live, s)
		}
	}
	return live
}

func strPtr(s string) *string { return &s }

func intPtr(i int) *int { return &i }

func assertCode(t *testing.T, err error, code apiErrors.Code) {
	t.Helper()
	require.Error(t, err)
	apiErr, ok := apiErrors.FromError(err)
	require.True(t, ok, "expected APIError, got %v", err)
	assert.Equal(t, code, apiErr.Code, "got %s", apiErr.Code)
}
