package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apiErrors "github.com/dtroode/identity-server/internal/api/errors"
	"github.com/dtroode/identity-server/internal/mocks"
	"github.com/dtroode/identity-server/internal/model"
	"github.com/dtroode/identity-server/internal/testutil"
)

func TestAuthenticator_Authenticate(t *testing.T) {
	t.Parallel()

	bannedAt := time.Now()

	tests := []struct {
		name     string
		token    func(f *fixture, active, banned model.User) string
		wantCode apiErrors.Code
	}{
		{
			name: "valid",
			token: func(f *fixture, active, _ model.User) string {
				tok, _ := f.tokens.GenerateAccessToken(active.ID)
				return tok
			},
		},
		{
			name: "expired",
			token: func(f *fixture, active, _ model.User) string {
				tok, _ := f.tokens.GenerateAccessToken(active.ID)
				f.clock.Advance(16 * time.Minute)
				return tok
			},
			wantCode: apiErrors.CodeAccessTokenExpired,
		},
		{
			name:     "garbage",
			token:    func(*fixture, model.User, model.User) string { return "not-a-token" },
			wantCode: apiErrors.CodeAccessTokenInvalid,
		},
		{
			name: "refresh token",
			token: func(f *fixture, _, _ model.User) string {
				tok, _ := f.tokens.GenerateRefreshToken(uuid.New())
				return tok
			},
			wantCode: apiErrors.CodeAccessTokenInvalid,
		},
		{
			name: "deleted user",
			token: func(f *fixture, _, _ model.User) string {
				tok, _ := f.tokens.GenerateAccessToken(uuid.New())
				return tok
			},
			wantCode: apiErrors.CodeAccessTokenInvalid,
		},
		{
			name: "banned user",
			token: func(f *fixture, _, banned model.User) string {
				tok, _ := f.tokens.GenerateAccessToken(banned.ID)
				return tok
			},
			wantCode: apiErrors.CodeUserBanned,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f := newFixture(t)
			active := f.db.PutUser(model.User{Email: strPtr("jane@example.com"), Name: "Jane"})
			banned := f.db.PutUser(model.User{Email: strPtr("troll@example.com"), Name: "Troll", BannedAt: &bannedAt})

			user, err := f.authenticator.Authenticate(context.Background(), tt.token(f, active, banned))
			if tt.wantCode != 0 {
				assertCode(t, err, tt.wantCode)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, active.ID, user.ID)
		})
	}
}

func TestAuthenticator_StoreFailure(t *testing.T) {
	userID := uuid.New()
	tokens := mocks.NewTokenManager(t)
	tokens.On("ParseAccessToken", "tok").Return(userID, nil).Once()

	users := failingUsers{err: errors.New("connection reset")}
	a := NewAuthenticator(users, tokens, testutil.MakeNoopLogger())

	_, err := a.Authenticate(context.Background(), "tok")
	require.Error(t, err)
	_, isAPIError := apiErrors.FromError(err)
	assert.False(t, isAPIError)
}

type failingUsers struct {
	model.UserStore
	err error
}

func (f failingUsers) GetByID(context.Context, uuid.UUID) (model.User, error) {
	return model.User{}, f.err
}
