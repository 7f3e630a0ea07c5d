package handler

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	grpcContext "github.com/dtroode/identity-server/internal/api/grpc/context"
	"github.com/dtroode/identity-server/internal/api/grpc/identityv1"
	apiErrors "github.com/dtroode/identity-server/internal/api/errors"
	"github.com/dtroode/identity-server/internal/model"
	"github.com/dtroode/identity-server/internal/service"
	"github.com/dtroode/identity-server/internal/testutil"
)

type userFixture struct {
	users       *userServiceMock
	preferences *preferenceServiceMock
	avatars     *avatarServiceMock
	cm          *grpcContext.Manager
	handler     *User
	caller      model.User
	ctx         context.Context
}

func newUserFixture(t *testing.T) *userFixture {
	t.Helper()

	f := &userFixture{
		users:       &userServiceMock{},
		preferences: &preferenceServiceMock{},
		avatars:     &avatarServiceMock{},
		cm:          grpcContext.NewManager(),
		caller:      model.User{ID: uuid.New(), Email: strPtr("jane@example.com"), Name: "Jane"},
	}
	f.handler = NewUser(f.users, f.preferences, f.avatars, f.cm, testutil.MakeNoopLogger())
	f.ctx = f.cm.SetUserToContext(context.Background(), f.caller)
	t.Cleanup(func() {
		f.users.AssertExpectations(t)
		f.preferences.AssertExpectations(t)
		f.avatars.AssertExpectations(t)
	})
	return f
}

func TestUser_RequiresSignIn(t *testing.T) {
	f := newUserFixture(t)
	anon := context.Background()

	calls := map[string]func() error{
		"Fetch":          func() error { _, err := f.handler.Fetch(anon, &identityv1.Empty{}); return err },
		"Update":         func() error { _, err := f.handler.Update(anon, &identityv1.UpdateUserRequest{}); return err },
		"UpdateEmail":    func() error { _, err := f.handler.UpdateEmail(anon, &identityv1.UpdateContactRequest{}); return err },
		"UpdatePhone":    func() error { _, err := f.handler.UpdatePhone(anon, &identityv1.UpdateContactRequest{}); return err },
		"ConnectGoogle":  func() error { _, err := f.handler.ConnectGoogle(anon, &identityv1.ConnectGoogleRequest{}); return err },
		"Delete":         func() error { _, err := f.handler.Delete(anon, &identityv1.DeleteUserRequest{}); return err },
		"LoadPreference": func() error { _, err := f.handler.LoadPreference(anon, &identityv1.LoadPreferenceRequest{}); return err },
		"SetPreference":  func() error { _, err := f.handler.SetPreference(anon, &identityv1.Preference{}); return err },
		"SetAvatar":      func() error { _, err := f.handler.SetAvatar(anon, &identityv1.SetAvatarRequest{}); return err },
		"GetAvatar":      func() error { _, err := f.handler.GetAvatar(anon, &identityv1.Empty{}); return err },
	}
	for name, call := range calls {
		assert.True(t, apiErrors.HasCode(call(), apiErrors.CodeNotSignedIn), name)
	}
}

func TestUser_Create(t *testing.T) {
	f := newUserFixture(t)
	created := model.User{ID: uuid.New(), Phone: strPtr("+14155552671"), Name: "Joe", LocalTZOffset: -5}
	pair := model.TokenPair{AccessToken: "acc", RefreshToken: "ref", UserSessionID: uuid.New(), DeviceID: uuid.New()}

	f.users.On("Create", mock.Anything, service.CreateUserParams{
		EmailOrPhone:  "+14155552671",
		Token:         "tok",
		Name:          "Joe",
		LocalTZOffset: -5,
		IPAddress:     "203.0.113.7",
	}).Return(created, pair, nil).Once()

	out, err := f.handler.Create(peerContext(), &identityv1.CreateUserRequest{
		EmailOrPhone:  "+14155552671",
		Token:         "tok",
		Name:          "Joe",
		LocalTZOffset: -5,
	})
	require.NoError(t, err)
	assert.Equal(t, created.ID.String(), out.User.UserID)
	assert.Equal(t, "+14155552671", *out.User.Phone)
	assert.Nil(t, out.User.Email)
	assert.False(t, out.User.GoogleConnected)
	assert.Equal(t, "acc", out.Tokens.AccessToken)

	_, err = f.handler.Create(context.Background(), &identityv1.CreateUserRequest{DeviceID: "nope"})
	assert.True(t, apiErrors.HasCode(err, apiErrors.CodeRequestDataInvalid))
}

func TestUser_Profile(t *testing.T) {
	f := newUserFixture(t)
	name := "Janet"
	updated := f.caller
	updated.Name = name
	updated.GoogleUserID = strPtr("g-1")

	f.users.On("Fetch", mock.Anything, f.caller).Return(f.caller, nil).Once()
	f.users.On("Update", mock.Anything, f.caller, service.UpdateUserParams{Name: &name}).Return(updated, nil).Once()
	f.users.On("UpdateEmail", mock.Anything, f.caller, "janet@example.com", "tok").Return(model.User{}, apiErrors.New(apiErrors.CodeAccessNotVerified)).Once()
	f.users.On("ConnectGoogle", mock.Anything, f.caller, "id-token").Return(updated, nil).Once()
	f.users.On("Delete", mock.Anything, f.caller, "jane@example.com", "tok").Return(nil).Once()

	got, err := f.handler.Fetch(f.ctx, &identityv1.Empty{})
	require.NoError(t, err)
	assert.Equal(t, "Jane", got.Name)

	got, err = f.handler.Update(f.ctx, &identityv1.UpdateUserRequest{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Janet", got.Name)

	_, err = f.handler.UpdateEmail(f.ctx, &identityv1.UpdateContactRequest{EmailOrPhone: "janet@example.com", Token: "tok"})
	assert.True(t, apiErrors.HasCode(err, apiErrors.CodeAccessNotVerified))

	got, err = f.handler.ConnectGoogle(f.ctx, &identityv1.ConnectGoogleRequest{GoogleIDToken: "id-token"})
	require.NoError(t, err)
	assert.True(t, got.GoogleConnected)

	_, err = f.handler.Delete(f.ctx, &identityv1.DeleteUserRequest{EmailOrPhone: "jane@example.com", Token: "tok"})
	require.NoError(t, err)
}

func TestUser_PreferencesAndAvatar(t *testing.T) {
	f := newUserFixture(t)
	png := []byte("\x89PNG\r\n\x1a\n")

	f.preferences.On("Load", mock.Anything, f.caller.ID, model.PreferenceChatMessageNotification).Return(true, nil).Once()
	f.preferences.On("Set", mock.Anything, f.caller.ID, model.PreferenceChatMessageNotification, false).Return(false, nil).Once()
	f.avatars.On("Set", mock.Anything, f.caller.ID, png).Return("image/png", nil).Once()
	f.avatars.On("Get", mock.Anything, f.caller.ID).Return(png, "image/png", nil).Once()
	f.avatars.On("Get", mock.Anything, f.caller.ID).Return(nil, "", apiErrors.New(apiErrors.CodeResourceNotFound)).Once()

	pref, err := f.handler.LoadPreference(f.ctx, &identityv1.LoadPreferenceRequest{Name: "chat-message-notification"})
	require.NoError(t, err)
	assert.True(t, pref.Value)

	pref, err = f.handler.SetPreference(f.ctx, &identityv1.Preference{Name: "chat-message-notification", Value: false})
	require.NoError(t, err)
	assert.False(t, pref.Value)

	avatar, err := f.handler.SetAvatar(f.ctx, &identityv1.SetAvatarRequest{Data: png})
	require.NoError(t, err)
	assert.Equal(t, "image/png", avatar.ContentType)
	assert.Empty(t, avatar.Data)

	avatar, err = f.handler.GetAvatar(f.ctx, &identityv1.Empty{})
	require.NoError(t, err)
	assert.Equal(t, png, avatar.Data)

	_, err = f.handler.GetAvatar(f.ctx, &identityv1.Empty{})
	assert.True(t, apiErrors.HasCode(err, apiErrors.CodeResourceNotFound))
}
