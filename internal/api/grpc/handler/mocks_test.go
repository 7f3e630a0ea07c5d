package handler

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/dtroode/identity-server/internal/model"
	"github.com/dtroode/identity-server/internal/service"
)

type authServiceMock struct{ mock.Mock }

func (m *authServiceMock) SignIn(ctx context.Context, params service.SignInParams) (model.TokenPair, error) {
	args := m.Called(ctx, params)
	return args.Get(0).(model.TokenPair), args.Error(1)
}

func (m *authServiceMock) Reauthenticate(ctx context.Context, params service.ReauthenticateParams) (model.TokenPair, error) {
	args := m.Called(ctx, params)
	return args.Get(0).(model.TokenPair), args.Error(1)
}

func (m *authServiceMock) SignOut(ctx context.Context, caller model.User, sessionID uuid.UUID) error {
	return m.Called(ctx, caller, sessionID).Error(0)
}

type verificationServiceMock struct{ mock.Mock }

func (m *verificationServiceMock) Begin(ctx context.Context, params service.BeginVerificationParams) (model.VerificationTicket, error) {
	args := m.Called(ctx, params)
	return args.Get(0).(model.VerificationTicket), args.Error(1)
}

func (m *verificationServiceMock) Complete(ctx context.Context, id uuid.UUID, code string) (string, error) {
	args := m.Called(ctx, id, code)
	return args.String(0), args.Error(1)
}

type userServiceMock struct{ mock.Mock }

func (m *userServiceMock) Create(ctx context.Context, params service.CreateUserParams) (model.User, model.TokenPair, error) {
	args := m.Called(ctx, params)
	return args.Get(0).(model.User), args.Get(1).(model.TokenPair), args.Error(2)
}

func (m *userServiceMock) Fetch(ctx context.Context, caller model.User) (model.User, error) {
	args := m.Called(ctx, caller)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *userServiceMock) Update(ctx context.Context, caller model.User, params service.UpdateUserParams) (model.User, error) {
	args := m.Called(ctx, caller, params)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *userServiceMock) UpdateEmail(ctx context.Context, caller model.User, email, token string) (model.User, error) {
	args := m.Called(ctx, caller, email, token)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *userServiceMock) UpdatePhone(ctx context.Context, caller model.User, phone, token string) (model.User, error) {
	args := m.Called(ctx, caller, phone, token)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *userServiceMock) ConnectGoogle(ctx context.Context, caller model.User, idToken string) (model.User, error) {
	args := m.Called(ctx, caller, idToken)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *userServiceMock) Delete(ctx context.Context, caller model.User, emailOrPhone, token string) error {
	return m.Called(ctx, caller, emailOrPhone, token).Error(0)
}

type preferenceServiceMock struct{ mock.Mock }

func (m *preferenceServiceMock) Load(ctx context.Context, userID uuid.UUID, name model.PreferenceName) (bool, error) {
	args := m.Called(ctx, userID, name)
	return args.Bool(0), args.Error(1)
}

func (m *preferenceServiceMock) Set(ctx context.Context, userID uuid.UUID, name model.PreferenceName, value bool) (bool, error) {
	args := m.Called(ctx, userID, name, value)
	return args.Bool(0), args.Error(1)
}

type avatarServiceMock struct{ mock.Mock }

func (m *avatarServiceMock) Set(ctx context.Context, userID uuid.UUID, data []byte) (string, error) {
	args := m.Called(ctx, userID, data)
	return args.String(0), args.Error(1)
}

func (m *avatarServiceMock) Get(ctx context.Context, userID uuid.UUID) ([]byte, string, error) {
	args := m.Called(ctx, userID)
	data, _ := args.Get(0).([]byte)
	return data, args.String(1), args.Error(2)
}
