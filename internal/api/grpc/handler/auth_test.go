package handler

import (
	"context"
	"errors"
	"net"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/peer"

	grpcContext "github.com/dtroode/identity-server/internal/api/grpc/context"
	"github.com/dtroode/identity-server/internal/api/grpc/identityv1"
	apiErrors "github.com/dtroode/identity-server/internal/api/errors"
	"github.com/dtroode/identity-server/internal/model"
	"github.com/dtroode/identity-server/internal/service"
	"github.com/dtroode/identity-server/internal/testutil"
)

func peerContext() context.Context {
	return peer.NewContext(context.Background(), &peer.Peer{
		Addr: &net.TCPAddr{IP: net.ParseIP("203.0.113.7"), Port: 50000},
	})
}

func TestAuth_SignIn(t *testing.T) {
	t.Parallel()

	deviceID := uuid.New()
	pair := model.TokenPair{AccessToken: "acc", RefreshToken: "ref", UserSessionID: uuid.New(), DeviceID: deviceID}

	tests := []struct {
		name     string
		req      *identityv1.SignInRequest
		setup    func(m *authServiceMock)
		wantCode apiErrors.Code
	}{
		{
			name: "contact with device",
			req:  &identityv1.SignInRequest{EmailOrPhone: "jane@example.com", Token: "tok", DeviceID: deviceID.String()},
			setup: func(m *authServiceMock) {
				m.On("SignIn", mock.Anything, service.SignInParams{
					EmailOrPhone: "jane@example.com",
					Token:        "tok",
					DeviceID:     &deviceID,
					IPAddress:    "203.0.113.7",
				}).Return(pair, nil).Once()
			},
		},
		{
			name:     "malformed device",
			req:      &identityv1.SignInRequest{EmailOrPhone: "jane@example.com", Token: "tok", DeviceID: "nope"},
			setup:    func(*authServiceMock) {},
			wantCode: apiErrors.CodeRequestDataInvalid,
		},
		{
			name: "service rejects",
			req:  &identityv1.SignInRequest{EmailOrPhone: "jane@example.com", Token: "tok"},
			setup: func(m *authServiceMock) {
				m.On("SignIn", mock.Anything, mock.Anything).Return(model.TokenPair{}, apiErrors.New(apiErrors.CodeAccessNotVerified)).Once()
			},
			wantCode: apiErrors.CodeAccessNotVerified,
		},
		{
			name: "infrastructure failure",
			req:  &identityv1.SignInRequest{GoogleIDToken: "id"},
			setup: func(m *authServiceMock) {
				m.On("SignIn", mock.Anything, mock.Anything).Return(model.TokenPair{}, errors.New("db down")).Once()
			},
			wantCode: apiErrors.CodeServerError,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			svc := &authServiceMock{}
			tt.setup(svc)
			h := NewAuth(svc, grpcContext.NewManager(), testutil.MakeNoopLogger())

			out, err := h.SignIn(peerContext(), tt.req)
			svc.AssertExpectations(t)
			if tt.wantCode != 0 {
				assert.Nil(t, out)
				assert.True(t, apiErrors.HasCode(err, tt.wantCode), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "acc", out.AccessToken)
			assert.Equal(t, "ref", out.RefreshToken)
			assert.Equal(t, deviceID.String(), out.DeviceID)
		})
	}
}

func TestAuth_Reauthenticate(t *testing.T) {
	svc := &authServiceMock{}
	offset := 3
	svc.On("Reauthenticate", mock.Anything, service.ReauthenticateParams{
		RefreshToken:  "ref",
		LocalTZOffset: &offset,
		IPAddress:     "203.0.113.7",
	}).Return(model.TokenPair{AccessToken: "acc2", RefreshToken: "ref2"}, nil).Once()
	svc.On("Reauthenticate", mock.Anything, mock.Anything).Return(model.TokenPair{}, apiErrors.New(apiErrors.CodeSessionInvalid)).Once()

	h := NewAuth(svc, grpcContext.NewManager(), testutil.MakeNoopLogger())

	out, err := h.Reauthenticate(peerContext(), &identityv1.ReauthenticateRequest{RefreshToken: "ref", LocalTZOffset: &offset})
	require.NoError(t, err)
	assert.Equal(t, "acc2", out.AccessToken)

	_, err = h.Reauthenticate(peerContext(), &identityv1.ReauthenticateRequest{RefreshToken: "ref"})
	assert.True(t, apiErrors.HasCode(err, apiErrors.CodeSessionInvalid))
	svc.AssertExpectations(t)
}

func TestAuth_SignOut(t *testing.T) {
	cm := grpcContext.NewManager()
	caller := model.User{ID: uuid.New(), Name: "Jane"}
	sessionID := uuid.New()

	svc := &authServiceMock{}
	svc.On("SignOut", mock.Anything, caller, sessionID).Return(nil).Once()
	h := NewAuth(svc, cm, testutil.MakeNoopLogger())

	_, err := h.SignOut(context.Background(), &identityv1.SignOutRequest{UserSessionID: sessionID.String()})
	assert.True(t, apiErrors.HasCode(err, apiErrors.CodeNotSignedIn))

	ctx := cm.SetUserToContext(context.Background(), caller)
	_, err = h.SignOut(ctx, &identityv1.SignOutRequest{UserSessionID: "bad"})
	assert.True(t, apiErrors.HasCode(err, apiErrors.CodeRequestDataInvalid))

	_, err = h.SignOut(ctx, &identityv1.SignOutRequest{UserSessionID: sessionID.String()})
	require.NoError(t, err)
	svc.AssertExpectations(t)
}
