package middleware

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	grpcContext "github.com/dtroode/identity-server/internal/api/grpc/context"
	apiErrors "github.com/dtroode/identity-server/internal/api/errors"
	"github.com/dtroode/identity-server/internal/model"
	"github.com/dtroode/identity-server/internal/testutil"
)

type authenticatorMock struct{ mock.Mock }

func (m *authenticatorMock) Authenticate(ctx context.Context, token string) (model.User, error) {
	args := m.Called(ctx, token)
	return args.Get(0).(model.User), args.Error(1)
}

func TestAuthenticate_AuthFunc(t *testing.T) {
	t.Parallel()

	user := model.User{ID: uuid.New(), Name: "Jane"}

	tests := []struct {
		name         string
		header       string
		authErr      error
		callsService bool
		wantCode     apiErrors.Code
		wantGRPCCode codes.Code
		wantUser     bool
	}{
		{
			name:         "anonymous",
			wantGRPCCode: codes.OK,
		},
		{
			name:         "wrong scheme",
			header:       "Basic dXNlcjpwYXNz",
			wantCode:     apiErrors.CodeAccessTokenInvalid,
			wantGRPCCode: codes.Unauthenticated,
		},
		{
			name:         "expired token",
			header:       "Bearer expired",
			authErr:      apiErrors.New(apiErrors.CodeAccessTokenExpired),
			callsService: true,
			wantCode:     apiErrors.CodeAccessTokenExpired,
			wantGRPCCode: codes.Unauthenticated,
		},
		{
			name:         "banned user",
			header:       "Bearer banned",
			authErr:      apiErrors.New(apiErrors.CodeUserBanned),
			callsService: true,
			wantCode:     apiErrors.CodeUserBanned,
			wantGRPCCode: codes.PermissionDenied,
		},
		{
			name:         "store failure",
			header:       "Bearer token",
			authErr:      errors.New("connection reset"),
			callsService: true,
			wantCode:     apiErrors.CodeServerError,
			wantGRPCCode: codes.Internal,
		},
		{
			name:         "valid token",
			header:       "Bearer token",
			callsService: true,
			wantGRPCCode: codes.OK,
			wantUser:     true,
		},
		{
			name:         "scheme is case insensitive",
			header:       "bearer token",
			callsService: true,
			wantGRPCCode: codes.OK,
			wantUser:     true,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cm := grpcContext.NewManager()
			svc := &authenticatorMock{}
			if tt.callsService {
				svc.On("Authenticate", mock.Anything, mock.AnythingOfType("string")).Return(user, tt.authErr).Once()
			}
			m := NewAuthenticate(svc, cm, testutil.MakeNoopLogger())

			ctx := context.Background()
			if tt.header != "" {
				ctx = metadata.NewIncomingContext(ctx, metadata.Pairs("authorization", tt.header))
			}

			newCtx, err := m.AuthFunc(ctx)
			svc.AssertExpectations(t)

			if tt.wantGRPCCode != codes.OK {
				require.Error(t, err)
				st, ok := status.FromError(err)
				assert.True(t, ok)
				assert.Equal(t, tt.wantGRPCCode, st.Code())
				assert.True(t, apiErrors.HasCode(err, tt.wantCode))
				assert.Nil(t, newCtx)
				return
			}

			require.NoError(t, err)
			got, ok := cm.GetUserFromContext(newCtx)
			assert.Equal(t, tt.wantUser, ok)
			if tt.wantUser {
				assert.Equal(t, user.ID, got.ID)
			}
		})
	}
}
