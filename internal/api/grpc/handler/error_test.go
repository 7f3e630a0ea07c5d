package handler

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	grpcContext "github.com/dtroode/identity-server/internal/api/grpc/context"
	apiErrors "github.com/dtroode/identity-server/internal/api/errors"
	"github.com/dtroode/identity-server/internal/model"
	"github.com/dtroode/identity-server/internal/testutil"
)

func TestHandleError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		in           error
		wantGRPCCode codes.Code
		wantCode     apiErrors.Code
		wantMsg      string
	}{
		{
			name:         "api error passthrough",
			in:           apiErrors.New(apiErrors.CodeEmailTaken),
			wantGRPCCode: codes.FailedPrecondition,
			wantCode:     apiErrors.CodeEmailTaken,
			wantMsg:      "email is already taken",
		},
		{
			name:         "wrapped api error",
			in:           fmt.Errorf("sign in: %w", apiErrors.New(apiErrors.CodeUserBanned)),
			wantGRPCCode: codes.PermissionDenied,
			wantCode:     apiErrors.CodeUserBanned,
			wantMsg:      "user is banned",
		},
		{
			name:         "model not found",
			in:           fmt.Errorf("get: %w", model.ErrNotFound),
			wantGRPCCode: codes.NotFound,
			wantCode:     apiErrors.CodeResourceNotFound,
			wantMsg:      "resource not found",
		},
		{
			name:         "other",
			in:           errors.New("boom"),
			wantGRPCCode: codes.Internal,
			wantCode:     apiErrors.CodeServerError,
			wantMsg:      "internal server error",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := handleError(testutil.MakeNoopLogger(), "/identity.v1.User/Fetch", tt.in)
			st, ok := status.FromError(err)
			assert.True(t, ok)
			assert.Equal(t, tt.wantGRPCCode, st.Code())
			assert.Equal(t, tt.wantMsg, st.Message())
			assert.True(t, apiErrors.HasCode(err, tt.wantCode))
		})
	}
}

func TestRequireUser(t *testing.T) {
	cm := grpcContext.NewManager()

	_, err := requireUser(cm, context.Background())
	assert.True(t, apiErrors.HasCode(err, apiErrors.CodeNotSignedIn))

	user := model.User{Name: "Jane"}
	got, err := requireUser(cm, cm.SetUserToContext(context.Background(), user))
	assert.NoError(t, err)
	assert.Equal(t, user, got)
}
