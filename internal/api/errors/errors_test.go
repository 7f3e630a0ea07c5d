package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var allCodes = []Code{
	CodeRequestDataInvalid,
	CodeAccessTokenInvalid, CodeAccessTokenExpired, CodeNotSignedIn, CodeRefreshTokenInvalid, CodeSessionInvalid,
	CodeNotAllowed, CodeUserBanned,
	CodeEndpointNotFound, CodeResourceNotFound, CodeUserNotFound,
	CodeAccessVerificationCodeExpired, CodeAccessVerificationCodeInvalid, CodeAccessVerificationAttemptsExceeded,
	CodeAccessVerificationAlreadyCompleted, CodeAccessNotVerified, CodeFileTooLarge, CodeFileInvalid,
	CodeEmailTaken, CodePhoneNumberTaken, CodeGoogleAuthenticationNotSupported, CodeGoogleIdentityTokenInvalid,
	CodeGoogleIdentityExistsAlready,
	CodeAccessVerificationBeginRateLimit, CodeRequestRateLimit,
	CodeServerError,
}

func TestCode_Mappings(t *testing.T) {
	t.Parallel()

	for _, c := range allCodes {
		c := c
		t.Run(c.String(), func(t *testing.T) {
			t.Parallel()

			assert.NotEqual(t, "Unknown", c.String())
			assert.NotEqual(t, "unknown error", c.Message())

			// The thousands digit of every code matches its status group.
			wantStatus := map[int]int{
				1: http.StatusBadRequest,
				2: http.StatusUnauthorized,
				3: http.StatusForbidden,
				4: http.StatusNotFound,
				5: http.StatusUnprocessableEntity,
				6: http.StatusTooManyRequests,
				7: http.StatusInternalServerError,
			}[int(c)/1000]
			assert.Equal(t, wantStatus, c.StatusCode())
		})
	}
}

func TestCode_GRPCCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		code Code
		want codes.Code
	}{
		{CodeRequestDataInvalid, codes.InvalidArgument},
		{CodeAccessTokenExpired, codes.Unauthenticated},
		{CodeUserBanned, codes.PermissionDenied},
		{CodeUserNotFound, codes.NotFound},
		{CodeAccessVerificationCodeInvalid, codes.FailedPrecondition},
		{CodeAccessVerificationBeginRateLimit, codes.ResourceExhausted},
		{CodeServerError, codes.Internal},
		{Code(42), codes.Internal},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.code.GRPCCode(), tt.code.String())
	}
}

func TestAPIError_StatusRoundTrip(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  *APIError
	}{
		{name: "plain", err: New(CodeUserNotFound)},
		{name: "fields", err: NewRequestDataInvalid("emailOrPhone", "type")},
		{name: "timeout", err: NewRateLimited(CodeAccessVerificationBeginRateLimit, 12345*time.Millisecond)},
		{name: "custom message", err: New(CodeNotAllowed).WithMessage("contact does not belong to caller")},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			wireErr := tt.err.GRPCStatus().Err()
			st, ok := status.FromError(wireErr)
			require.True(t, ok)
			assert.Equal(t, tt.err.Code.GRPCCode(), st.Code())

			got, ok := FromError(wireErr)
			require.True(t, ok)
			assert.Equal(t, tt.err.Code, got.Code)
			assert.Equal(t, tt.err.Message, got.Message)
			assert.Equal(t, tt.err.StatusCode, got.StatusCode)
			assert.Equal(t, tt.err.Fields, got.Fields)
			assert.Equal(t, tt.err.Timeout, got.Timeout)
		})
	}
}

func TestAPIError_TimeoutMillis(t *testing.T) {
	t.Parallel()

	assert.Equal(t, int64(0), New(CodeServerError).TimeoutMillis())
	assert.Equal(t, int64(1500), New(CodeServerError).WithTimeout(1500*time.Millisecond).TimeoutMillis())
	assert.Equal(t, int64(2), New(CodeServerError).WithTimeout(1001*time.Microsecond).TimeoutMillis())
}

func TestFromError(t *testing.T) {
	t.Parallel()

	t.Run("wrapped local error", func(t *testing.T) {
		err := fmt.Errorf("begin: %w", New(CodeEmailTaken))
		got, ok := FromError(err)
		require.True(t, ok)
		assert.Equal(t, CodeEmailTaken, got.Code)
	})

	t.Run("plain status", func(t *testing.T) {
		_, ok := FromError(status.Error(codes.Unavailable, "down"))
		assert.False(t, ok)
	})

	t.Run("non grpc error", func(t *testing.T) {
		_, ok := FromError(stderrors.New("boom"))
		assert.False(t, ok)
	})

	t.Run("nil", func(t *testing.T) {
		_, ok := FromError(nil)
		assert.False(t, ok)
	})
}

func TestAPIError_Is(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("wrapped: %w", New(CodeSessionInvalid))
	assert.ErrorIs(t, err, New(CodeSessionInvalid))
	assert.NotErrorIs(t, err, New(CodeRefreshTokenInvalid))
	assert.True(t, HasCode(err, CodeRefreshTokenInvalid, CodeSessionInvalid))
	assert.False(t, HasCode(err, CodeUserBanned))
}
