package errors

import (
	"net/http"

	"google.golang.org/grpc/codes"
)

// Code is a stable numeric error identifier shared with clients.
// The thousands digit groups codes by HTTP-equivalent status.
type Code int

const (
	CodeRequestDataInvalid Code = 1000

	CodeAccessTokenInvalid  Code = 2000
	CodeAccessTokenExpired  Code = 2001
	CodeNotSignedIn         Code = 2002
	CodeRefreshTokenInvalid Code = 2003
	CodeSessionInvalid      Code = 2004

	CodeNotAllowed Code = 3000
	CodeUserBanned Code = 3001

	CodeEndpointNotFound Code = 4000
	CodeResourceNotFound Code = 4001
	CodeUserNotFound     Code = 4002

	CodeAccessVerificationCodeExpired      Code = 5000
	CodeAccessVerificationCodeInvalid      Code = 5001
	CodeAccessVerificationAttemptsExceeded Code = 5002
	CodeAccessVerificationAlreadyCompleted Code = 5003
	CodeAccessNotVerified                  Code = 5004
	CodeFileTooLarge                       Code = 5005
	CodeFileInvalid                        Code = 5006
	CodeEmailTaken                         Code = 5007
	CodePhoneNumberTaken                   Code = 5008
	CodeGoogleAuthenticationNotSupported   Code = 5009
	CodeGoogleIdentityTokenInvalid         Code = 5010
	CodeGoogleIdentityExistsAlready        Code = 5011

	CodeAccessVerificationBeginRateLimit Code = 6000
	CodeRequestRateLimit                 Code = 6001

	CodeServerError Code = 7000
)

// String returns the symbolic name of the code.
func (c Code) String() string {
	switch c {
	case CodeRequestDataInvalid:
		return "RequestDataInvalid"
	case CodeAccessTokenInvalid:
		return "AccessTokenInvalid"
	case CodeAccessTokenExpired:
		return "AccessTokenExpired"
	case CodeNotSignedIn:
		return "NotSignedIn"
	case CodeRefreshTokenInvalid:
		return "RefreshTokenInvalid"
	case CodeSessionInvalid:
		return "SessionInvalid"
	case CodeNotAllowed:
		return "NotAllowed"
	case CodeUserBanned:
		return "UserBanned"
	case CodeEndpointNotFound:
		return "EndpointNotFound"
	case CodeResourceNotFound:
		return "ResourceNotFound"
	case CodeUserNotFound:
		return "UserNotFound"
	case CodeAccessVerificationCodeExpired:
		return "AccessVerificationCodeExpired"
	case CodeAccessVerificationCodeInvalid:
		return "AccessVerificationCodeInvalid"
	case CodeAccessVerificationAttemptsExceeded:
		return "AccessVerificationAttemptsExceeded"
	case CodeAccessVerificationAlreadyCompleted:
		return "AccessVerificationAlreadyCompleted"
	case CodeAccessNotVerified:
		return "AccessNotVerified"
	case CodeFileTooLarge:
		return "FileTooLarge"
	case CodeFileInvalid:
		return "FileInvalid"
	case CodeEmailTaken:
		return "EmailTaken"
	case CodePhoneNumberTaken:
		return "PhoneNumberTaken"
	case CodeGoogleAuthenticationNotSupported:
		return "GoogleAuthenticationNotSupported"
	case CodeGoogleIdentityTokenInvalid:
		return "GoogleIdentityTokenInvalid"
	case CodeGoogleIdentityExistsAlready:
		return "GoogleIdentityExistsAlready"
	case CodeAccessVerificationBeginRateLimit:
		return "AccessVerificationBeginRateLimit"
	case CodeRequestRateLimit:
		return "RequestRateLimit"
	case CodeServerError:
		return "ServerError"
	}
	return "Unknown"
}

// Message returns the default human-readable message for the code.
func (c Code) Message() string {
	switch c {
	case CodeRequestDataInvalid:
		return "request data is invalid"
	case CodeAccessTokenInvalid:
		return "access token is invalid"
	case CodeAccessTokenExpired:
		return "access token has expired"
	case CodeNotSignedIn:
		return "not signed in"
	case CodeRefreshTokenInvalid:
		return "refresh token is invalid"
	case CodeSessionInvalid:
		return "session is invalid"
	case CodeNotAllowed:
		return "not allowed"
	case CodeUserBanned:
		return "user is banned"
	case CodeEndpointNotFound:
		return "endpoint not found"
	case CodeResourceNotFound:
		return "resource not found"
	case CodeUserNotFound:
		return "user not found"
	case CodeAccessVerificationCodeExpired:
		return "verification code has expired"
	case CodeAccessVerificationCodeInvalid:
		return "verification code is invalid"
	case CodeAccessVerificationAttemptsExceeded:
		return "verification attempts exceeded"
	case CodeAccessVerificationAlreadyCompleted:
		return "verification already completed"
	case CodeAccessNotVerified:
		return "access not verified"
	case CodeFileTooLarge:
		return "file is too large"
	case CodeFileInvalid:
		return "file is invalid"
	case CodeEmailTaken:
		return "email is already taken"
	case CodePhoneNumberTaken:
		return "phone number is already taken"
	case CodeGoogleAuthenticationNotSupported:
		return "google authentication is not supported"
	case CodeGoogleIdentityTokenInvalid:
		return "google identity token is invalid"
	case CodeGoogleIdentityExistsAlready:
		return "google identity is already connected"
	case CodeAccessVerificationBeginRateLimit:
		return "verification was requested too recently"
	case CodeRequestRateLimit:
		return "too many requests"
	case CodeServerError:
		return "internal server error"
	}
	return "unknown error"
}

// StatusCode returns the HTTP-equivalent status for the code.
func (c Code) StatusCode() int {
	switch c {
	case CodeRequestDataInvalid:
		return http.StatusBadRequest
	case CodeAccessTokenInvalid,
		CodeAccessTokenExpired,
		CodeNotSignedIn,
		CodeRefreshTokenInvalid,
		CodeSessionInvalid:
		return http.StatusUnauthorized
	case CodeNotAllowed,
		CodeUserBanned:
		return http.StatusForbidden
	case CodeEndpointNotFound,
		CodeResourceNotFound,
		CodeUserNotFound:
		return http.StatusNotFound
	case CodeAccessVerificationCodeExpired,
		CodeAccessVerificationCodeInvalid,
		CodeAccessVerificationAttemptsExceeded,
		CodeAccessVerificationAlreadyCompleted,
		CodeAccessNotVerified,
		CodeFileTooLarge,
		CodeFileInvalid,
		CodeEmailTaken,
		CodePhoneNumberTaken,
		CodeGoogleAuthenticationNotSupported,
		CodeGoogleIdentityTokenInvalid,
		CodeGoogleIdentityExistsAlready:
		return http.StatusUnprocessableEntity
	case CodeAccessVerificationBeginRateLimit,
		CodeRequestRateLimit:
		return http.StatusTooManyRequests
	case CodeServerError:
		return http.StatusInternalServerError
	}
	return http.StatusInternalServerError
}

// GRPCCode returns the gRPC status code for the code.
func (c Code) GRPCCode() codes.Code {
	switch c.StatusCode() {
	case http.StatusBadRequest:
		return codes.InvalidArgument
	case http.StatusUnauthorized:
		return codes.Unauthenticated
	case http.StatusForbidden:
		return codes.PermissionDenied
	case http.StatusNotFound:
		return codes.NotFound
	case http.StatusUnprocessableEntity:
		return codes.FailedPrecondition
	case http.StatusTooManyRequests:
		return codes.ResourceExhausted
	}
	return codes.Internal
}
