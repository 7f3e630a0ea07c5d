package model

import "errors"

var (
	ErrNotFound = errors.New("not found")

	ErrEmailTaken        = errors.New("email already taken")
	ErrPhoneTaken        = errors.New("phone already taken")
	ErrGoogleUserIDTaken = errors.New("google user id already taken")

	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("token invalid")

	ErrIdentityProviderUnsupported = errors.New("identity provider not configured")
	ErrIdentityTokenInvalid        = errors.New("identity token invalid")
)
