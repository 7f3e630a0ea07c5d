package model

import "context"

// Notifier delivers a verification code to an email address or phone number.
type Notifier interface {
	Send(ctx context.Context, emailOrPhone, code string) error
}

// ExternalIdentity is the set of claims returned by an identity provider.
type ExternalIdentity struct {
	UserID string
	Email  string
	Name   string
}

// IdentityProvider verifies third-party identity tokens.
type IdentityProvider interface {
	Verify(ctx context.Context, token string) (ExternalIdentity, error)
}
