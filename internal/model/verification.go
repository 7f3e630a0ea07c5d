package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// VerificationStore persists access verifications.
type VerificationStore interface {
	Create(ctx context.Context, verification Verification) (Verification, error)
	// GetLiveForUpdate returns the live verification for the contact and type, locking its row.
	GetLiveForUpdate(ctx context.Context, emailOrPhone string, verificationType VerificationType, now time.Time) (Verification, error)
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (Verification, error)
	// GetLiveByTokenForUpdate returns the live, completed verification holding token.
	GetLiveByTokenForUpdate(ctx context.Context, emailOrPhone, token string, verificationType VerificationType, now time.Time) (Verification, error)
	// Update persists Attempts, Token and ExpiresAt.
	Update(ctx context.Context, verification Verification) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// VerificationType is the privileged action a verification authorizes.
type VerificationType string

const (
	VerificationTypeDeleteUser  VerificationType = "delete-user"
	VerificationTypeSignIn      VerificationType = "sign-in"
	VerificationTypeSignUp      VerificationType = "sign-up"
	VerificationTypeUpdateEmail VerificationType = "update-email"
	VerificationTypeUpdatePhone VerificationType = "update-phone"
)

// Valid reports whether t is one of the known verification types.
func (t VerificationType) Valid() bool {
	switch t {
	case VerificationTypeDeleteUser,
		VerificationTypeSignIn,
		VerificationTypeSignUp,
		VerificationTypeUpdateEmail,
		VerificationTypeUpdatePhone:
		return true
	}
	return false
}

// Verification is a one-time code sent to an email address or phone number.
// Token is set once the code has been confirmed.
type Verification struct {
	ID           uuid.UUID
	EmailOrPhone string
	Type         VerificationType
	Code         string
	Token        *string
	Attempts     int
	ExpiresAt    time.Time
	ResendableAt time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsLive reports whether the verification has not expired at now.
func (v Verification) IsLive(now time.Time) bool {
	return v.ExpiresAt.After(now)
}

// VerificationTicket is returned to the caller when a verification begins.
type VerificationTicket struct {
	ID           uuid.UUID
	ExpiresAt    time.Time
	ResendableAt time.Time
}
