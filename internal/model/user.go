package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// UserStore defines persistence operations for users.
type UserStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)
	GetByPhone(ctx context.Context, phone string) (User, error)
	GetByGoogleUserID(ctx context.Context, googleUserID string) (User, error)
	Create(ctx context.Context, user User) (User, error)
	Update(ctx context.Context, user User) (User, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// User represents a registered identity. At least one of Email and Phone is set.
type User struct {
	ID            uuid.UUID
	Email         *string
	Phone         *string
	GoogleUserID  *string
	Name          string
	BannedAt      *time.Time
	LocalTZOffset int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// IsBanned reports whether the user has been banned.
func (u User) IsBanned() bool {
	return u.BannedAt != nil
}

// Owns reports whether the email or phone belongs to the user.
func (u User) Owns(emailOrPhone string) bool {
	if u.Email != nil && *u.Email == emailOrPhone {
		return true
	}
	return u.Phone != nil && *u.Phone == emailOrPhone
}

// MinTZOffset and MaxTZOffset bound User.LocalTZOffset, in hours.
const (
	MinTZOffset = -12
	MaxTZOffset = 12
)
