package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// SessionStore persists user sessions. A session is live while ExpiresAt is after now.
type SessionStore interface {
	Create(ctx context.Context, session Session) (Session, error)
	// GetLiveForUpdate returns a live session and locks its row until the transaction ends.
	GetLiveForUpdate(ctx context.Context, id uuid.UUID, now time.Time) (Session, error)
	// ExpireByDevice moves ExpiresAt of every live session on the device to now.
	ExpireByDevice(ctx context.Context, deviceID uuid.UUID, now time.Time) (int64, error)
	Expire(ctx context.Context, id uuid.UUID, now time.Time) error
	ListLiveByDevice(ctx context.Context, deviceID uuid.UUID, now time.Time) ([]Session, error)
}

// Session represents an issued refresh-token lineage on one device.
type Session struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	DeviceID  uuid.UUID
	IPAddress string
	ExpiresAt time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsLive reports whether the session has not expired at now.
func (s Session) IsLive(now time.Time) bool {
	return s.ExpiresAt.After(now)
}

// TokenPair is the result of starting or rotating a session.
type TokenPair struct {
	AccessToken   string
	RefreshToken  string
	UserSessionID uuid.UUID
	DeviceID      uuid.UUID
}
