package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	apiErrors "github.com/dtroode/identity-server/internal/api/errors"
	"github.com/dtroode/identity-server/internal/logger"
	"github.com/dtroode/identity-server/internal/model"
)

// Session issues and rotates access/refresh token pairs.
type Session struct {
	tokens     model.TokenManager
	refreshTTL time.Duration
	logger     *logger.Logger
	now        func() time.Time
}

func NewSession(tokens model.TokenManager, refreshTTL time.Duration, logger *logger.Logger) *Session {
	return &Session{
		tokens:     tokens,
		refreshTTL: refreshTTL,
		logger:     logger,
		now:        time.Now,
	}
}

// StartSessionParams describes a new session. A nil DeviceID starts a new device lineage.
type StartSessionParams struct {
	UserID    uuid.UUID
	IPAddress string
	DeviceID  *uuid.UUID
}

// Start supersedes every live session on the device and issues a new token pair.
// It must run inside tx.
func (s *Session) Start(ctx context.Context, tx model.Store, params StartSessionParams) (model.TokenPair, error) {
	now := s.now()

	deviceID := uuid.New()
	if params.DeviceID != nil {
		deviceID = *params.DeviceID
		expired, err := tx.Sessions().ExpireByDevice(ctx, deviceID, now)
		if err != nil {
			return model.TokenPair{}, fmt.Errorf("failed to expire device sessions: %w", err)
		}
		if expired > 0 {
			s.logger.Debug("Session service: superseded device sessions",
				"device_id", deviceID,
				"count", expired)
		}
	}

	session, err := tx.Sessions().Create(ctx, model.Session{
		ID:        uuid.New(),
		UserID:    params.UserID,
		DeviceID:  deviceID,
		IPAddress: params.IPAddress,
		ExpiresAt: now.Add(s.refreshTTL),
	})
	if err != nil {
		return model.TokenPair{}, fmt.Errorf("failed to create session: %w", err)
	}

	access, err := s.tokens.GenerateAccessToken(params.UserID)
	if err != nil {
		s.logger.Error("Session service: failed to sign access token",
			"user_id", params.UserID,
			"error", err.Error())
		return model.TokenPair{}, fmt.Errorf("issue access: %w", err)
	}

	refresh, err := s.tokens.GenerateRefreshToken(session.ID)
	if err != nil {
		s.logger.Error("Session service: failed to sign refresh token",
			"user_id", params.UserID,
			"error", err.Error())
		return model.TokenPair{}, fmt.Errorf("issue refresh: %w", err)
	}

	s.logger.Info("Session service: session started",
		"user_id", params.UserID,
		"user_session_id", session.ID,
		"device_id", deviceID)

	return model.TokenPair{
		AccessToken:   access,
		RefreshToken:  refresh,
		UserSessionID: session.ID,
		DeviceID:      deviceID,
	}, nil
}

// End expires a live session owned by userID. It must run inside tx.
func (s *Session) End(ctx context.Context, tx model.Store, userID, sessionID uuid.UUID) error {
	now := s.now()

	session, err := tx.Sessions().GetLiveForUpdate(ctx, sessionID, now)
	if errors.Is(err, model.ErrNotFound) {
		return apiErrors.New(apiErrors.CodeSessionInvalid)
	}
	if err != nil {
		return fmt.Errorf("failed to get session: %w", err)
	}
	if session.UserID != userID {
		return apiErrors.New(apiErrors.CodeNotAllowed)
	}

	if err := tx.Sessions().Expire(ctx, sessionID, now); err != nil {
		return fmt.Errorf("failed to expire session: %w", err)
	}

	s.logger.Info("Session service: session ended",
		"user_id", userID,
		"user_session_id", sessionID)

	return nil
}
