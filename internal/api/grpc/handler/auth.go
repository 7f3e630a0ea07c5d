package handler

import (
	"context"

	"github.com/google/uuid"

	grpcContext "github.com/dtroode/identity-server/internal/api/grpc/context"
	"github.com/dtroode/identity-server/internal/api/grpc/identityv1"
	"github.com/dtroode/identity-server/internal/logger"
	"github.com/dtroode/identity-server/internal/model"
	"github.com/dtroode/identity-server/internal/service"
)

// AuthService defines sign-in, session rotation and sign-out.
type AuthService interface {
	SignIn(ctx context.Context, params service.SignInParams) (model.TokenPair, error)
	Reauthenticate(ctx context.Context, params service.ReauthenticateParams) (model.TokenPair, error)
	SignOut(ctx context.Context, caller model.User, sessionID uuid.UUID) error
}

// Auth handles gRPC endpoints of identity.v1.Auth.
type Auth struct {
	authService    AuthService
	contextManager model.ContextManager
	logger         *logger.Logger
}

// NewAuth creates a new Auth handler.
func NewAuth(authService AuthService, contextManager model.ContextManager, logger *logger.Logger) *Auth {
	return &Auth{
		authService:    authService,
		contextManager: contextManager,
		logger:         logger,
	}
}

// SignIn starts a session from a Google identity token or a completed
// sign-in verification.
func (h *Auth) SignIn(ctx context.Context, req *identityv1.SignInRequest) (*identityv1.TokenPair, error) {
	h.logger.Debug("Auth handler: processing sign in request",
		"google", req.GoogleIDToken != "")

	deviceID, err := parseOptionalID("deviceId", req.DeviceID)
	if err != nil {
		return nil, err
	}

	pair, err := h.authService.SignIn(ctx, service.SignInParams{
		GoogleIDToken: req.GoogleIDToken,
		EmailOrPhone:  req.EmailOrPhone,
		Token:         req.Token,
		LocalTZOffset: req.LocalTZOffset,
		DeviceID:      deviceID,
		IPAddress:     grpcContext.PeerIP(ctx),
	})
	if err != nil {
		return nil, handleError(h.logger, identityv1.AuthSignInFullMethod, err)
	}

	h.logger.Info("Auth handler: sign in completed",
		"session_id", pair.UserSessionID)

	return toTokenPair(pair), nil
}

// Reauthenticate rotates the session behind a refresh token.
func (h *Auth) Reauthenticate(ctx context.Context, req *identityv1.ReauthenticateRequest) (*identityv1.TokenPair, error) {
	h.logger.Debug("Auth handler: processing reauthenticate request")

	pair, err := h.authService.Reauthenticate(ctx, service.ReauthenticateParams{
		RefreshToken:  req.RefreshToken,
		LocalTZOffset: req.LocalTZOffset,
		IPAddress:     grpcContext.PeerIP(ctx),
	})
	if err != nil {
		return nil, handleError(h.logger, identityv1.AuthReauthenticateFullMethod, err)
	}

	h.logger.Info("Auth handler: reauthenticate completed",
		"session_id", pair.UserSessionID)

	return toTokenPair(pair), nil
}

// SignOut ends one of the caller's sessions.
func (h *Auth) SignOut(ctx context.Context, req *identityv1.SignOutRequest) (*identityv1.Empty, error) {
	caller, err := requireUser(h.contextManager, ctx)
	if err != nil {
		return nil, err
	}

	sessionID, err := parseID("userSessionId", req.UserSessionID)
	if err != nil {
		return nil, err
	}

	if err := h.authService.SignOut(ctx, caller, sessionID); err != nil {
		return nil, handleError(h.logger, identityv1.AuthSignOutFullMethod, err)
	}

	h.logger.Info("Auth handler: sign out completed",
		"user_id", caller.ID,
		"session_id", sessionID)

	return &identityv1.Empty{}, nil
}
