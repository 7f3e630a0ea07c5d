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

// UserService defines account lifecycle operations.
type UserService interface {
	Create(ctx context.Context, params service.CreateUserParams) (model.User, model.TokenPair, error)
	Fetch(ctx context.Context, caller model.User) (model.User, error)
	Update(ctx context.Context, caller model.User, params service.UpdateUserParams) (model.User, error)
	UpdateEmail(ctx context.Context, caller model.User, email, token string) (model.User, error)
	UpdatePhone(ctx context.Context, caller model.User, phone, token string) (model.User, error)
	ConnectGoogle(ctx context.Context, caller model.User, idToken string) (model.User, error)
	Delete(ctx context.Context, caller model.User, emailOrPhone, token string) error
}

// PreferenceService reads and writes user preferences.
type PreferenceService interface {
	Load(ctx context.Context, userID uuid.UUID, name model.PreferenceName) (bool, error)
	Set(ctx context.Context, userID uuid.UUID, name model.PreferenceName, value bool) (bool, error)
}

// AvatarService stores profile pictures.
type AvatarService interface {
	Set(ctx context.Context, userID uuid.UUID, data []byte) (string, error)
	Get(ctx context.Context, userID uuid.UUID) ([]byte, string, error)
}

// User handles gRPC endpoints of identity.v1.User.
type User struct {
	userService       UserService
	preferenceService PreferenceService
	avatarService     AvatarService
	contextManager    model.ContextManager
	logger            *logger.Logger
}

// NewUser creates a new User handler.
func NewUser(
	userService UserService,
	preferenceService PreferenceService,
	avatarService AvatarService,
	contextManager model.ContextManager,
	logger *logger.Logger,
) *User {
	return &User{
		userService:       userService,
		preferenceService: preferenceService,
		avatarService:     avatarService,
		contextManager:    contextManager,
		logger:            logger,
	}
}

// Create signs a new user up and starts their first session.
func (h *User) Create(ctx context.Context, req *identityv1.CreateUserRequest) (*identityv1.CreateUserResponse, error) {
	h.logger.Debug("User handler: processing create request",
		"google", req.GoogleIDToken != "")

	deviceID, err := parseOptionalID("deviceId", req.DeviceID)
	if err != nil {
		return nil, err
	}

	user, pair, err := h.userService.Create(ctx, service.CreateUserParams{
		GoogleIDToken: req.GoogleIDToken,
		EmailOrPhone:  req.EmailOrPhone,
		Token:         req.Token,
		Name:          req.Name,
		LocalTZOffset: req.LocalTZOffset,
		DeviceID:      deviceID,
		IPAddress:     grpcContext.PeerIP(ctx),
	})
	if err != nil {
		return nil, handleError(h.logger, identityv1.UserCreateFullMethod, err)
	}

	h.logger.Info("User handler: user created",
		"user_id", user.ID)

	return &identityv1.CreateUserResponse{
		User:   *toUser(user),
		Tokens: *toTokenPair(pair),
	}, nil
}

func (h *User) Fetch(ctx context.Context, _ *identityv1.Empty) (*identityv1.User, error) {
	caller, err := requireUser(h.contextManager, ctx)
	if err != nil {
		return nil, err
	}

	user, err := h.userService.Fetch(ctx, caller)
	if err != nil {
		return nil, handleError(h.logger, identityv1.UserFetchFullMethod, err)
	}
	return toUser(user), nil
}

func (h *User) Update(ctx context.Context, req *identityv1.UpdateUserRequest) (*identityv1.User, error) {
	caller, err := requireUser(h.contextManager, ctx)
	if err != nil {
		return nil, err
	}

	user, err := h.userService.Update(ctx, caller, service.UpdateUserParams{
		Name:          req.Name,
		LocalTZOffset: req.LocalTZOffset,
	})
	if err != nil {
		return nil, handleError(h.logger, identityv1.UserUpdateFullMethod, err)
	}
	return toUser(user), nil
}

func (h *User) UpdateEmail(ctx context.Context, req *identityv1.UpdateContactRequest) (*identityv1.User, error) {
	caller, err := requireUser(h.contextManager, ctx)
	if err != nil {
		return nil, err
	}

	user, err := h.userService.UpdateEmail(ctx, caller, req.EmailOrPhone, req.Token)
	if err != nil {
		return nil, handleError(h.logger, identityv1.UserUpdateEmailFullMethod, err)
	}

	h.logger.Info("User handler: email updated",
		"user_id", user.ID)
	return toUser(user), nil
}

func (h *User) UpdatePhone(ctx context.Context, req *identityv1.UpdateContactRequest) (*identityv1.User, error) {
	caller, err := requireUser(h.contextManager, ctx)
	if err != nil {
		return nil, err
	}

	user, err := h.userService.UpdatePhone(ctx, caller, req.EmailOrPhone, req.Token)
	if err != nil {
		return nil, handleError(h.logger, identityv1.UserUpdatePhoneFullMethod, err)
	}

	h.logger.Info("User handler: phone updated",
		"user_id", user.ID)
	return toUser(user), nil
}

func (h *User) ConnectGoogle(ctx context.Context, req *identityv1.ConnectGoogleRequest) (*identityv1.User, error) {
	caller, err := requireUser(h.contextManager, ctx)
	if err != nil {
		return nil, err
	}

	user, err := h.userService.ConnectGoogle(ctx, caller, req.GoogleIDToken)
	if err != nil {
		return nil, handleError(h.logger, identityv1.UserConnectGoogleFullMethod, err)
	}
	return toUser(user), nil
}

// Delete removes the caller's account after a delete-user verification.
func (h *User) Delete(ctx context.Context, req *identityv1.DeleteUserRequest) (*identityv1.Empty, error) {
	caller, err := requireUser(h.contextManager, ctx)
	if err != nil {
		return nil, err
	}

	if err := h.userService.Delete(ctx, caller, req.EmailOrPhone, req.Token); err != nil {
		return nil, handleError(h.logger, identityv1.UserDeleteFullMethod, err)
	}

	h.logger.Info("User handler: user deleted",
		"user_id", caller.ID)
	return &identityv1.Empty{}, nil
}

func (h *User) LoadPreference(ctx context.Context, req *identityv1.LoadPreferenceRequest) (*identityv1.Preference, error) {
	caller, err := requireUser(h.contextManager, ctx)
	if err != nil {
		return nil, err
	}

	value, err := h.preferenceService.Load(ctx, caller.ID, model.PreferenceName(req.Name))
	if err != nil {
		return nil, handleError(h.logger, identityv1.UserLoadPreferenceFullMethod, err)
	}
	return &identityv1.Preference{Name: req.Name, Value: value}, nil
}

func (h *User) SetPreference(ctx context.Context, req *identityv1.Preference) (*identityv1.Preference, error) {
	caller, err := requireUser(h.contextManager, ctx)
	if err != nil {
		return nil, err
	}

	value, err := h.preferenceService.Set(ctx, caller.ID, model.PreferenceName(req.Name), req.Value)
	if err != nil {
		return nil, handleError(h.logger, identityv1.UserSetPreferenceFullMethod, err)
	}
	return &identityv1.Preference{Name: req.Name, Value: value}, nil
}

func (h *User) SetAvatar(ctx context.Context, req *identityv1.SetAvatarRequest) (*identityv1.Avatar, error) {
	caller, err := requireUser(h.contextManager, ctx)
	if err != nil {
		return nil, err
	}

	contentType, err := h.avatarService.Set(ctx, caller.ID, req.Data)
	if err != nil {
		return nil, handleError(h.logger, identityv1.UserSetAvatarFullMethod, err)
	}

	h.logger.Info("User handler: avatar stored",
		"user_id", caller.ID,
		"content_type", contentType,
		"size", len(req.Data))
	return &identityv1.Avatar{ContentType: contentType}, nil
}

func (h *User) GetAvatar(ctx context.Context, _ *identityv1.Empty) (*identityv1.Avatar, error) {
	caller, err := requireUser(h.contextManager, ctx)
	if err != nil {
		return nil, err
	}

	data, contentType, err := h.avatarService.Get(ctx, caller.ID)
	if err != nil {
		return nil, handleError(h.logger, identityv1.UserGetAvatarFullMethod, err)
	}
	return &identityv1.Avatar{Data: data, ContentType: contentType}, nil
}
