package service

import (
	"context"
	"errors"
	"fmt"

	apiErrors "github.com/dtroode/identity-server/internal/api/errors"
	"github.com/dtroode/identity-server/internal/logger"
	"github.com/dtroode/identity-server/internal/model"
)

// Authenticator resolves bearer access tokens to users.
type Authenticator struct {
	users  model.UserStore
	tokens model.TokenManager
	logger *logger.Logger
}

func NewAuthenticator(users model.UserStore, tokens model.TokenManager, logger *logger.Logger) *Authenticator {
	return &Authenticator{users: users, tokens: tokens, logger: logger}
}

// Authenticate returns the user the access token was issued to.
func (a *Authenticator) Authenticate(ctx context.Context, accessToken string) (model.User, error) {
	userID, err := a.tokens.ParseAccessToken(accessToken)
	if errors.Is(err, model.ErrTokenExpired) {
		return model.User{}, apiErrors.New(apiErrors.CodeAccessTokenExpired)
	}
	if err != nil {
		return model.User{}, apiErrors.New(apiErrors.CodeAccessTokenInvalid)
	}

	user, err := a.users.GetByID(ctx, userID)
	if errors.Is(err, model.ErrNotFound) {
		a.logger.Debug("Authenticator: token issued to missing user",
			"user_id", userID)
		return model.User{}, apiErrors.New(apiErrors.CodeAccessTokenInvalid)
	}
	if err != nil {
		return model.User{}, fmt.Errorf("failed to get user: %w", err)
	}

	if user.IsBanned() {
		a.logger.Info("Authenticator: banned user rejected",
			"user_id", userID)
		return model.User{}, apiErrors.New(apiErrors.CodeUserBanned)
	}

	return user, nil
}
