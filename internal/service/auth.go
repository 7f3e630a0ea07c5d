package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	apiErrors "github.com/dtroode/identity-server/internal/api/errors"
	"github.com/dtroode/identity-server/internal/contact"
	"github.com/dtroode/identity-server/internal/logger"
	"github.com/dtroode/identity-server/internal/model"
)

type verificationConsumer interface {
	Consume(ctx context.Context, tx model.Store, emailOrPhone, token string, verificationType model.VerificationType) error
}

type sessionManager interface {
	Start(ctx context.Context, tx model.Store, params StartSessionParams) (model.TokenPair, error)
	End(ctx context.Context, tx model.Store, userID, sessionID uuid.UUID) error
}

// Auth signs users in, rotates their sessions and signs them out.
type Auth struct {
	db            model.Database
	tokens        model.TokenManager
	verifications verificationConsumer
	sessions      sessionManager
	google        model.IdentityProvider
	logger        *logger.Logger
	now           func() time.Time
}

// NewAuth creates the auth service. google may be nil when Google sign-in is not configured.
func NewAuth(
	db model.Database,
	tokens model.TokenManager,
	verifications verificationConsumer,
	sessions sessionManager,
	google model.IdentityProvider,
	logger *logger.Logger,
) *Auth {
	return &Auth{
		db:            db,
		tokens:        tokens,
		verifications: verifications,
		sessions:      sessions,
		google:        google,
		logger:        logger,
		now:           time.Now,
	}
}

// SignInParams identifies the user either by a Google identity token or by
// a contact and the token of a completed sign-in verification.
type SignInParams struct {
	GoogleIDToken string
	EmailOrPhone  string
	Token         string
	LocalTZOffset *int
	DeviceID      *uuid.UUID
	IPAddress     string
}

func (a *Auth) SignIn(ctx context.Context, params SignInParams) (model.TokenPair, error) {
	if err := validateTZOffset(params.LocalTZOffset); err != nil {
		return model.TokenPair{}, err
	}

	switch {
	case params.GoogleIDToken != "":
		return a.signInWithGoogle(ctx, params)
	case params.EmailOrPhone != "":
		return a.signInWithContact(ctx, params)
	default:
		return model.TokenPair{}, apiErrors.NewRequestDataInvalid("googleIdToken", "emailOrPhone")
	}
}

func (a *Auth) signInWithGoogle(ctx context.Context, params SignInParams) (model.TokenPair, error) {
	identity, err := verifyGoogle(ctx, a.google, params.GoogleIDToken)
	if err != nil {
		return model.TokenPair{}, err
	}

	var pair model.TokenPair
	err = a.db.InTx(ctx, func(ctx context.Context, tx model.Store) error {
		user, err := tx.Users().GetByGoogleUserID(ctx, identity.UserID)
		if errors.Is(err, model.ErrNotFound) {
			return apiErrors.New(apiErrors.CodeUserNotFound)
		}
		if err != nil {
			return fmt.Errorf("failed to get user by google id: %w", err)
		}
		if user.IsBanned() {
			return apiErrors.New(apiErrors.CodeUserBanned)
		}

		changed := applyTZOffset(&user, params.LocalTZOffset)
		email := strings.ToLower(identity.Email)
		if email != "" && !eqString(user.Email, email) {
			free, err := emailFree(ctx, tx.Users(), user.ID, email)
			if err != nil {
				return err
			}
			if free {
				user.Email = &email
				changed = true
			} else {
				a.logger.Warn("Auth service: google email belongs to another user",
					"user_id", user.ID)
			}
		}
		if changed {
			if _, err := tx.Users().Update(ctx, user); err != nil {
				return fmt.Errorf("failed to update user: %w", err)
			}
		}

		pair, err = a.sessions.Start(ctx, tx, StartSessionParams{
			UserID:    user.ID,
			IPAddress: params.IPAddress,
			DeviceID:  params.DeviceID,
		})
		return err
	})
	if err != nil {
		return model.TokenPair{}, a.fail("sign in with google", err)
	}

	return pair, nil
}

func (a *Auth) signInWithContact(ctx context.Context, params SignInParams) (model.TokenPair, error) {
	target, err := contact.Parse(params.EmailOrPhone)
	if err != nil {
		return model.TokenPair{}, apiErrors.NewRequestDataInvalid("emailOrPhone")
	}

	var pair model.TokenPair
	err = a.db.InTx(ctx, func(ctx context.Context, tx model.Store) error {
		user, err := userByContact(ctx, tx.Users(), target)
		if errors.Is(err, model.ErrNotFound) {
			return apiErrors.New(apiErrors.CodeUserNotFound)
		}
		if err != nil {
			return fmt.Errorf("failed to get user by contact: %w", err)
		}

		if err := a.verifications.Consume(ctx, tx, target.Value, params.Token, model.VerificationTypeSignIn); err != nil {
			return err
		}
		if user.IsBanned() {
			return apiErrors.New(apiErrors.CodeUserBanned)
		}

		if applyTZOffset(&user, params.LocalTZOffset) {
			if _, err := tx.Users().Update(ctx, user); err != nil {
				return fmt.Errorf("failed to update user: %w", err)
			}
		}

		pair, err = a.sessions.Start(ctx, tx, StartSessionParams{
			UserID:    user.ID,
			IPAddress: params.IPAddress,
			DeviceID:  params.DeviceID,
		})
		return err
	})
	if err != nil {
		return model.TokenPair{}, a.fail("sign in with contact", err)
	}

	return pair, nil
}

// ReauthenticateParams carries a refresh token to rotate.
type ReauthenticateParams struct {
	RefreshToken  string
	LocalTZOffset *int
	IPAddress     string
}

// Reauthenticate rotates the session behind a refresh token. The presented
// session is superseded, so the same refresh token never works twice.
func (a *Auth) Reauthenticate(ctx context.Context, params ReauthenticateParams) (model.TokenPair, error) {
	if err := validateTZOffset(params.LocalTZOffset); err != nil {
		return model.TokenPair{}, err
	}

	sessionID, err := a.tokens.ParseRefreshToken(params.RefreshToken)
	if err != nil {
		return model.TokenPair{}, apiErrors.New(apiErrors.CodeRefreshTokenInvalid)
	}

	var pair model.TokenPair
	err = a.db.InTx(ctx, func(ctx context.Context, tx model.Store) error {
		session, err := tx.Sessions().GetLiveForUpdate(ctx, sessionID, a.now())
		if errors.Is(err, model.ErrNotFound) {
			return apiErrors.New(apiErrors.CodeSessionInvalid)
		}
		if err != nil {
			return fmt.Errorf("failed to get session: %w", err)
		}

		user, err := tx.Users().GetByID(ctx, session.UserID)
		if errors.Is(err, model.ErrNotFound) {
			return apiErrors.New(apiErrors.CodeSessionInvalid)
		}
		if err != nil {
			return fmt.Errorf("failed to get user: %w", err)
		}
		if user.IsBanned() {
			return apiErrors.New(apiErrors.CodeUserBanned)
		}

		if applyTZOffset(&user, params.LocalTZOffset) {
			if _, err := tx.Users().Update(ctx, user); err != nil {
				return fmt.Errorf("failed to update user: %w", err)
			}
		}

		pair, err = a.sessions.Start(ctx, tx, StartSessionParams{
			UserID:    user.ID,
			IPAddress: params.IPAddress,
			DeviceID:  &session.DeviceID,
		})
		return err
	})
	if err != nil {
		return model.TokenPair{}, a.fail("reauthenticate", err)
	}

	a.logger.Debug("Auth service: session rotated",
		"previous_session_id", sessionID,
		"user_session_id", pair.UserSessionID)

	return pair, nil
}

// SignOut ends one of the caller's sessions.
func (a *Auth) SignOut(ctx context.Context, caller model.User, sessionID uuid.UUID) error {
	err := a.db.InTx(ctx, func(ctx context.Context, tx model.Store) error {
		return a.sessions.End(ctx, tx, caller.ID, sessionID)
	})
	if err != nil {
		return a.fail("sign out", err)
	}
	return nil
}

func (a *Auth) fail(op string, err error) error {
	return logUnexpected(a.logger, "Auth service: failed to "+op, err)
}

// logUnexpected logs err unless it is a domain error and returns it unchanged.
func logUnexpected(l *logger.Logger, msg string, err error) error {
	var apiErr *apiErrors.APIError
	if !errors.As(err, &apiErr) {
		l.Error(msg, "error", err.Error())
	}
	return err
}

func validateTZOffset(offset *int) error {
	if offset != nil && (*offset < model.MinTZOffset || *offset > model.MaxTZOffset) {
		return apiErrors.NewRequestDataInvalid("localTZOffset")
	}
	return nil
}

// applyTZOffset sets the offset on user and reports whether it changed.
func applyTZOffset(user *model.User, offset *int) bool {
	if offset == nil || user.LocalTZOffset == *offset {
		return false
	}
	user.LocalTZOffset = *offset
	return true
}

func verifyGoogle(ctx context.Context, provider model.IdentityProvider, idToken string) (model.ExternalIdentity, error) {
	if provider == nil {
		return model.ExternalIdentity{}, apiErrors.New(apiErrors.CodeGoogleAuthenticationNotSupported)
	}

	identity, err := provider.Verify(ctx, idToken)
	switch {
	case err == nil:
		return identity, nil
	case errors.Is(err, model.ErrIdentityProviderUnsupported):
		return model.ExternalIdentity{}, apiErrors.New(apiErrors.CodeGoogleAuthenticationNotSupported)
	case errors.Is(err, model.ErrIdentityTokenInvalid):
		return model.ExternalIdentity{}, apiErrors.New(apiErrors.CodeGoogleIdentityTokenInvalid)
	default:
		return model.ExternalIdentity{}, fmt.Errorf("failed to verify google token: %w", err)
	}
}

func emailFree(ctx context.Context, users model.UserStore, self uuid.UUID, email string) (bool, error) {
	owner, err := users.GetByEmail(ctx, email)
	if errors.Is(err, model.ErrNotFound) {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to get user by email: %w", err)
	}
	return owner.ID == self, nil
}

func eqString(p *string, v string) bool {
	return p != nil && *p == v
}
