package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	apiErrors "github.com/dtroode/identity-server/internal/api/errors"
	"github.com/dtroode/identity-server/internal/contact"
	"github.com/dtroode/identity-server/internal/logger"
	"github.com/dtroode/identity-server/internal/model"
)

const maxNameLength = 100

type avatarRemover interface {
	Remove(ctx context.Context, userID uuid.UUID) error
}

// User manages the lifecycle of user accounts.
type User struct {
	db            model.Database
	verifications verificationConsumer
	sessions      sessionManager
	google        model.IdentityProvider
	avatars       avatarRemover
	logger        *logger.Logger
}

// NewUser creates the user service. google and avatars may be nil.
func NewUser(
	db model.Database,
	verifications verificationConsumer,
	sessions sessionManager,
	google model.IdentityProvider,
	avatars avatarRemover,
	logger *logger.Logger,
) *User {
	return &User{
		db:            db,
		verifications: verifications,
		sessions:      sessions,
		google:        google,
		avatars:       avatars,
		logger:        logger,
	}
}

// CreateUserParams registers a user by Google identity token or by a
// contact and the token of a completed sign-up verification.
type CreateUserParams struct {
	GoogleIDToken string
	EmailOrPhone  string
	Token         string
	Name          string
	LocalTZOffset int
	DeviceID      *uuid.UUID
	IPAddress     string
}

// Create registers a user and starts their first session.
func (s *User) Create(ctx context.Context, params CreateUserParams) (model.User, model.TokenPair, error) {
	if err := validateTZOffset(&params.LocalTZOffset); err != nil {
		return model.User{}, model.TokenPair{}, err
	}

	user := model.User{
		ID:            uuid.New(),
		LocalTZOffset: params.LocalTZOffset,
	}

	var consume func(ctx context.Context, tx model.Store) error
	switch {
	case params.GoogleIDToken != "":
		identity, err := verifyGoogle(ctx, s.google, params.GoogleIDToken)
		if err != nil {
			return model.User{}, model.TokenPair{}, err
		}
		// A Google account is the only contact of the new user.
		if identity.Email == "" {
			return model.User{}, model.TokenPair{}, apiErrors.New(apiErrors.CodeGoogleIdentityTokenInvalid)
		}
		googleUserID := identity.UserID
		email := strings.ToLower(identity.Email)
		user.GoogleUserID = &googleUserID
		user.Email = &email
		if params.Name == "" {
			params.Name = identity.Name
		}
		consume = func(ctx context.Context, tx model.Store) error {
			_, err := tx.Users().GetByGoogleUserID(ctx, googleUserID)
			if err == nil {
				return apiErrors.New(apiErrors.CodeGoogleIdentityExistsAlready)
			}
			if !errors.Is(err, model.ErrNotFound) {
				return fmt.Errorf("failed to get user by google id: %w", err)
			}
			return nil
		}
	case params.EmailOrPhone != "":
		target, err := contact.Parse(params.EmailOrPhone)
		if err != nil {
			return model.User{}, model.TokenPair{}, apiErrors.NewRequestDataInvalid("emailOrPhone")
		}
		value := target.Value
		if target.IsEmail() {
			user.Email = &value
		} else {
			user.Phone = &value
		}
		consume = func(ctx context.Context, tx model.Store) error {
			return s.verifications.Consume(ctx, tx, value, params.Token, model.VerificationTypeSignUp)
		}
	default:
		return model.User{}, model.TokenPair{}, apiErrors.NewRequestDataInvalid("googleIdToken", "emailOrPhone")
	}

	name, err := validateName(params.Name)
	if err != nil {
		return model.User{}, model.TokenPair{}, err
	}
	user.Name = name

	var pair model.TokenPair
	err = s.db.InTx(ctx, func(ctx context.Context, tx model.Store) error {
		if err := consume(ctx, tx); err != nil {
			return err
		}

		created, err := tx.Users().Create(ctx, user)
		if err != nil {
			return mapUserError(err)
		}
		user = created

		pair, err = s.sessions.Start(ctx, tx, StartSessionParams{
			UserID:    user.ID,
			IPAddress: params.IPAddress,
			DeviceID:  params.DeviceID,
		})
		return err
	})
	if err != nil {
		return model.User{}, model.TokenPair{}, logUnexpected(s.logger, "User service: failed to create user", err)
	}

	s.logger.Info("User service: user created",
		"user_id", user.ID)

	return user, pair, nil
}

// Fetch returns the current state of the caller.
func (s *User) Fetch(ctx context.Context, caller model.User) (model.User, error) {
	user, err := s.db.Users().GetByID(ctx, caller.ID)
	if errors.Is(err, model.ErrNotFound) {
		return model.User{}, apiErrors.New(apiErrors.CodeUserNotFound)
	}
	if err != nil {
		return model.User{}, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// UpdateUserParams lists the fields to change. Nil fields are left as is.
type UpdateUserParams struct {
	Name          *string
	LocalTZOffset *int
}

func (s *User) Update(ctx context.Context, caller model.User, params UpdateUserParams) (model.User, error) {
	if err := validateTZOffset(params.LocalTZOffset); err != nil {
		return model.User{}, err
	}

	var name string
	if params.Name != nil {
		validated, err := validateName(*params.Name)
		if err != nil {
			return model.User{}, err
		}
		name = validated
	}

	return s.mutate(ctx, caller, "update user", func(ctx context.Context, _ model.Store, user *model.User) error {
		if params.Name != nil {
			user.Name = name
		}
		applyTZOffset(user, params.LocalTZOffset)
		return nil
	})
}

// UpdateEmail replaces the caller's email with one proven by an update-email verification.
func (s *User) UpdateEmail(ctx context.Context, caller model.User, email, token string) (model.User, error) {
	target, err := contact.Parse(email)
	if err != nil || !target.IsEmail() {
		return model.User{}, apiErrors.NewRequestDataInvalid("email")
	}

	return s.mutate(ctx, caller, "update email", func(ctx context.Context, tx model.Store, user *model.User) error {
		if err := s.verifications.Consume(ctx, tx, target.Value, token, model.VerificationTypeUpdateEmail); err != nil {
			return err
		}
		user.Email = &target.Value
		return nil
	})
}

// UpdatePhone replaces the caller's phone with one proven by an update-phone verification.
func (s *User) UpdatePhone(ctx context.Context, caller model.User, phone, token string) (model.User, error) {
	target, err := contact.Parse(phone)
	if err != nil || !target.IsPhone() {
		return model.User{}, apiErrors.NewRequestDataInvalid("phone")
	}

	return s.mutate(ctx, caller, "update phone", func(ctx context.Context, tx model.Store, user *model.User) error {
		if err := s.verifications.Consume(ctx, tx, target.Value, token, model.VerificationTypeUpdatePhone); err != nil {
			return err
		}
		user.Phone = &target.Value
		return nil
	})
}

// ConnectGoogle links a Google account to the caller.
func (s *User) ConnectGoogle(ctx context.Context, caller model.User, idToken string) (model.User, error) {
	if idToken == "" {
		return model.User{}, apiErrors.NewRequestDataInvalid("googleIdToken")
	}
	identity, err := verifyGoogle(ctx, s.google, idToken)
	if err != nil {
		return model.User{}, err
	}

	return s.mutate(ctx, caller, "connect google", func(ctx context.Context, tx model.Store, user *model.User) error {
		owner, err := tx.Users().GetByGoogleUserID(ctx, identity.UserID)
		switch {
		case err == nil && owner.ID != user.ID:
			return apiErrors.New(apiErrors.CodeGoogleIdentityExistsAlready)
		case err != nil && !errors.Is(err, model.ErrNotFound):
			return fmt.Errorf("failed to get user by google id: %w", err)
		}
		user.GoogleUserID = &identity.UserID
		return nil
	})
}

// Delete removes the caller after a delete-user verification of one of
// their contacts. Sessions and preferences go with the user.
func (s *User) Delete(ctx context.Context, caller model.User, emailOrPhone, token string) error {
	target, err := contact.Parse(emailOrPhone)
	if err != nil {
		return apiErrors.NewRequestDataInvalid("emailOrPhone")
	}
	if !caller.Owns(target.Value) {
		return apiErrors.New(apiErrors.CodeNotAllowed)
	}

	err = s.db.InTx(ctx, func(ctx context.Context, tx model.Store) error {
		if err := s.verifications.Consume(ctx, tx, target.Value, token, model.VerificationTypeDeleteUser); err != nil {
			return err
		}
		if err := tx.Users().Delete(ctx, caller.ID); err != nil {
			if errors.Is(err, model.ErrNotFound) {
				return apiErrors.New(apiErrors.CodeUserNotFound)
			}
			return fmt.Errorf("failed to delete user: %w", err)
		}
		return nil
	})
	if err != nil {
		return logUnexpected(s.logger, "User service: failed to delete user", err)
	}

	if s.avatars != nil {
		if err := s.avatars.Remove(ctx, caller.ID); err != nil {
			s.logger.Warn("User service: failed to remove avatar",
				"user_id", caller.ID,
				"error", err.Error())
		}
	}

	s.logger.Info("User service: user deleted",
		"user_id", caller.ID)

	return nil
}

// mutate loads the caller inside a transaction, applies fn and saves the result.
func (s *User) mutate(ctx context.Context, caller model.User, op string, fn func(ctx context.Context, tx model.Store, user *model.User) error) (model.User, error) {
	var updated model.User
	err := s.db.InTx(ctx, func(ctx context.Context, tx model.Store) error {
		user, err := tx.Users().GetByID(ctx, caller.ID)
		if errors.Is(err, model.ErrNotFound) {
			return apiErrors.New(apiErrors.CodeUserNotFound)
		}
		if err != nil {
			return fmt.Errorf("failed to get user: %w", err)
		}

		if err := fn(ctx, tx, &user); err != nil {
			return err
		}

		updated, err = tx.Users().Update(ctx, user)
		if err != nil {
			return mapUserError(err)
		}
		return nil
	})
	if err != nil {
		return model.User{}, logUnexpected(s.logger, "User service: failed to "+op, err)
	}
	return updated, nil
}

func mapUserError(err error) error {
	switch {
	case errors.Is(err, model.ErrEmailTaken):
		return apiErrors.New(apiErrors.CodeEmailTaken)
	case errors.Is(err, model.ErrPhoneTaken):
		return apiErrors.New(apiErrors.CodePhoneNumberTaken)
	case errors.Is(err, model.ErrGoogleUserIDTaken):
		return apiErrors.New(apiErrors.CodeGoogleIdentityExistsAlready)
	case errors.Is(err, model.ErrNotFound):
		return apiErrors.New(apiErrors.CodeUserNotFound)
	default:
		return fmt.Errorf("failed to save user: %w", err)
	}
}

func validateName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || utf8.RuneCountInString(name) > maxNameLength {
		return "", apiErrors.NewRequestDataInvalid("name")
	}
	return name, nil
}
