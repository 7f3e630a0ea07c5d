package service

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"slices"
	"time"

	"github.com/google/uuid"

	apiErrors "github.com/dtroode/identity-server/internal/api/errors"
	"github.com/dtroode/identity-server/internal/config"
	"github.com/dtroode/identity-server/internal/contact"
	"github.com/dtroode/identity-server/internal/logger"
	"github.com/dtroode/identity-server/internal/model"
)

// VerificationLockTable namespaces the advisory lock taken by Begin.
const VerificationLockTable = "accessVerifications"

const (
	codeDigits  = 6
	tokenLength = 64
)

// Verification owns the one-time code state machine.
type Verification struct {
	db       model.Database
	notifier model.Notifier
	cfg      config.Verification
	logger   *logger.Logger

	now           func() time.Time
	generateCode  func() (string, error)
	generateToken func() (string, error)
}

func NewVerification(db model.Database, notifier model.Notifier, cfg config.Verification, logger *logger.Logger) *Verification {
	return &Verification{
		db:            db,
		notifier:      notifier,
		cfg:           cfg,
		logger:        logger,
		now:           time.Now,
		generateCode:  randomCode,
		generateToken: randomToken,
	}
}

// BeginVerificationParams describes a request for a new code.
// Caller is nil for anonymous requests.
type BeginVerificationParams struct {
	EmailOrPhone string
	Type         model.VerificationType
	Caller       *model.User
}

// Begin creates a verification for the contact and dispatches its code.
func (s *Verification) Begin(ctx context.Context, params BeginVerificationParams) (model.VerificationTicket, error) {
	target, err := contact.Parse(params.EmailOrPhone)
	if err != nil {
		return model.VerificationTicket{}, apiErrors.NewRequestDataInvalid("emailOrPhone")
	}
	if !params.Type.Valid() {
		return model.VerificationTicket{}, apiErrors.NewRequestDataInvalid("type")
	}
	if (params.Type == model.VerificationTypeUpdateEmail && !target.IsEmail()) ||
		(params.Type == model.VerificationTypeUpdatePhone && !target.IsPhone()) {
		return model.VerificationTicket{}, apiErrors.NewRequestDataInvalid("emailOrPhone")
	}

	s.logger.Debug("Verification service: beginning verification",
		"type", params.Type,
		"kind", target.Kind.String())

	if err := s.checkPreconditions(ctx, target, params); err != nil {
		return model.VerificationTicket{}, err
	}

	code, demo, err := s.codeFor(target.Value)
	if err != nil {
		s.logger.Error("Verification service: failed to generate code",
			"error", err.Error())
		return model.VerificationTicket{}, fmt.Errorf("failed to generate code: %w", err)
	}

	var ticket model.VerificationTicket
	err = s.db.InTx(ctx, func(ctx context.Context, tx model.Store) error {
		err := tx.Lock(ctx, VerificationLockTable, map[string]string{
			"emailOrPhone": target.Value,
			"type":         string(params.Type),
		})
		if err != nil {
			return fmt.Errorf("failed to lock verification: %w", err)
		}

		now := s.now()
		existing, err := tx.Verifications().GetLiveForUpdate(ctx, target.Value, params.Type, now)
		switch {
		case err == nil:
			if existing.ResendableAt.After(now) {
				return apiErrors.NewRateLimited(apiErrors.CodeAccessVerificationBeginRateLimit, existing.ResendableAt.Sub(now))
			}
			if err := tx.Verifications().Delete(ctx, existing.ID); err != nil {
				return fmt.Errorf("failed to delete superseded verification: %w", err)
			}
		case !errors.Is(err, model.ErrNotFound):
			return fmt.Errorf("failed to get live verification: %w", err)
		}

		created, err := tx.Verifications().Create(ctx, model.Verification{
			ID:           uuid.New(),
			EmailOrPhone: target.Value,
			Type:         params.Type,
			Code:         code,
			ExpiresAt:    now.Add(s.cfg.TTL),
			ResendableAt: now.Add(s.cfg.ResendAfter),
		})
		if err != nil {
			return fmt.Errorf("failed to create verification: %w", err)
		}

		ticket = model.VerificationTicket{
			ID:           created.ID,
			ExpiresAt:    created.ExpiresAt,
			ResendableAt: created.ResendableAt,
		}
		return nil
	})
	if err != nil {
		var apiErr *apiErrors.APIError
		if !errors.As(err, &apiErr) {
			s.logger.Error("Verification service: failed to begin verification",
				"type", params.Type,
				"error", err.Error())
		}
		return model.VerificationTicket{}, err
	}

	if !demo {
		s.dispatch(ctx, target.Value, code)
	}

	s.logger.Info("Verification service: verification started",
		"verification_id", ticket.ID,
		"type", params.Type)

	return ticket, nil
}

func (s *Verification) checkPreconditions(ctx context.Context, target contact.Contact, params BeginVerificationParams) error {
	_, err := userByContact(ctx, s.db.Users(), target)
	if err != nil && !errors.Is(err, model.ErrNotFound) {
		return fmt.Errorf("failed to get user by contact: %w", err)
	}
	exists := err == nil

	switch params.Type {
	case model.VerificationTypeSignUp:
		if exists {
			return contactTaken(target)
		}
	case model.VerificationTypeSignIn:
		if !exists {
			return apiErrors.New(apiErrors.CodeUserNotFound)
		}
	case model.VerificationTypeDeleteUser:
		if params.Caller == nil {
			return apiErrors.New(apiErrors.CodeNotSignedIn)
		}
		if !params.Caller.Owns(target.Value) {
			return apiErrors.New(apiErrors.CodeNotAllowed)
		}
	case model.VerificationTypeUpdateEmail, model.VerificationTypeUpdatePhone:
		if params.Caller == nil {
			return apiErrors.New(apiErrors.CodeNotSignedIn)
		}
		if exists {
			return contactTaken(target)
		}
	}
	return nil
}

// codeFor returns the fixed demo code for demo contacts when one is configured.
func (s *Verification) codeFor(emailOrPhone string) (string, bool, error) {
	if s.cfg.DemoCode != "" && slices.Contains(s.cfg.DemoContacts, emailOrPhone) {
		return s.cfg.DemoCode, true, nil
	}
	code, err := s.generateCode()
	return code, false, err
}

func (s *Verification) dispatch(ctx context.Context, emailOrPhone, code string) {
	if err := s.notifier.Send(ctx, emailOrPhone, code); err != nil {
		s.logger.Warn("Verification service: failed to dispatch code",
			"error", err.Error())
	}
}

// completeResult is the outcome of the complete transaction. A non-zero
// failure is reported to the caller after the transaction commits.
type completeResult struct {
	token   string
	failure apiErrors.Code
}

// Complete redeems a code and returns the verification token.
// Wrong codes are counted even though the call fails.
func (s *Verification) Complete(ctx context.Context, id uuid.UUID, code string) (string, error) {
	if id == uuid.Nil {
		return "", apiErrors.NewRequestDataInvalid("accessVerificationId")
	}
	if code == "" {
		return "", apiErrors.NewRequestDataInvalid("code")
	}

	var result completeResult
	err := s.db.InTx(ctx, func(ctx context.Context, tx model.Store) error {
		result = completeResult{}

		v, err := tx.Verifications().GetByIDForUpdate(ctx, id)
		if errors.Is(err, model.ErrNotFound) {
			result.failure = apiErrors.CodeResourceNotFound
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to get verification: %w", err)
		}

		switch {
		case !v.IsLive(s.now()):
			result.failure = apiErrors.CodeAccessVerificationCodeExpired
			return nil
		case v.Token != nil:
			result.failure = apiErrors.CodeAccessVerificationAlreadyCompleted
			return nil
		case v.Attempts >= s.cfg.MaxAttempts:
			result.failure = apiErrors.CodeAccessVerificationAttemptsExceeded
			return nil
		}

		v.Attempts++
		if subtle.ConstantTimeCompare([]byte(v.Code), []byte(code)) != 1 {
			result.failure = apiErrors.CodeAccessVerificationCodeInvalid
		} else {
			token, err := s.generateToken()
			if err != nil {
				return fmt.Errorf("failed to generate token: %w", err)
			}
			v.Token = &token
			result.token = token
		}

		if err := tx.Verifications().Update(ctx, v); err != nil {
			return fmt.Errorf("failed to update verification: %w", err)
		}
		return nil
	})
	if err != nil {
		s.logger.Error("Verification service: failed to complete verification",
			"verification_id", id,
			"error", err.Error())
		return "", err
	}

	if result.failure != 0 {
		s.logger.Info("Verification service: verification not completed",
			"verification_id", id,
			"reason", result.failure.String())
		return "", apiErrors.New(result.failure)
	}

	s.logger.Info("Verification service: verification completed",
		"verification_id", id)

	return result.token, nil
}

// Consume force-expires the completed verification holding token so it
// authorizes exactly one privileged action. It must run inside tx.
func (s *Verification) Consume(ctx context.Context, tx model.Store, emailOrPhone, token string, verificationType model.VerificationType) error {
	if token == "" {
		return apiErrors.New(apiErrors.CodeAccessNotVerified)
	}

	now := s.now()
	v, err := tx.Verifications().GetLiveByTokenForUpdate(ctx, emailOrPhone, token, verificationType, now)
	if errors.Is(err, model.ErrNotFound) {
		return apiErrors.New(apiErrors.CodeAccessNotVerified)
	}
	if err != nil {
		return fmt.Errorf("failed to get verification by token: %w", err)
	}

	v.ExpiresAt = now
	if err := tx.Verifications().Update(ctx, v); err != nil {
		return fmt.Errorf("failed to consume verification: %w", err)
	}
	return nil
}

func userByContact(ctx context.Context, users model.UserStore, c contact.Contact) (model.User, error) {
	if c.IsEmail() {
		return users.GetByEmail(ctx, c.Value)
	}
	return users.GetByPhone(ctx, c.Value)
}

func contactTaken(c contact.Contact) error {
	if c.IsEmail() {
		return apiErrors.New(apiErrors.CodeEmailTaken)
	}
	return apiErrors.New(apiErrors.CodePhoneNumberTaken)
}

var codeLimit = big.NewInt(1_000_000)

func randomCode() (string, error) {
	n, err := rand.Int(rand.Reader, codeLimit)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", codeDigits, n.Int64()), nil
}

func randomToken() (string, error) {
	b := make([]byte, tokenLength)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
