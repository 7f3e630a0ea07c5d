package handler

import (
	"context"

	"github.com/google/uuid"

	"github.com/dtroode/identity-server/internal/api/grpc/identityv1"
	"github.com/dtroode/identity-server/internal/logger"
	"github.com/dtroode/identity-server/internal/model"
	"github.com/dtroode/identity-server/internal/service"
)

// VerificationService defines the verification code state machine.
type VerificationService interface {
	Begin(ctx context.Context, params service.BeginVerificationParams) (model.VerificationTicket, error)
	Complete(ctx context.Context, id uuid.UUID, code string) (string, error)
}

// Verification handles gRPC endpoints of identity.v1.Verification.
type Verification struct {
	verificationService VerificationService
	contextManager      model.ContextManager
	logger              *logger.Logger
}

// NewVerification creates a new Verification handler.
func NewVerification(verificationService VerificationService, contextManager model.ContextManager, logger *logger.Logger) *Verification {
	return &Verification{
		verificationService: verificationService,
		contextManager:      contextManager,
		logger:              logger,
	}
}

// Begin sends a code to the contact. The caller is optional and only
// consulted by types that act on an existing account.
func (h *Verification) Begin(ctx context.Context, req *identityv1.BeginVerificationRequest) (*identityv1.BeginVerificationResponse, error) {
	h.logger.Debug("Verification handler: processing begin request",
		"type", req.Type)

	params := service.BeginVerificationParams{
		EmailOrPhone: req.EmailOrPhone,
		Type:         model.VerificationType(req.Type),
	}
	if caller, ok := h.contextManager.GetUserFromContext(ctx); ok {
		params.Caller = &caller
	}

	ticket, err := h.verificationService.Begin(ctx, params)
	if err != nil {
		return nil, handleError(h.logger, identityv1.VerificationBeginFullMethod, err)
	}

	h.logger.Info("Verification handler: begin completed",
		"verification_id", ticket.ID,
		"type", req.Type)

	return &identityv1.BeginVerificationResponse{
		AccessVerificationID: ticket.ID.String(),
		ExpiresAt:            ticket.ExpiresAt,
		ResendableAt:         ticket.ResendableAt,
	}, nil
}

// Complete checks a code and returns the verification token on success.
func (h *Verification) Complete(ctx context.Context, req *identityv1.CompleteVerificationRequest) (*identityv1.CompleteVerificationResponse, error) {
	id, err := parseID("accessVerificationId", req.AccessVerificationID)
	if err != nil {
		return nil, err
	}

	token, err := h.verificationService.Complete(ctx, id, req.Code)
	if err != nil {
		return nil, handleError(h.logger, identityv1.VerificationCompleteFullMethod, err)
	}

	h.logger.Info("Verification handler: complete succeeded",
		"verification_id", id)

	return &identityv1.CompleteVerificationResponse{Token: token}, nil
}
