package handler

import (
	"context"
	"errors"

	apiErrors "github.com/dtroode/identity-server/internal/api/errors"
	"github.com/dtroode/identity-server/internal/logger"
	"github.com/dtroode/identity-server/internal/model"
)

// handleError converts a service error into a gRPC status error. Errors
// that are not part of the API are logged and hidden behind ServerError.
func handleError(log *logger.Logger, method string, err error) error {
	if apiErr, ok := apiErrors.FromError(err); ok {
		return apiErr.GRPCStatus().Err()
	}

	if errors.Is(err, model.ErrNotFound) {
		return apiErrors.New(apiErrors.CodeResourceNotFound).GRPCStatus().Err()
	}

	log.Error("gRPC handler: unexpected failure",
		"method", method,
		"error", err.Error())
	return apiErrors.New(apiErrors.CodeServerError).GRPCStatus().Err()
}

// requireUser returns the authenticated caller or NotSignedIn.
func requireUser(cm model.ContextManager, ctx context.Context) (model.User, error) {
	user, ok := cm.GetUserFromContext(ctx)
	if !ok {
		return model.User{}, apiErrors.New(apiErrors.CodeNotSignedIn).GRPCStatus().Err()
	}
	return user, nil
}
