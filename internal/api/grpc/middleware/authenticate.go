package middleware

import (
	"context"

	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/auth"
	"google.golang.org/grpc/metadata"

	apiErrors "github.com/dtroode/identity-server/internal/api/errors"
	"github.com/dtroode/identity-server/internal/logger"
	"github.com/dtroode/identity-server/internal/model"
)

const authorizationHeader = "authorization"

// Authenticator resolves the user behind a bearer access token.
type Authenticator interface {
	Authenticate(ctx context.Context, accessToken string) (model.User, error)
}

// Authenticate validates bearer tokens and injects the user into context.
type Authenticate struct {
	authenticator  Authenticator
	contextManager model.ContextManager
	logger         *logger.Logger
}

// NewAuthenticate creates a new Authenticate middleware instance.
func NewAuthenticate(authenticator Authenticator, contextManager model.ContextManager, logger *logger.Logger) *Authenticate {
	return &Authenticate{authenticator: authenticator, contextManager: contextManager, logger: logger}
}

// AuthFunc authenticates the bearer token of the call. Calls without an
// authorization header continue anonymously; handlers that need a caller
// reject them with NotSignedIn.
func (m *Authenticate) AuthFunc(ctx context.Context) (context.Context, error) {
	if len(metadata.ValueFromIncomingContext(ctx, authorizationHeader)) == 0 {
		return ctx, nil
	}

	token, err := auth.AuthFromMD(ctx, "bearer")
	if err != nil {
		return nil, apiErrors.New(apiErrors.CodeAccessTokenInvalid).GRPCStatus().Err()
	}

	user, err := m.authenticator.Authenticate(ctx, token)
	if err != nil {
		if apiErr, ok := apiErrors.FromError(err); ok {
			return nil, apiErr.GRPCStatus().Err()
		}
		m.logger.Error("Authenticate middleware: authentication failed",
			"error", err.Error())
		return nil, apiErrors.New(apiErrors.CodeServerError).GRPCStatus().Err()
	}

	return m.contextManager.SetUserToContext(ctx, user), nil
}
