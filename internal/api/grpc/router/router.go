package router

import (
	"context"

	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors"
	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/auth"
	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/selector"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"

	apiErrors "github.com/dtroode/identity-server/internal/api/errors"
	"github.com/dtroode/identity-server/internal/api/grpc/handler"
	"github.com/dtroode/identity-server/internal/api/grpc/identityv1"
	"github.com/dtroode/identity-server/internal/api/grpc/middleware"
	"github.com/dtroode/identity-server/internal/logger"
	"github.com/dtroode/identity-server/internal/model"
	"github.com/dtroode/identity-server/internal/ratelimit"
)

// Services groups the business services exposed over gRPC.
type Services struct {
	Auth          handler.AuthService
	Verification  handler.VerificationService
	User          handler.UserService
	Preference    handler.PreferenceService
	Avatar        handler.AvatarService
	Authenticator middleware.Authenticator
}

// Router registers the identity services and their interceptors.
type Router struct {
	services       Services
	limiter        *ratelimit.Limiter
	contextManager model.ContextManager
	logger         *logger.Logger
}

// New creates new gRPC Router instance. A nil limiter disables the
// request rate limit.
func New(
	services Services,
	limiter *ratelimit.Limiter,
	contextManager model.ContextManager,
	logger *logger.Logger,
) *Router {
	return &Router{
		services:       services,
		limiter:        limiter,
		contextManager: contextManager,
		logger:         logger,
	}
}

// authMatch selects the calls that go through bearer authentication.
// Reauthenticate is exempt so that an expired access token sent along
// with it cannot block the rotation.
func authMatch(_ context.Context, c interceptors.CallMeta) bool {
	return c.FullMethod() != identityv1.AuthReauthenticateFullMethod
}

// Register builds the gRPC server with recovery, logging, rate limiting
// and authentication interceptors, in that order, and registers all
// identity services.
func (r *Router) Register(opts ...grpc.ServerOption) *grpc.Server {
	logging := middleware.NewLogging(r.logger)
	authenticate := middleware.NewAuthenticate(r.services.Authenticator, r.contextManager, r.logger)

	chain := []grpc.UnaryServerInterceptor{
		middleware.NewRecovery(r.logger),
		logging.HandleGRPC,
	}
	if r.limiter != nil {
		chain = append(chain, ratelimit.UnaryServerInterceptor(r.limiter, r.logger))
	}
	chain = append(chain, selector.UnaryServerInterceptor(
		auth.UnaryServerInterceptor(authenticate.AuthFunc),
		selector.MatchFunc(authMatch),
	))

	serverOpts := []grpc.ServerOption{
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.ChainUnaryInterceptor(chain...),
		grpc.UnknownServiceHandler(unknownEndpoint),
	}
	s := grpc.NewServer(append(serverOpts, opts...)...)

	identityv1.RegisterAuthServer(s, handler.NewAuth(r.services.Auth, r.contextManager, r.logger))
	identityv1.RegisterVerificationServer(s, handler.NewVerification(r.services.Verification, r.contextManager, r.logger))
	identityv1.RegisterUserServer(s, handler.NewUser(
		r.services.User,
		r.services.Preference,
		r.services.Avatar,
		r.contextManager,
		r.logger,
	))

	return s
}

func unknownEndpoint(_ any, _ grpc.ServerStream) error {
	return apiErrors.New(apiErrors.CodeEndpointNotFound).GRPCStatus().Err()
}
