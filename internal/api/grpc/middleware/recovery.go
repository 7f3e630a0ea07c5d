package middleware

import (
	"context"
	"fmt"
	"runtime/debug"

	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/recovery"
	"google.golang.org/grpc"

	apiErrors "github.com/dtroode/identity-server/internal/api/errors"
	"github.com/dtroode/identity-server/internal/logger"
)

// NewRecovery returns an interceptor that turns handler panics into
// ServerError after logging the stack.
func NewRecovery(log *logger.Logger) grpc.UnaryServerInterceptor {
	handler := func(ctx context.Context, p any) error {
		log.Error("gRPC handler panicked",
			"panic", fmt.Sprint(p),
			"stack", string(debug.Stack()))
		return apiErrors.New(apiErrors.CodeServerError).GRPCStatus().Err()
	}
	return recovery.UnaryServerInterceptor(recovery.WithRecoveryHandlerContext(handler))
}
