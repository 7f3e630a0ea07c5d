package ratelimit

import (
	"context"
	"errors"

	"google.golang.org/grpc"

	grpcContext "github.com/dtroode/identity-server/internal/api/grpc/context"
	apiErrors "github.com/dtroode/identity-server/internal/api/errors"
	"github.com/dtroode/identity-server/internal/logger"
)

// UnaryServerInterceptor rejects calls from addresses over the limit with
// RequestRateLimit. Calls pass through when Redis cannot be reached.
func UnaryServerInterceptor(l *Limiter, log *logger.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		key := grpcContext.PeerIP(ctx)
		if key == "" {
			return handler(ctx, req)
		}

		retryAfter, err := l.Allow(ctx, key)
		switch {
		case errors.Is(err, ErrRateLimited):
			log.Info("Rate limiter: request rejected",
				"address", key,
				"method", info.FullMethod)
			return nil, apiErrors.NewRateLimited(apiErrors.CodeRequestRateLimit, retryAfter)
		case err != nil:
			log.Warn("Rate limiter: failing open",
				"error", err.Error())
		}

		return handler(ctx, req)
	}
}
