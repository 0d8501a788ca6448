package server

import (
	"context"
	"time"

	"github.com/fekuna/rims-inventory-service/internal/apperror"
	"github.com/fekuna/rims-inventory-service/internal/auth"
	"github.com/fekuna/rims-inventory-service/internal/logger"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ContextInterceptor puts the acting user and the caller's locale on the context.
// Calls without an identity run as the system actor.
func ContextInterceptor(parser *auth.TokenParser) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		actor, err := auth.ResolveActor(ctx, parser)
		if err != nil {
			return nil, status.Error(codes.Unauthenticated, "invalid token")
		}
		if actor == "" {
			actor = auth.SystemActor
		}
		ctx = auth.WithActor(ctx, actor)
		ctx = auth.WithLocale(ctx, auth.GetLocale(ctx))
		return handler(ctx, req)
	}
}

// ErrorInterceptor maps use case errors to localized statuses and logs each call.
func ErrorInterceptor(log logger.ZapLogger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		if err == nil {
			log.Debug("grpc call",
				zap.String("method", info.FullMethod),
				zap.String("actor", auth.GetActor(ctx)),
				zap.Duration("duration", time.Since(start)))
			return resp, nil
		}

		if _, ok := status.FromError(err); !ok && apperror.CodeOf(err) == apperror.CodeStorageFailure {
			log.Error("grpc call failed",
				zap.String("method", info.FullMethod),
				zap.String("actor", auth.GetActor(ctx)),
				zap.Error(err))
		}
		return nil, ToStatus(ctx, err)
	}
}
