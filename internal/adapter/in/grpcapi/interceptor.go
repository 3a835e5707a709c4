package grpcapi

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"barefoot/pkg/logger"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

const (
	authorizationKey = "authorization"
	bearerPrefix     = "Bearer "
)

var mutatingMethods = map[string]bool{
	fullMethod("CreatePost"): true,
	fullMethod("UpdatePost"): true,
	fullMethod("DeletePost"): true,
}

// WithBearerToken attaches token to outgoing calls made with the returned context.
func WithBearerToken(ctx context.Context, token string) context.Context {
	return metadata.AppendToOutgoingContext(ctx, authorizationKey, bearerPrefix+token)
}

// unaryAuth rejects calls to protected methods without a valid bearer token.
// A nil validator rejects every protected call.
func unaryAuth(tokens TokenValidator, protected map[string]bool) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		if !protected[info.FullMethod] {
			return handler(ctx, req)
		}

		token, ok := bearerToken(ctx)
		if !ok || tokens == nil {
			return nil, status.Error(codes.Unauthenticated, "missing bearer token")
		}
		claims, err := tokens.Validate(token)
		if err != nil {
			logger.FromContext(ctx).Debug("rejected token", "error", err)
			return nil, status.Error(codes.Unauthenticated, "invalid or expired token")
		}

		log := logger.FromContext(ctx).With("user_id", claims.UserID)
		return handler(logger.WithLogger(ctx, log), req)
	}
}

func bearerToken(ctx context.Context) (string, bool) {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return "", false
	}
	values := md.Get(authorizationKey)
	if len(values) == 0 {
		return "", false
	}
	token, found := strings.CutPrefix(values[0], bearerPrefix)
	token = strings.TrimSpace(token)
	return token, found && token != ""
}

func unaryLogger(base *slog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		log := base.With("request_id", uuid.NewString(), "rpc", info.FullMethod)

		resp, err := handler(logger.WithLogger(ctx, log), req)

		log.Info("grpc request",
			"code", status.Code(err).String(),
			"duration", time.Since(start),
		)
		return resp, err
	}
}

func streamLogger(base *slog.Logger) grpc.StreamServerInterceptor {
	return func(srv any, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		start := time.Now()
		log := base.With("request_id", uuid.NewString(), "rpc", info.FullMethod)

		err := handler(srv, &loggedStream{ServerStream: ss, ctx: logger.WithLogger(ss.Context(), log)})

		log.Info("grpc stream closed",
			"code", status.Code(err).String(),
			"duration", time.Since(start),
		)
		return err
	}
}

type loggedStream struct {
	grpc.ServerStream
	ctx context.Context
}

func (s *loggedStream) Context() context.Context {
	return s.ctx
}
