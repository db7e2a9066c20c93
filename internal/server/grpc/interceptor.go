package grpc

import (
	"context"
	"errors"
	"strings"

	"github.com/dmitrijs2005/stockkeeper/internal/common"
	"github.com/dmitrijs2005/stockkeeper/internal/server/auth"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// publicServicePrefix marks methods callable without a token.
var publicServicePrefix = "/" + healthpb.Health_ServiceDesc.ServiceName + "/"

func isPublic(method string) bool {
	return strings.HasPrefix(method, publicServicePrefix)
}

// tokenFromMetadata reads "authorization: Bearer <t>" and falls back to the
// legacy bare access_token key.
func tokenFromMetadata(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	for _, v := range md.Get(strings.ToLower(common.AuthorizationHeader)) {
		if t, ok := auth.BearerToken(v); ok {
			return t
		}
	}
	if values := md.Get(common.AccessTokenMetadataKey); len(values) > 0 {
		return strings.TrimSpace(values[0])
	}
	return ""
}

func (s *GRPCServer) authenticate(ctx context.Context, method string) (context.Context, error) {
	if isPublic(method) {
		return ctx, nil
	}

	sess, err := s.verifier.Verify(tokenFromMetadata(ctx))
	switch {
	case err == nil:
		return auth.WithSession(ctx, sess), nil
	case errors.Is(err, auth.ErrUnauthenticated):
		return nil, status.Error(codes.Unauthenticated, "Not authenticated")
	case errors.Is(err, auth.ErrMalformedIdentity):
		s.logger.Warn(ctx, "token without usable identity", "method", method)
	default:
		s.logger.Info(ctx, "rejected token", "method", method, "error", err.Error())
	}
	return nil, status.Error(codes.Unauthenticated, "Invalid or expired token")
}

func (s *GRPCServer) unaryAuthInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	ctx, err := s.authenticate(ctx, info.FullMethod)
	if err != nil {
		return nil, err
	}
	return handler(ctx, req)
}

func (s *GRPCServer) streamAuthInterceptor(srv any, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
	ctx, err := s.authenticate(ss.Context(), info.FullMethod)
	if err != nil {
		return err
	}
	return handler(srv, &sessionStream{ServerStream: ss, ctx: ctx})
}

// sessionStream carries the authenticated context into stream handlers.
type sessionStream struct {
	grpc.ServerStream
	ctx context.Context
}

func (w *sessionStream) Context() context.Context {
	return w.ctx
}
