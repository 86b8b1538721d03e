package grpc

import (
	"context"
	"strings"

	"github.com/dmitrijs2005/accountkeeper/internal/common"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
)

type ctxKey string

const userIDKey ctxKey = "userID"

// UserIDFromContext returns the user the access-token interceptor resolved.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey).(string)
	return id, ok && id != ""
}

func accessTokenFromMetadata(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	if values := md.Get(common.AccessTokenHeaderName); len(values) > 0 {
		return values[0]
	}
	if values := md.Get("authorization"); len(values) > 0 {
		return strings.TrimPrefix(values[0], "Bearer ")
	}
	return ""
}

func (s *GRPCServer) accessTokenInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	if s.publicMethods[info.FullMethod] {
		return handler(ctx, req)
	}

	userID, err := s.authn.Authenticate(ctx, accessTokenFromMetadata(ctx))
	if err != nil {
		return nil, err
	}

	return handler(context.WithValue(ctx, userIDKey, userID), req)
}

// errorInterceptor turns kinded errors into status errors and logs the
// unexpected ones.
func (s *GRPCServer) errorInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	resp, err := handler(ctx, req)
	if err == nil {
		return resp, nil
	}
	if common.KindOf(err) == common.KindInternal {
		s.logger.Error(ctx, "request failed", "method", info.FullMethod, "error", err)
	}
	return nil, ToStatus(err).Err()
}
