package grpc

import (
	"context"
	"errors"
	"testing"

	"github.com/dmitrijs2005/accountkeeper/internal/common"
	"github.com/dmitrijs2005/accountkeeper/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type fakeAuthenticator struct {
	tokens map[string]string
	got    string
}

func (f *fakeAuthenticator) Authenticate(_ context.Context, token string) (string, error) {
	f.got = token
	if id, ok := f.tokens[token]; ok {
		return id, nil
	}
	return "", common.ErrorUnauthorized
}

func newTestServer() (*GRPCServer, *fakeAuthenticator) {
	authn := &fakeAuthenticator{tokens: map[string]string{"good": "u-1"}}
	return NewGRPCServer("127.0.0.1:0", logging.Nop(), authn), authn
}

// chain runs both interceptors the way the server does.
func chain(s *GRPCServer, ctx context.Context, method string, h grpc.UnaryHandler) (any, error) {
	info := &grpc.UnaryServerInfo{FullMethod: method}
	return s.errorInterceptor(ctx, nil, info, func(ctx context.Context, req any) (any, error) {
		return s.accessTokenInterceptor(ctx, req, info, h)
	})
}

func TestInterceptor_PublicMethodSkipsAuth(t *testing.T) {
	s, authn := newTestServer()

	called := false
	resp, err := chain(s, context.Background(), healthpb.Health_Check_FullMethodName, func(ctx context.Context, req any) (any, error) {
		called = true
		_, ok := UserIDFromContext(ctx)
		assert.False(t, ok)
		return "ok", nil
	})
	require.NoError(t, err)
	assert.True(t, called)
	assert.Equal(t, "ok", resp)
	assert.Empty(t, authn.got)
}

func TestInterceptor_MissingToken(t *testing.T) {
	s, _ := newTestServer()

	_, err := chain(s, context.Background(), "/accounts.v1.Accounts/Me", func(ctx context.Context, req any) (any, error) {
		t.Fatal("handler must not run")
		return nil, nil
	})
	require.Error(t, err)
	assert.Equal(t, codes.Unauthenticated, status.Code(err))
	assert.Equal(t, "unauthorized", status.Convert(err).Message())
}

func TestInterceptor_TokenSources(t *testing.T) {
	tests := []struct {
		name string
		md   metadata.MD
	}{
		{"access_token key", metadata.Pairs(common.AccessTokenHeaderName, "good")},
		{"authorization bearer", metadata.Pairs("authorization", "Bearer good")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, authn := newTestServer()
			ctx := metadata.NewIncomingContext(context.Background(), tt.md)

			var got string
			_, err := chain(s, ctx, "/accounts.v1.Accounts/Me", func(ctx context.Context, req any) (any, error) {
				got, _ = UserIDFromContext(ctx)
				return nil, nil
			})
			require.NoError(t, err)
			assert.Equal(t, "u-1", got)
			assert.Equal(t, "good", authn.got)
		})
	}
}

func TestInterceptor_AllowAnonymous(t *testing.T) {
	s, _ := newTestServer()
	s.AllowAnonymous("/accounts.v1.Accounts/Login")

	_, err := chain(s, context.Background(), "/accounts.v1.Accounts/Login", func(ctx context.Context, req any) (any, error) {
		return nil, nil
	})
	require.NoError(t, err)
}

func TestErrorInterceptor_MapsHandlerErrors(t *testing.T) {
	s, _ := newTestServer()
	s.AllowAnonymous("/accounts.v1.Accounts/Register")

	_, err := chain(s, context.Background(), "/accounts.v1.Accounts/Register", func(ctx context.Context, req any) (any, error) {
		return nil, errors.Join(common.ErrConflict, errors.New("users_email_key"))
	})
	st := status.Convert(err)
	assert.Equal(t, codes.AlreadyExists, st.Code())
	assert.NotContains(t, st.Message(), "users_email_key")
}
