// Package grpc is the gRPC transport shell: health service, access-token
// interceptor and the mapping from error kinds to gRPC status codes.
package grpc

import (
	"context"
	"net"

	"github.com/dmitrijs2005/accountkeeper/internal/logging"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// Authenticator resolves an access token to a user ID.
type Authenticator interface {
	Authenticate(ctx context.Context, accessToken string) (string, error)
}

// Registrar lets the routing layer attach its services to the server.
type Registrar func(grpc.ServiceRegistrar)

type GRPCServer struct {
	address       string
	authn         Authenticator
	logger        logging.Logger
	health        *health.Server
	registrars    []Registrar
	publicMethods map[string]bool
	listener      net.Listener
}

func NewGRPCServer(address string, l logging.Logger, authn Authenticator, registrars ...Registrar) *GRPCServer {
	return &GRPCServer{
		address:    address,
		authn:      authn,
		logger:     l.With("module", "grpc_server"),
		health:     health.NewServer(),
		registrars: registrars,
		publicMethods: map[string]bool{
			healthpb.Health_Check_FullMethodName: true,
		},
	}
}

// AllowAnonymous marks full method names that skip the access-token check.
func (s *GRPCServer) AllowAnonymous(methods ...string) {
	for _, m := range methods {
		s.publicMethods[m] = true
	}
}

// Listen binds the address. Run calls it when it has not been called yet.
func (s *GRPCServer) Listen() error {
	if s.listener != nil {
		return nil
	}
	listener, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	s.listener = listener
	return nil
}

// Addr is the bound address, empty before Listen.
func (s *GRPCServer) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Run serves until ctx is cancelled, then stops gracefully.
func (s *GRPCServer) Run(ctx context.Context) error {
	if err := s.Listen(); err != nil {
		return err
	}

	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.errorInterceptor, s.accessTokenInterceptor))

	healthpb.RegisterHealthServer(srv, s.health)
	for _, register := range s.registrars {
		register(srv)
	}
	s.health.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)

	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		s.health.Shutdown()
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", s.Addr())

	if err := srv.Serve(s.listener); err != nil {
		return err
	}
	<-stopped
	return nil
}
