// Package grpc exposes the user services as the gophauth.AuthService gRPC
// service.
package grpc

import (
	"context"
	"net"

	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/rpc"
	"github.com/dmitrijs2005/gophauth/internal/server/auth"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/dmitrijs2005/gophauth/internal/server/services"
	"google.golang.org/grpc"
)

// UserService is the part of services.UserService served over gRPC.
type UserService interface {
	Register(ctx context.Context, username, password, address string) (*services.TokenResult, error)
	Login(ctx context.Context, username, password string) (*services.TokenResult, error)
	RefreshToken(ctx context.Context, accessToken, refreshToken string) (*services.TokenResult, error)
	CurrentUser(ctx context.Context, userID string) (*models.User, error)
	InvalidateTokens(ctx context.Context, userID string) (int64, error)
}

// TokenValidator checks access tokens presented as credentials.
type TokenValidator interface {
	ValidateAccessToken(token string) (*auth.Claims, error)
}

type GRPCServer struct {
	address   string
	users     UserService
	validator TokenValidator
	logger    logging.Logger
}

func NewGRPCServer(a string, l logging.Logger, us UserService, v TokenValidator) *GRPCServer {
	return &GRPCServer{
		address:   a,
		logger:    l.With("module", "grpc_server"),
		users:     us,
		validator: v,
	}
}

func (s *GRPCServer) newServer() *grpc.Server {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.accessTokenInterceptor))
	rpc.RegisterAuthServiceServer(srv, s)
	return srv
}

func (s *GRPCServer) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	return s.Serve(ctx, listen)
}

// Serve accepts connections on lis until ctx is cancelled, then stops
// gracefully.
func (s *GRPCServer) Serve(ctx context.Context, lis net.Listener) error {
	srv := s.newServer()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", lis.Addr().String())

	// starts accepting incoming connections
	if err := srv.Serve(lis); err != nil {
		return err
	}

	return nil
}
