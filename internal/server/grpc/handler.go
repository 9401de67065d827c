package grpc

import (
	"context"
	"errors"
	"strings"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/rpc"
	"github.com/dmitrijs2005/gophauth/internal/server/services"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func toResponse(r *services.TokenResult) *rpc.TokenResponse {
	return &rpc.TokenResponse{
		AccessToken:  r.AccessToken,
		TokenType:    r.TokenType,
		ExpiresIn:    r.ExpiresIn,
		RefreshToken: r.RefreshToken,
	}
}

// failed converts a rejected TokenResult into a status error with code c.
func failed(c codes.Code, r *services.TokenResult) error {
	return status.Error(c, strings.Join(r.Errors, "; "))
}

func (s *GRPCServer) internal(ctx context.Context, op string, err error) error {
	if errors.Is(err, services.ErrUserNotFound) {
		return status.Error(codes.Unauthenticated, "unauthorized")
	}
	s.logger.Error(ctx, "request failed", "op", op, "error", err)
	return status.Error(codes.Internal, "internal error")
}

func (s *GRPCServer) Register(ctx context.Context, req *rpc.RegisterRequest) (*rpc.TokenResponse, error) {

	s.logger.Info(ctx, "Registration request", "username", req.Username)

	result, err := s.users.Register(ctx, req.Username, req.Password, req.Address)
	if err != nil {
		return nil, s.internal(ctx, "register", err)
	}

	if !result.Success() {
		if len(result.Errors) == 1 && result.Errors[0] == common.MsgUserExists {
			return nil, failed(codes.AlreadyExists, result)
		}
		return nil, failed(codes.InvalidArgument, result)
	}

	return toResponse(result), nil
}

func (s *GRPCServer) Login(ctx context.Context, req *rpc.LoginRequest) (*rpc.TokenResponse, error) {

	result, err := s.users.Login(ctx, req.Username, req.Password)
	if err != nil {
		return nil, s.internal(ctx, "login", err)
	}

	if !result.Success() {
		return nil, failed(codes.Unauthenticated, result)
	}

	return toResponse(result), nil
}

func (s *GRPCServer) RefreshToken(ctx context.Context, req *rpc.RefreshTokenRequest) (*rpc.TokenResponse, error) {

	result, err := s.users.RefreshToken(ctx, req.AccessToken, req.RefreshToken)
	if err != nil {
		return nil, s.internal(ctx, "refresh", err)
	}

	if !result.Success() {
		return nil, failed(codes.Unauthenticated, result)
	}

	return toResponse(result), nil
}

func (s *GRPCServer) WhoAmI(ctx context.Context, _ *rpc.WhoAmIRequest) (*rpc.WhoAmIResponse, error) {

	userID, ok := UserIDFromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "missing token")
	}

	user, err := s.users.CurrentUser(ctx, userID)
	if err != nil {
		return nil, s.internal(ctx, "whoami", err)
	}

	return &rpc.WhoAmIResponse{ID: user.ID, Username: user.UserName, Address: user.Address}, nil
}

func (s *GRPCServer) InvalidateTokens(ctx context.Context, _ *rpc.InvalidateTokensRequest) (*rpc.InvalidateTokensResponse, error) {

	userID, ok := UserIDFromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "missing token")
	}

	n, err := s.users.InvalidateTokens(ctx, userID)
	if err != nil {
		return nil, s.internal(ctx, "invalidate", err)
	}

	return &rpc.InvalidateTokensResponse{Invalidated: n}, nil
}
