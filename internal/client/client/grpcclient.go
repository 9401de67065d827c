package client

import (
	"context"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/rpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// authAPI is the subset of *rpc.AuthServiceClient used here.
type authAPI interface {
	Register(ctx context.Context, in *rpc.RegisterRequest, opts ...grpc.CallOption) (*rpc.TokenResponse, error)
	Login(ctx context.Context, in *rpc.LoginRequest, opts ...grpc.CallOption) (*rpc.TokenResponse, error)
	RefreshToken(ctx context.Context, in *rpc.RefreshTokenRequest, opts ...grpc.CallOption) (*rpc.TokenResponse, error)
	WhoAmI(ctx context.Context, in *rpc.WhoAmIRequest, opts ...grpc.CallOption) (*rpc.WhoAmIResponse, error)
	InvalidateTokens(ctx context.Context, in *rpc.InvalidateTokensRequest, opts ...grpc.CallOption) (*rpc.InvalidateTokensResponse, error)
}

type GRPCClient struct {
	endpointURL string
	conn        *grpc.ClientConn
	client      authAPI

	mu           sync.Mutex
	accessToken  string
	refreshToken string
	onRefresh    func(accessToken, refreshToken string)
}

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Set(common.AccessTokenHeaderName, token)
	return metadata.NewOutgoingContext(ctx, md)
}

func isTokenExpired(err error) bool {
	st, ok := status.FromError(err)
	return ok && st.Code() == codes.Unauthenticated && st.Message() == common.ErrTokenExpired.Error()
}

func (s *GRPCClient) tokens() (string, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accessToken, s.refreshToken
}

func (s *GRPCClient) SetTokens(accessToken, refreshToken string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accessToken = accessToken
	s.refreshToken = refreshToken
}

// OnTokensRefreshed registers fn to be called after every successful
// rotation, explicit or automatic.
func (s *GRPCClient) OnTokensRefreshed(fn func(accessToken, refreshToken string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onRefresh = fn
}

func (s *GRPCClient) accessTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply interface{},
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	accessToken, refreshToken := s.tokens()
	if accessToken != "" {
		ctx = withAccessToken(ctx, accessToken)
	}

	err := invoker(ctx, method, req, reply, cc, opts...)
	if err == nil || method == rpc.MethodRefreshToken || !isTokenExpired(err) || refreshToken == "" {
		return err
	}

	if _, rerr := s.rotate(ctx, accessToken, refreshToken); rerr != nil {
		return err
	}

	accessToken, _ = s.tokens()
	ctx = withAccessToken(ctx, accessToken)
	return invoker(ctx, method, req, reply, cc, opts...)
}

// rotate redeems the given pair and stores the result.
func (s *GRPCClient) rotate(ctx context.Context, accessToken, refreshToken string) (*rpc.TokenResponse, error) {
	resp, err := s.client.RefreshToken(ctx, &rpc.RefreshTokenRequest{AccessToken: accessToken, RefreshToken: refreshToken})
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.accessToken = resp.AccessToken
	s.refreshToken = resp.RefreshToken
	fn := s.onRefresh
	s.mu.Unlock()

	if fn != nil {
		fn(resp.AccessToken, resp.RefreshToken)
	}
	return resp, nil
}

func NewGophAuthClient(endpointURL string, opts ...grpc.DialOption) (*GRPCClient, error) {
	c := &GRPCClient{endpointURL: endpointURL}
	err := c.InitGRPCClient(opts...)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (s *GRPCClient) InitGRPCClient(opts ...grpc.DialOption) error {
	opts = append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(s.accessTokenInterceptor),
	}, opts...)

	conn, err := grpc.NewClient(s.endpointURL, opts...)
	if err != nil {
		return err
	}
	s.conn = conn
	s.client = rpc.NewAuthServiceClient(conn)
	return nil
}

func (s *GRPCClient) Close() error {
	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}

func (s *GRPCClient) Register(ctx context.Context, username, password, address string) (*rpc.TokenResponse, error) {
	resp, err := s.client.Register(ctx, &rpc.RegisterRequest{Username: username, Password: password, Address: address})
	if err != nil {
		return nil, s.mapError(err)
	}
	s.SetTokens(resp.AccessToken, resp.RefreshToken)
	return resp, nil
}

func (s *GRPCClient) Login(ctx context.Context, username, password string) (*rpc.TokenResponse, error) {
	resp, err := s.client.Login(ctx, &rpc.LoginRequest{Username: username, Password: password})
	if err != nil {
		return nil, s.mapError(err)
	}
	s.SetTokens(resp.AccessToken, resp.RefreshToken)
	return resp, nil
}

// Refresh explicitly rotates the current pair. The server accepts it only
// once the access token has expired.
func (s *GRPCClient) Refresh(ctx context.Context) (*rpc.TokenResponse, error) {
	accessToken, refreshToken := s.tokens()
	if refreshToken == "" {
		return nil, ErrNoSession
	}

	resp, err := s.rotate(ctx, accessToken, refreshToken)
	if err != nil {
		return nil, s.mapError(err)
	}
	return resp, nil
}

func (s *GRPCClient) WhoAmI(ctx context.Context) (*rpc.WhoAmIResponse, error) {
	resp, err := s.client.WhoAmI(ctx, &rpc.WhoAmIRequest{})
	if err != nil {
		return nil, s.mapError(err)
	}
	return resp, nil
}

func (s *GRPCClient) InvalidateTokens(ctx context.Context) (int64, error) {
	resp, err := s.client.InvalidateTokens(ctx, &rpc.InvalidateTokensRequest{})
	if err != nil {
		return 0, s.mapError(err)
	}
	return resp.Invalidated, nil
}

func (s *GRPCClient) mapError(err error) error {
	if err == nil {
		return nil
	}

	st, _ := status.FromError(err)
	switch st.Code() {
	case codes.Unauthenticated, codes.PermissionDenied:
		return fmt.Errorf("%w: %s", ErrUnauthorized, st.Message())
	case codes.InvalidArgument, codes.AlreadyExists:
		return fmt.Errorf("%w: %s", ErrRejected, st.Message())
	case codes.Unavailable, codes.DeadlineExceeded:
		return ErrUnavailable
	default:
		return fmt.Errorf("rpc error: %w", err)
	}
}
