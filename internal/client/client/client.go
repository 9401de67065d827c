package client

import (
	"context"

	"github.com/dmitrijs2005/gophauth/internal/rpc"
)

// Client is the transport-agnostic contract the CLI talks to.
type Client interface {
	Close() error
	Register(ctx context.Context, username, password, address string) (*rpc.TokenResponse, error)
	Login(ctx context.Context, username, password string) (*rpc.TokenResponse, error)
	Refresh(ctx context.Context) (*rpc.TokenResponse, error)
	WhoAmI(ctx context.Context) (*rpc.WhoAmIResponse, error)
	InvalidateTokens(ctx context.Context) (int64, error)
	SetTokens(accessToken, refreshToken string)
	OnTokensRefreshed(fn func(accessToken, refreshToken string))
}
