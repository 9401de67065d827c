package grpc

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/dmitrijs2005/gophauth/internal/server/services"
)

var errBoom = errors.New("boom")

type fakeUser struct {
	regResp *services.TokenResult
	regErr  error

	loginResp *services.TokenResult
	loginErr  error

	refreshResp *services.TokenResult
	refreshErr  error

	user    *models.User
	userErr error

	invalidated   int64
	invalidateErr error

	gotUserID string
}

func (f *fakeUser) Register(ctx context.Context, username, password, address string) (*services.TokenResult, error) {
	return f.regResp, f.regErr
}

func (f *fakeUser) Login(ctx context.Context, username, password string) (*services.TokenResult, error) {
	return f.loginResp, f.loginErr
}

func (f *fakeUser) RefreshToken(ctx context.Context, accessToken, refreshToken string) (*services.TokenResult, error) {
	return f.refreshResp, f.refreshErr
}

func (f *fakeUser) CurrentUser(ctx context.Context, userID string) (*models.User, error) {
	f.gotUserID = userID
	return f.user, f.userErr
}

func (f *fakeUser) InvalidateTokens(ctx context.Context, userID string) (int64, error) {
	f.gotUserID = userID
	return f.invalidated, f.invalidateErr
}

func okResult() *services.TokenResult {
	return &services.TokenResult{AccessToken: "acc", TokenType: "Bearer", ExpiresIn: 900, RefreshToken: "ref"}
}
