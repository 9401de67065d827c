// Package httpapi exposes the user services over HTTP/JSON.
package httpapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/auth"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/dmitrijs2005/gophauth/internal/server/services"
)

const shutdownTimeout = 5 * time.Second

type UserService interface {
	Register(ctx context.Context, username, password, address string) (*services.TokenResult, error)
	Login(ctx context.Context, username, password string) (*services.TokenResult, error)
	RefreshToken(ctx context.Context, accessToken, refreshToken string) (*services.TokenResult, error)
	CurrentUser(ctx context.Context, userID string) (*models.User, error)
	InvalidateTokens(ctx context.Context, userID string) (int64, error)
}

type TokenValidator interface {
	ValidateAccessToken(token string) (*auth.Claims, error)
}

type HTTPServer struct {
	address        string
	users          UserService
	validator      TokenValidator
	allowedOrigins []string
	logger         logging.Logger
}

func NewHTTPServer(a string, l logging.Logger, us UserService, v TokenValidator, allowedOrigins []string) *HTTPServer {
	return &HTTPServer{
		address:        a,
		logger:         l.With("module", "http_server"),
		users:          us,
		validator:      v,
		allowedOrigins: allowedOrigins,
	}
}

func (s *HTTPServer) Run(ctx context.Context) error {
	lis, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, lis)
}

// Serve handles requests on lis until ctx is cancelled, then shuts down
// waiting at most shutdownTimeout for in-flight requests.
func (s *HTTPServer) Serve(ctx context.Context, lis net.Listener) error {
	srv := &http.Server{
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shCtx); err != nil {
			s.logger.Error(ctx, "HTTP shutdown failed", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", lis.Addr().String())

	if err := srv.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
