// Package services contains server-side business logic: issuing token pairs,
// rotating refresh tokens and the UserService facade used by the transports.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/dbx"
	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/auth"
	"github.com/dmitrijs2005/gophauth/internal/server/config"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophauth/internal/server/telemetry"
)

// CredentialStore is what UserService needs from the user store.
type CredentialStore interface {
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	Create(ctx context.Context, username, password, address string) (*models.User, []string, error)
	CheckPassword(user *models.User, password string) bool
}

// UserService provides authentication-related operations:
// - Register: create users and mint their first token pair
// - Login: verify credentials and mint tokens
// - RefreshToken: rotate refresh tokens and mint new access tokens
//
// Expected failures are reported in TokenResult.Errors; a non-nil error means
// the request could not be served.
type UserService struct {
	tx          dbx.Transactor
	repomanager repomanager.RepositoryManager
	creds       CredentialStore
	issuer      *TokenIssuer
	refresher   *RefreshCoordinator
	metrics     *telemetry.Metrics
	log         logging.Logger
}

type Option func(*UserService)

func WithLogger(l logging.Logger) Option {
	return func(s *UserService) { s.log = l }
}

func WithMetrics(m *telemetry.Metrics) Option {
	return func(s *UserService) { s.metrics = m }
}

// WithClock replaces time.Now for issuing and checking tokens.
func WithClock(now func() time.Time) Option {
	return func(s *UserService) {
		s.issuer.now = now
		s.refresher.now = now
	}
}

// NewUserService constructs a UserService using repositories and server config.
func NewUserService(tx dbx.Transactor, m repomanager.RepositoryManager, signer *auth.Signer,
	creds CredentialStore, cfg *config.Config, opts ...Option) *UserService {

	issuer := NewTokenIssuer(signer, m, cfg.AccessTokenValidityDuration, cfg.RefreshTokenValidityMonths)
	s := &UserService{
		tx:          tx,
		repomanager: m,
		creds:       creds,
		issuer:      issuer,
		log:         logging.Nop{},
	}
	s.refresher = NewRefreshCoordinator(signer, m, tx, issuer, nil, nil)

	for _, o := range opts {
		o(s)
	}

	s.log = s.log.With("module", "users")
	s.refresher.metrics = s.metrics
	s.refresher.log = s.log.With("op", "refresh")
	return s
}

func (s *UserService) Register(ctx context.Context, username, password, address string) (*TokenResult, error) {
	_, err := s.creds.FindByUsername(ctx, username)
	switch {
	case err == nil:
		return failure(common.MsgUserExists), nil
	case !errors.Is(err, common.ErrorNotFound):
		return nil, fmt.Errorf("error searching user: %w", err)
	}

	user, msgs, err := s.creds.Create(ctx, username, password, address)
	if err != nil {
		return nil, err
	}
	if len(msgs) > 0 {
		return failure(msgs...), nil
	}

	result, err := s.issuer.Issue(ctx, s.tx.Conn(), user)
	if err != nil {
		return nil, err
	}

	s.log.Info(ctx, "user registered", "user_id", user.ID)
	s.metrics.IssuedInc(ctx, telemetry.FlowRegister)
	return result, nil
}

func (s *UserService) Login(ctx context.Context, username, password string) (*TokenResult, error) {
	user, err := s.creds.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return failure(MsgUserNotExists), nil
		}
		return nil, fmt.Errorf("error searching user: %w", err)
	}

	if !s.creds.CheckPassword(user, password) {
		s.log.Info(ctx, "wrong password", "user_id", user.ID)
		return failure(MsgWrongPassword), nil
	}

	result, err := s.issuer.Issue(ctx, s.tx.Conn(), user)
	if err != nil {
		return nil, err
	}

	s.metrics.IssuedInc(ctx, telemetry.FlowLogin)
	return result, nil
}

// RefreshToken rotates the pair. A rejected pair comes back as a single
// "<code>: Invalid request!" message. ErrUserNotFound is returned as an error
// so transports can answer it as unauthorized.
func (s *UserService) RefreshToken(ctx context.Context, accessToken, refreshToken string) (*TokenResult, error) {
	result, err := s.refresher.Refresh(ctx, accessToken, refreshToken)
	if err != nil {
		var rerr *RefreshError
		if errors.As(err, &rerr) {
			return failure(rerr.Error()), nil
		}
		return nil, err
	}
	return result, nil
}

// CurrentUser returns the account a validated access token belongs to.
func (s *UserService) CurrentUser(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.creds.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("error loading user: %w", err)
	}
	return user, nil
}

// InvalidateTokens marks every outstanding refresh token of userID as
// invalidated, forcing a new login once the current access token expires.
func (s *UserService) InvalidateTokens(ctx context.Context, userID string) (int64, error) {
	n, err := s.repomanager.RefreshTokens(s.tx.Conn()).InvalidateByUser(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("error invalidating refresh tokens: %w", err)
	}
	s.log.Info(ctx, "refresh tokens invalidated", "user_id", userID, "count", n)
	return n, nil
}
