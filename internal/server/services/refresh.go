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
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophauth/internal/server/telemetry"
)

// RefreshCoordinator exchanges an expired access token plus its paired
// refresh token for a fresh pair. Each refresh token is accepted once.
type RefreshCoordinator struct {
	signer      *auth.Signer
	repomanager repomanager.RepositoryManager
	tx          dbx.Transactor
	issuer      *TokenIssuer
	metrics     *telemetry.Metrics
	log         logging.Logger
	now         func() time.Time
}

func NewRefreshCoordinator(signer *auth.Signer, m repomanager.RepositoryManager, tx dbx.Transactor,
	issuer *TokenIssuer, metrics *telemetry.Metrics, log logging.Logger) *RefreshCoordinator {
	return &RefreshCoordinator{
		signer:      signer,
		repomanager: m,
		tx:          tx,
		issuer:      issuer,
		metrics:     metrics,
		log:         log,
		now:         time.Now,
	}
}

// Refresh returns a *RefreshError for every expected rejection and
// ErrUserNotFound when the record's owner is gone. Any other error is an
// infrastructure failure.
func (c *RefreshCoordinator) Refresh(ctx context.Context, accessToken, refreshToken string) (*TokenResult, error) {
	result, err := c.refresh(ctx, accessToken, refreshToken)
	if err != nil {
		var rerr *RefreshError
		if errors.As(err, &rerr) {
			c.metrics.RejectedInc(ctx, rerr.Code)
			c.log.Info(ctx, "refresh rejected", "code", rerr.Code)
		}
		return nil, err
	}
	c.metrics.IssuedInc(ctx, telemetry.FlowRefresh)
	return result, nil
}

func (c *RefreshCoordinator) refresh(ctx context.Context, accessToken, refreshToken string) (*TokenResult, error) {
	claims, err := c.signer.VerifySignatureIgnoringExpiry(accessToken)
	if err != nil {
		return nil, reject(CodeBadSignature)
	}

	now := c.now()
	if claims.ExpiresAt.After(now) {
		return nil, reject(CodeAccessNotExpired)
	}

	record, err := c.repomanager.RefreshTokens(c.tx.Conn()).Find(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, reject(CodeRefreshNotFound)
		}
		return nil, fmt.Errorf("error searching refresh token: %w", err)
	}

	switch {
	case record.Expired(now):
		return nil, reject(CodeRefreshExpired)
	case record.Invalidated:
		return nil, reject(CodeRefreshInvalidated)
	case record.Used:
		return nil, reject(CodeRefreshUsed)
	case record.JwtID != claims.ID:
		return nil, reject(CodeJwtIDMismatch)
	}

	var result *TokenResult
	err = c.tx.WithinTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		won, err := c.repomanager.RefreshTokens(tx).MarkUsed(ctx, refreshToken)
		if err != nil {
			return fmt.Errorf("error marking refresh token used: %w", err)
		}
		if !won {
			// lost the update: report whichever flag the winner set
			latest, err := c.repomanager.RefreshTokens(tx).Find(ctx, refreshToken)
			if err == nil && latest.Invalidated {
				return reject(CodeRefreshInvalidated)
			}
			return reject(CodeRefreshUsed)
		}

		user, err := c.repomanager.Users(tx).GetUserByID(ctx, record.UserID)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				c.log.Error(ctx, "refresh token owner is missing", "user_id", record.UserID, "jti", record.JwtID)
				return ErrUserNotFound
			}
			return fmt.Errorf("error loading user: %w", err)
		}

		result, err = c.issuer.Issue(ctx, tx, user)
		return err
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}
