package services

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/dbx"
	"github.com/dmitrijs2005/gophauth/internal/server/auth"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/repomanager"
)

const refreshTokenSize = 32

// TokenIssuer mints an access/refresh pair for a user and stores the refresh
// record that ties the two together.
type TokenIssuer struct {
	signer        *auth.Signer
	repomanager   repomanager.RepositoryManager
	accessTTL     time.Duration
	refreshMonths int
	now           func() time.Time
}

func NewTokenIssuer(signer *auth.Signer, m repomanager.RepositoryManager, accessTTL time.Duration, refreshMonths int) *TokenIssuer {
	return &TokenIssuer{
		signer:        signer,
		repomanager:   m,
		accessTTL:     accessTTL,
		refreshMonths: refreshMonths,
		now:           time.Now,
	}
}

// Issue signs a new access token for user, generates a refresh token and
// persists the record through db, which may be a running transaction. Nothing
// is returned unless the record was stored.
func (i *TokenIssuer) Issue(ctx context.Context, db dbx.DBTX, user *models.User) (*TokenResult, error) {
	accessToken, jti, err := i.signer.Sign(user.ID, i.accessTTL)
	if err != nil {
		return nil, err
	}

	refreshToken, err := common.MakeRandBase64String(refreshTokenSize)
	if err != nil {
		return nil, fmt.Errorf("error generating refresh token: %w", err)
	}

	now := i.now().UTC()
	record := &models.RefreshToken{
		JwtID:        jti,
		Token:        refreshToken,
		UserID:       user.ID,
		CreationTime: now,
		ExpiryTime:   now.AddDate(0, i.refreshMonths, 0),
	}

	if err := i.repomanager.RefreshTokens(db).Create(ctx, record); err != nil {
		return nil, fmt.Errorf("error storing refresh token: %w", err)
	}

	return &TokenResult{
		AccessToken:  accessToken,
		TokenType:    common.TokenTypeBearer,
		ExpiresIn:    int(i.accessTTL / time.Second),
		RefreshToken: refreshToken,
	}, nil
}
