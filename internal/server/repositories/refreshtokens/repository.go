// Package refreshtokens declares the server-side repository contract for
// refresh token records and its PostgreSQL and Redis implementations.
package refreshtokens

import (
	"context"

	"github.com/dmitrijs2005/gophauth/internal/server/models"
)

// Repository stores refresh token records keyed by their opaque token string.
// Records are never deleted here; Used and Invalidated only move to true.
type Repository interface {
	// Create persists a new record. Token must be unique.
	Create(ctx context.Context, token *models.RefreshToken) error

	// Find returns the record for token or common.ErrorNotFound.
	Find(ctx context.Context, token string) (*models.RefreshToken, error)

	// MarkUsed flips Used to true only if the record is currently neither used
	// nor invalidated. It reports whether this call performed the transition,
	// so among concurrent callers at most one observes true.
	MarkUsed(ctx context.Context, token string) (bool, error)

	// InvalidateByUser marks every unused, still valid record of userID as
	// invalidated and returns how many were changed.
	InvalidateByUser(ctx context.Context, userID string) (int64, error)
}
