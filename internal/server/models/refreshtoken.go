package models

import "time"

// RefreshToken is the server side record of a refresh token.
//
// JwtID pairs the record with exactly one access token (its jti claim).
// Used and Invalidated only ever move from false to true.
type RefreshToken struct {
	ID           string
	JwtID        string
	Token        string
	Used         bool
	Invalidated  bool
	CreationTime time.Time
	ExpiryTime   time.Time
	UserID       string
}

// Expired reports whether the record's lifetime ended before now.
func (t *RefreshToken) Expired(now time.Time) bool {
	return t.ExpiryTime.Before(now)
}
