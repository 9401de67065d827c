// Package auth signs and verifies the HS256 access tokens handed out by the
// server.
package auth

import (
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims is the claim set carried by an access token: jti, sub, iat, nbf and exp.
type Claims struct {
	jwt.RegisteredClaims
}

// UserID returns the sub claim.
func (c *Claims) UserID() string {
	return c.Subject
}

// Signer issues and checks access tokens with a single symmetric key.
// It holds no mutable state and is safe for concurrent use.
type Signer struct {
	key    []byte
	method jwt.SigningMethod
	now    func() time.Time
}

func NewSigner(secretKey []byte) (*Signer, error) {
	if len(secretKey) == 0 {
		return nil, errors.New("empty signing key")
	}
	key := make([]byte, len(secretKey))
	copy(key, secretKey)
	return &Signer{key: key, method: jwt.SigningMethodHS256, now: time.Now}, nil
}

// Sign creates a token for userID valid for ttl and returns it together with
// its freshly generated jti.
func (s *Signer) Sign(userID string, ttl time.Duration) (string, string, error) {
	id := uuid.New()
	jti := hex.EncodeToString(id[:])

	now := s.now()
	token := jwt.NewWithClaims(s.method, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	})

	tokenString, err := token.SignedString(s.key)
	if err != nil {
		return "", "", fmt.Errorf("error signing token: %w", err)
	}

	return tokenString, jti, nil
}

// VerifySignatureIgnoringExpiry checks the MAC and the algorithm only. An
// expired token is accepted so that its jti stays readable for the refresh
// flow. Tokens signed with any algorithm other than HS256 are rejected.
func (s *Signer) VerifySignatureIgnoringExpiry(tokenString string) (*Claims, error) {
	claims := &Claims{}

	_, err := jwt.ParseWithClaims(tokenString, claims, s.keyFunc,
		jwt.WithValidMethods([]string{s.method.Alg()}),
		jwt.WithoutClaimsValidation(),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}
	if claims.ExpiresAt == nil {
		return nil, fmt.Errorf("%w: missing exp claim", common.ErrInvalidToken)
	}

	return claims, nil
}

// ValidateAccessToken performs full validation, including exp and nbf, for
// requests that present an access token as their credential.
func (s *Signer) ValidateAccessToken(tokenString string) (*Claims, error) {
	claims := &Claims{}

	_, err := jwt.ParseWithClaims(tokenString, claims, s.keyFunc,
		jwt.WithValidMethods([]string{s.method.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, common.ErrInvalidToken
	}
	if claims.Subject == "" {
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}

func (s *Signer) keyFunc(*jwt.Token) (any, error) {
	return s.key, nil
}
