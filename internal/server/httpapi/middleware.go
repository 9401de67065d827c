package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/gophauth/internal/common"
)

type contextKey string

const UserIDKey contextKey = "userID"

func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(UserIDKey).(string)
	return id, ok && id != ""
}

// authenticate requires "Authorization: Bearer <access token>" and stores the
// token subject in the request context.
func (s *HTTPServer) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			writeErrors(w, http.StatusUnauthorized, "missing token")
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], common.TokenTypeBearer) || parts[1] == "" {
			writeErrors(w, http.StatusUnauthorized, "invalid authorization header format")
			return
		}

		claims, err := s.validator.ValidateAccessToken(parts[1])
		if err != nil {
			if errors.Is(err, common.ErrTokenExpired) {
				writeErrors(w, http.StatusUnauthorized, common.ErrTokenExpired.Error())
				return
			}
			writeErrors(w, http.StatusUnauthorized, common.ErrInvalidToken.Error())
			return
		}

		ctx := context.WithValue(r.Context(), UserIDKey, claims.UserID())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
