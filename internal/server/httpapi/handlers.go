package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dmitrijs2005/gophauth/internal/server/services"
)

type errorsResponse struct {
	Errors []string `json:"errors"`
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	RefreshToken string `json:"refresh_token"`
}

type registerRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Address  string `json:"address"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type refreshRequest struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type meResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Address  string `json:"address"`
}

type invalidateResponse struct {
	Invalidated int64 `json:"invalidated"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeErrors(w http.ResponseWriter, status int, msgs ...string) {
	writeJSON(w, status, errorsResponse{Errors: msgs})
}

// writeResult renders a TokenResult, using failStatus when it carries errors.
func writeResult(w http.ResponseWriter, r *services.TokenResult, failStatus int) {
	if !r.Success() {
		writeErrors(w, failStatus, r.Errors...)
		return
	}
	writeJSON(w, http.StatusOK, tokenResponse{
		AccessToken:  r.AccessToken,
		TokenType:    r.TokenType,
		ExpiresIn:    r.ExpiresIn,
		RefreshToken: r.RefreshToken,
	})
}

func (s *HTTPServer) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	if errors.Is(err, services.ErrUserNotFound) {
		writeErrors(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	s.logger.Error(r.Context(), "request failed", "op", op, "error", err)
	writeErrors(w, http.StatusInternalServerError, "internal error")
}

const maxBodyBytes = 1 << 20

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeErrors(w, http.StatusRequestEntityTooLarge, "request body too large")
			return false
		}
		writeErrors(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func (s *HTTPServer) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decode(w, r, &req) {
		return
	}

	s.logger.Info(r.Context(), "Registration request", "username", req.Username)

	result, err := s.users.Register(r.Context(), req.Username, req.Password, req.Address)
	if err != nil {
		s.fail(w, r, "register", err)
		return
	}
	writeResult(w, result, http.StatusBadRequest)
}

func (s *HTTPServer) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decode(w, r, &req) {
		return
	}

	result, err := s.users.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		s.fail(w, r, "login", err)
		return
	}
	writeResult(w, result, http.StatusUnauthorized)
}

func (s *HTTPServer) refreshToken(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if !decode(w, r, &req) {
		return
	}

	result, err := s.users.RefreshToken(r.Context(), req.AccessToken, req.RefreshToken)
	if err != nil {
		s.fail(w, r, "refresh", err)
		return
	}
	writeResult(w, result, http.StatusUnauthorized)
}

func (s *HTTPServer) me(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())

	user, err := s.users.CurrentUser(r.Context(), userID)
	if err != nil {
		s.fail(w, r, "me", err)
		return
	}
	writeJSON(w, http.StatusOK, meResponse{ID: user.ID, Username: user.UserName, Address: user.Address})
}

func (s *HTTPServer) invalidate(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())

	n, err := s.users.InvalidateTokens(r.Context(), userID)
	if err != nil {
		s.fail(w, r, "invalidate", err)
		return
	}
	writeJSON(w, http.StatusOK, invalidateResponse{Invalidated: n})
}
