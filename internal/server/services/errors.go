package services

import (
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophauth/internal/common"
)

// Refresh rejection codes. Clients only ever see the number.
const (
	CodeBadSignature       = 1
	CodeAccessNotExpired   = 2
	CodeRefreshNotFound    = 3
	CodeRefreshExpired     = 4
	CodeRefreshInvalidated = 5
	CodeRefreshUsed        = 6
	CodeJwtIDMismatch      = 7
)

const (
	MsgUserNotExists = "user does not exist!"
	MsgWrongPassword = "wrong user name or password!"
)

// ErrUserNotFound means a valid refresh record or access token points at a
// user that no longer exists.
var ErrUserNotFound = errors.New("user not found")

// RefreshError is an expected refresh rejection. It matches
// common.ErrInvalidToken under errors.Is.
type RefreshError struct {
	Code int
}

func (e *RefreshError) Error() string {
	return fmt.Sprintf("%d: Invalid request!", e.Code)
}

func (e *RefreshError) Is(target error) bool {
	return target == common.ErrInvalidToken
}

func reject(code int) error {
	return &RefreshError{Code: code}
}
