// Package credentials is the user store behind register and login: account
// lookup, the password policy and argon2id password hashing.
package credentials

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/cryptox"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/users"
)

// Policy describes what a new account must satisfy.
type Policy struct {
	PasswordMinLength int
	RequireDigit      bool
	UserNameMaxLength int
	AddressMaxLength  int
}

var DefaultPolicy = Policy{
	PasswordMinLength: 6,
	RequireDigit:      true,
	UserNameMaxLength: 256,
	AddressMaxLength:  128,
}

// Validate returns human readable violations, or nil when the input passes.
func (p Policy) Validate(username, password, address string) []string {
	var errs []string

	switch {
	case strings.TrimSpace(username) == "":
		errs = append(errs, "The UserName field is required.")
	case p.UserNameMaxLength > 0 && utf8.RuneCountInString(username) > p.UserNameMaxLength:
		errs = append(errs, fmt.Sprintf("The field UserName must be a string with a maximum length of %d.", p.UserNameMaxLength))
	}

	switch {
	case strings.TrimSpace(address) == "":
		errs = append(errs, "The Address field is required.")
	case p.AddressMaxLength > 0 && utf8.RuneCountInString(address) > p.AddressMaxLength:
		errs = append(errs, fmt.Sprintf("The field Address must be a string with a maximum length of %d.", p.AddressMaxLength))
	}

	if utf8.RuneCountInString(password) < p.PasswordMinLength {
		errs = append(errs, fmt.Sprintf("Passwords must be at least %d characters.", p.PasswordMinLength))
	}
	if p.RequireDigit && strings.IndexFunc(password, unicode.IsDigit) < 0 {
		errs = append(errs, "Passwords must have at least one digit ('0'-'9').")
	}

	return errs
}

type Store struct {
	repo   users.Repository
	policy Policy
	params cryptox.Params
}

type Option func(*Store)

// WithHashParams overrides the argon2id cost, mostly for tests.
func WithHashParams(p cryptox.Params) Option {
	return func(s *Store) { s.params = p }
}

func NewStore(repo users.Repository, policy Policy, opts ...Option) *Store {
	s := &Store{repo: repo, policy: policy, params: cryptox.DefaultParams}
	for _, o := range opts {
		o(s)
	}
	return s
}

// FindByUsername returns common.ErrorNotFound for unknown names.
func (s *Store) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.repo.GetUserByLogin(ctx, username)
}

// FindByID returns common.ErrorNotFound for unknown ids.
func (s *Store) FindByID(ctx context.Context, id string) (*models.User, error) {
	return s.repo.GetUserByID(ctx, id)
}

// Create validates and stores a new user. Policy violations and a taken user
// name come back as messages with a nil error; the error is reserved for
// storage failures.
func (s *Store) Create(ctx context.Context, username, password, address string) (*models.User, []string, error) {
	if errs := s.policy.Validate(username, password, address); len(errs) > 0 {
		return nil, errs, nil
	}

	user, err := s.repo.Create(ctx, &models.User{
		UserName:     username,
		Address:      address,
		PasswordHash: cryptox.HashPassword(password, s.params),
	})
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, []string{common.MsgUserExists}, nil
		}
		return nil, nil, fmt.Errorf("error creating user: %w", err)
	}

	return user, nil, nil
}

// CheckPassword reports whether password matches the user's stored hash. A
// corrupt hash never matches.
func (s *Store) CheckPassword(user *models.User, password string) bool {
	ok, err := cryptox.VerifyPassword(password, user.PasswordHash)
	return err == nil && ok
}
