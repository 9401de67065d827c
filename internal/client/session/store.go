// Package session keeps the CLI's current access/refresh token pair in a
// local SQLite database so that consecutive invocations share one login.
package session

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/gophauth/internal/client/migrations"
	"github.com/dmitrijs2005/gophauth/internal/dbx"
	"github.com/dmitrijs2005/gophauth/internal/filex"
	"github.com/pressly/goose/v3"

	_ "modernc.org/sqlite"
)

const (
	keyUsername     = "username"
	keyAccessToken  = "access_token"
	keyRefreshToken = "refresh_token"
)

// Tokens is the cached session. A zero value means "not logged in".
type Tokens struct {
	Username     string
	AccessToken  string
	RefreshToken string
}

func (t Tokens) Empty() bool {
	return t.AccessToken == "" && t.RefreshToken == ""
}

type Store struct {
	db   *sql.DB
	repo Repository
}

func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}
	return goose.UpContext(ctx, db, ".")
}

// Open opens (creating if needed) the session database at path and applies
// the embedded migrations.
func Open(ctx context.Context, path string) (*Store, error) {
	if err := filex.EnsureParentDir(path); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db, repo: NewSQLiteRepository(db)}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Load(ctx context.Context) (Tokens, error) {
	var t Tokens
	for key, dst := range map[string]*string{
		keyUsername:     &t.Username,
		keyAccessToken:  &t.AccessToken,
		keyRefreshToken: &t.RefreshToken,
	} {
		v, _, err := s.repo.Get(ctx, key)
		if err != nil {
			return Tokens{}, err
		}
		*dst = v
	}
	return t, nil
}

// Save replaces the cached session atomically.
func (s *Store) Save(ctx context.Context, t Tokens) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := NewSQLiteRepository(tx)
		if err := repo.Clear(ctx); err != nil {
			return err
		}
		for key, v := range map[string]string{
			keyUsername:     t.Username,
			keyAccessToken:  t.AccessToken,
			keyRefreshToken: t.RefreshToken,
		} {
			if err := repo.Set(ctx, key, v); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Store) Clear(ctx context.Context) error {
	return s.repo.Clear(ctx)
}
