package cli

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/gophauth/internal/client/client"
	"github.com/dmitrijs2005/gophauth/internal/client/session"
	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/rpc"
)

func (a *App) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.config.RequestTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, a.config.RequestTimeout)
}

// argOrPrompt returns args[i] when present, otherwise asks for it.
func (a *App) argOrPrompt(args []string, i int, prompt string) (string, error) {
	if i < len(args) {
		return args[i], nil
	}
	return GetSimpleText(a.reader, prompt, a.out)
}

func (a *App) saveLogin(ctx context.Context, username string, resp *rpc.TokenResponse) error {
	a.session = session.Tokens{Username: username, AccessToken: resp.AccessToken, RefreshToken: resp.RefreshToken}
	return a.sessions.Save(ctx, a.session)
}

func (a *App) register(ctx context.Context, args []string) error {
	username, err := a.argOrPrompt(args, 0, "Enter user name")
	if err != nil {
		return err
	}
	address, err := a.argOrPrompt(args, 1, "Enter address")
	if err != nil {
		return err
	}

	password, err := GetPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	resp, err := a.client.Register(ctx, username, string(password), address)
	if err != nil {
		return err
	}
	if err := a.saveLogin(ctx, username, resp); err != nil {
		return err
	}

	a.printf("Registered and logged in as %s\n", username)
	return nil
}

func (a *App) login(ctx context.Context, args []string) error {
	username, err := a.argOrPrompt(args, 0, "Enter user name")
	if err != nil {
		return err
	}

	password, err := GetPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	resp, err := a.client.Login(ctx, username, string(password))
	if err != nil {
		return err
	}
	if err := a.saveLogin(ctx, username, resp); err != nil {
		return err
	}

	a.printf("Logged in as %s (access token valid for %ds)\n", username, resp.ExpiresIn)
	return nil
}

func (a *App) refresh(ctx context.Context) error {
	if a.session.Empty() {
		return client.ErrNoSession
	}

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	resp, err := a.client.Refresh(ctx)
	if err != nil {
		return err
	}

	a.printf("Tokens refreshed (access token valid for %ds)\n", resp.ExpiresIn)
	return nil
}

func (a *App) whoami(ctx context.Context) error {
	if a.session.Empty() {
		return client.ErrNoSession
	}

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	who, err := a.client.WhoAmI(ctx)
	if err != nil {
		return err
	}

	a.printf("id: %s\nusername: %s\naddress: %s\n", who.ID, who.Username, who.Address)
	return nil
}

func (a *App) invalidate(ctx context.Context) error {
	if a.session.Empty() {
		return client.ErrNoSession
	}

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	n, err := a.client.InvalidateTokens(ctx)
	if err != nil {
		return err
	}

	if err := a.sessions.Clear(ctx); err != nil {
		return err
	}
	a.session = session.Tokens{}

	a.printf("Invalidated %d refresh token(s); please log in again\n", n)
	return nil
}

func (a *App) logout(ctx context.Context) error {
	if err := a.sessions.Clear(ctx); err != nil {
		return err
	}
	a.session = session.Tokens{}
	a.printf("Logged out\n")
	return nil
}

// isUnauthorized reports whether err means the cached session is no longer
// usable.
func isUnauthorized(err error) bool {
	return errors.Is(err, client.ErrUnauthorized) || errors.Is(err, client.ErrNoSession)
}
