package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/dmitrijs2005/gophauth/internal/client/client"
	"github.com/dmitrijs2005/gophauth/internal/client/config"
	"github.com/dmitrijs2005/gophauth/internal/client/session"
)

// SessionStore persists the token pair between invocations.
type SessionStore interface {
	Load(ctx context.Context) (session.Tokens, error)
	Save(ctx context.Context, t session.Tokens) error
	Clear(ctx context.Context) error
	Close() error
}

type App struct {
	config   *config.Config
	client   client.Client
	sessions SessionStore
	session  session.Tokens
	reader   *bufio.Reader
	out      io.Writer
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	sessions, err := session.Open(ctx, c.SessionDBPath)
	if err != nil {
		log.Printf("error initializing session database: %s", err.Error())
		return nil, err
	}

	apiClient, err := client.NewGophAuthClient(c.ServerEndpointAddr)
	if err != nil {
		_ = sessions.Close()
		return nil, err
	}

	return newApp(ctx, c, apiClient, sessions, bufio.NewReader(os.Stdin), os.Stdout)
}

func newApp(ctx context.Context, c *config.Config, cl client.Client, sessions SessionStore, r *bufio.Reader, w io.Writer) (*App, error) {
	a := &App{config: c, client: cl, sessions: sessions, reader: r, out: w}

	t, err := sessions.Load(ctx)
	if err != nil {
		_ = cl.Close()
		_ = sessions.Close()
		return nil, err
	}
	a.session = t
	cl.SetTokens(t.AccessToken, t.RefreshToken)
	cl.OnTokensRefreshed(a.persistTokens)

	return a, nil
}

// persistTokens stores a rotated pair. The old refresh token is spent at
// this point, so failing to save is reported loudly.
func (a *App) persistTokens(accessToken, refreshToken string) {
	a.session.AccessToken = accessToken
	a.session.RefreshToken = refreshToken
	if err := a.sessions.Save(context.Background(), a.session); err != nil {
		log.Printf("failed to save session: %v", err)
	}
}

func (a *App) Close() {
	_ = a.client.Close()
	_ = a.sessions.Close()
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}

// Run executes the subcommand in args and returns the process exit code.
func (a *App) Run(ctx context.Context, args []string) int {
	defer a.Close()

	if len(args) == 0 {
		a.usage()
		return 2
	}

	cmd, rest := args[0], args[1:]

	var err error
	switch cmd {
	case "help":
		a.usage()
		return 0
	case "register":
		err = a.register(ctx, rest)
	case "login":
		err = a.login(ctx, rest)
	case "refresh":
		err = a.refresh(ctx)
	case "whoami":
		err = a.whoami(ctx)
	case "invalidate":
		err = a.invalidate(ctx)
	case "logout":
		err = a.logout(ctx)
	default:
		a.printf("Unknown command: %s\n", cmd)
		a.usage()
		return 2
	}

	if err != nil {
		a.printf("error: %v\n", err)
		if isUnauthorized(err) {
			a.printf("run 'login' to start a new session\n")
		}
		return 1
	}
	return 0
}

func (a *App) usage() {
	a.printf("Usage: gophauth [-a addr] [-f session.db] [-t seconds] [-c config.json] <command>\n")
	a.printf("Commands: register [username] [address], login [username], refresh, whoami, invalidate, logout\n")
}
