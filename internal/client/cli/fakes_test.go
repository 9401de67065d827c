package cli

import (
	"bufio"
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/client/config"
	"github.com/dmitrijs2005/gophauth/internal/client/session"
	"github.com/dmitrijs2005/gophauth/internal/rpc"
	"github.com/stretchr/testify/require"
)

type fakeClient struct {
	gotUser, gotPass, gotAddr string

	tokenResp *rpc.TokenResponse
	whoResp   *rpc.WhoAmIResponse
	invalid   int64
	err       error

	setAccess, setRefresh string
	onRefresh             func(a, r string)
	refreshCalls          int
	closed                bool
}

func (f *fakeClient) Close() error { f.closed = true; return nil }

func (f *fakeClient) Register(_ context.Context, u, p, addr string) (*rpc.TokenResponse, error) {
	f.gotUser, f.gotPass, f.gotAddr = u, p, addr
	return f.tokenResp, f.err
}

func (f *fakeClient) Login(_ context.Context, u, p string) (*rpc.TokenResponse, error) {
	f.gotUser, f.gotPass = u, p
	return f.tokenResp, f.err
}

func (f *fakeClient) Refresh(context.Context) (*rpc.TokenResponse, error) {
	f.refreshCalls++
	if f.err != nil {
		return nil, f.err
	}
	if f.onRefresh != nil {
		f.onRefresh(f.tokenResp.AccessToken, f.tokenResp.RefreshToken)
	}
	return f.tokenResp, nil
}

func (f *fakeClient) WhoAmI(context.Context) (*rpc.WhoAmIResponse, error) { return f.whoResp, f.err }

func (f *fakeClient) InvalidateTokens(context.Context) (int64, error) { return f.invalid, f.err }

func (f *fakeClient) SetTokens(a, r string) { f.setAccess, f.setRefresh = a, r }

func (f *fakeClient) OnTokensRefreshed(fn func(a, r string)) { f.onRefresh = fn }

type memSessions struct {
	t       session.Tokens
	saves   int
	cleared bool
	closed  bool
	loadErr error
}

func (m *memSessions) Load(context.Context) (session.Tokens, error) { return m.t, m.loadErr }

func (m *memSessions) Save(_ context.Context, t session.Tokens) error {
	m.t = t
	m.saves++
	return nil
}

func (m *memSessions) Clear(context.Context) error {
	m.t = session.Tokens{}
	m.cleared = true
	return nil
}

func (m *memSessions) Close() error { m.closed = true; return nil }

func readerFromLines(lines ...string) *bufio.Reader {
	return bufio.NewReader(strings.NewReader(strings.Join(lines, "\n") + "\n"))
}

func stubPassword(t *testing.T, pw string) {
	t.Helper()
	old := readPassword
	t.Cleanup(func() { readPassword = old })
	readPassword = func(int) ([]byte, error) { return []byte(pw), nil }
}

func newTestApp(t *testing.T, fc *fakeClient, ms *memSessions, in *bufio.Reader) (*App, *bytes.Buffer) {
	t.Helper()
	if in == nil {
		in = readerFromLines()
	}
	var out bytes.Buffer
	a, err := newApp(context.Background(), &config.Config{RequestTimeout: time.Second}, fc, ms, in, &out)
	require.NoError(t, err)
	return a, &out
}
