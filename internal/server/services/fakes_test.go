package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/cryptox"
	"github.com/dmitrijs2005/gophauth/internal/dbx"
	"github.com/dmitrijs2005/gophauth/internal/server/auth"
	"github.com/dmitrijs2005/gophauth/internal/server/config"
	"github.com/dmitrijs2005/gophauth/internal/server/credentials"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	refreshtokensrepo "github.com/dmitrijs2005/gophauth/internal/server/repositories/refreshtokens"
	usersrepo "github.com/dmitrijs2005/gophauth/internal/server/repositories/users"
	"github.com/stretchr/testify/require"
)

var errBoom = errors.New("boom")

type fakeUsersRepo struct {
	mu     sync.Mutex
	byID   map[string]*models.User
	seq    int
	getErr error
}

func newFakeUsersRepo() *fakeUsersRepo {
	return &fakeUsersRepo{byID: map[string]*models.User{}}
}

func (f *fakeUsersRepo) Create(_ context.Context, u *models.User) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.byID {
		if existing.UserName == u.UserName {
			return nil, common.ErrorAlreadyExists
		}
	}
	f.seq++
	u.ID = fmt.Sprintf("user-%d", f.seq)
	u.CreatedAt = time.Now()
	f.byID[u.ID] = u
	return u, nil
}

func (f *fakeUsersRepo) GetUserByLogin(_ context.Context, login string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	for _, u := range f.byID {
		if u.UserName == login {
			return u, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeUsersRepo) GetUserByID(_ context.Context, id string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	if u, ok := f.byID[id]; ok {
		return u, nil
	}
	return nil, common.ErrorNotFound
}

func (f *fakeUsersRepo) delete(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.byID, id)
}

// fakeRefreshRepo mimics the conditional update of the real stores.
type fakeRefreshRepo struct {
	mu        sync.Mutex
	records   map[string]models.RefreshToken
	createErr error
	findErr   error
	markErr   error
	loseRace  bool

	raceInvalidate bool
}

func newFakeRefreshRepo() *fakeRefreshRepo {
	return &fakeRefreshRepo{records: map[string]models.RefreshToken{}}
}

func (f *fakeRefreshRepo) Create(_ context.Context, t *models.RefreshToken) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	if _, ok := f.records[t.Token]; ok {
		return errors.New("duplicate token")
	}
	t.ID = fmt.Sprintf("rt-%d", len(f.records)+1)
	f.records[t.Token] = *t
	return nil
}

func (f *fakeRefreshRepo) Find(_ context.Context, token string) (*models.RefreshToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.findErr != nil {
		return nil, f.findErr
	}
	r, ok := f.records[token]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &r, nil
}

func (f *fakeRefreshRepo) MarkUsed(_ context.Context, token string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.markErr != nil {
		return false, f.markErr
	}
	if f.loseRace {
		return false, nil
	}
	if f.raceInvalidate {
		r := f.records[token]
		r.Invalidated = true
		f.records[token] = r
		return false, nil
	}
	r, ok := f.records[token]
	if !ok || r.Used || r.Invalidated {
		return false, nil
	}
	r.Used = true
	f.records[token] = r
	return true, nil
}

func (f *fakeRefreshRepo) InvalidateByUser(_ context.Context, userID string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for k, r := range f.records {
		if r.UserID == userID && !r.Used && !r.Invalidated {
			r.Invalidated = true
			f.records[k] = r
			n++
		}
	}
	return n, nil
}

func (f *fakeRefreshRepo) get(token string) models.RefreshToken {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.records[token]
}

func (f *fakeRefreshRepo) update(token string, fn func(*models.RefreshToken)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r := f.records[token]
	fn(&r)
	f.records[token] = r
}

type fakeRepoManager struct {
	u *fakeUsersRepo
	r *fakeRefreshRepo
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error        { return nil }
func (m *fakeRepoManager) Users(dbx.DBTX) usersrepo.Repository                 { return m.u }
func (m *fakeRepoManager) RefreshTokens(dbx.DBTX) refreshtokensrepo.Repository { return m.r }

// passTx runs the callback without a real transaction.
type passTx struct{}

func (passTx) Conn() dbx.DBTX { return nil }
func (passTx) WithinTx(ctx context.Context, fn func(context.Context, dbx.DBTX) error) error {
	return fn(ctx, nil)
}

type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func (c *testClock) AddMonths(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.AddDate(0, n, 0)
}

var cheapHash = cryptox.Params{Memory: 8 * 1024, Time: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32}

type testEnv struct {
	svc    *UserService
	users  *fakeUsersRepo
	tokens *fakeRefreshRepo
	signer *auth.Signer
	clock  *testClock
}

func newTestEnv(t *testing.T, tx dbx.Transactor, opts ...Option) *testEnv {
	t.Helper()

	signer, err := auth.NewSigner([]byte("test-secret"))
	require.NoError(t, err)

	users := newFakeUsersRepo()
	tokens := newFakeRefreshRepo()
	rm := &fakeRepoManager{u: users, r: tokens}
	creds := credentials.NewStore(users, credentials.DefaultPolicy, credentials.WithHashParams(cheapHash))
	clock := &testClock{t: time.Now()}

	cfg := &config.Config{
		AccessTokenValidityDuration: 15 * time.Minute,
		RefreshTokenValidityMonths:  6,
	}
	if tx == nil {
		tx = passTx{}
	}
	opts = append([]Option{WithClock(clock.Now)}, opts...)

	return &testEnv{
		svc:    NewUserService(tx, rm, signer, creds, cfg, opts...),
		users:  users,
		tokens: tokens,
		signer: signer,
		clock:  clock,
	}
}

// register creates a user and returns its first pair.
func (e *testEnv) register(t *testing.T, name string) *TokenResult {
	t.Helper()
	res, err := e.svc.Register(context.Background(), name, "secret1", "Main st 1")
	require.NoError(t, err)
	require.True(t, res.Success(), "register failed: %v", res.Errors)
	return res
}
