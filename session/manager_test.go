package session_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/jrsteele09/viteviteapp/api"
	"github.com/jrsteele09/viteviteapp/apimodel"
	"github.com/jrsteele09/viteviteapp/credentials"
	"github.com/jrsteele09/viteviteapp/credentials/tierfake"
	"github.com/jrsteele09/viteviteapp/gateway"
	apperrors "github.com/jrsteele09/viteviteapp/internal/errors"
	"github.com/jrsteele09/viteviteapp/session"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

type fakeAuth struct {
	resp *apimodel.AuthResponse
	err  error
	last apimodel.RegisterRequest
}

func (f *fakeAuth) Login(_ context.Context, _ apimodel.LoginRequest) (*apimodel.AuthResponse, error) {
	return f.resp, f.err
}

func (f *fakeAuth) Register(_ context.Context, req apimodel.RegisterRequest) (*apimodel.AuthResponse, error) {
	f.last = req
	return f.resp, f.err
}

type fakeRevoker struct {
	calls int
	err   error
}

func (f *fakeRevoker) Logout(context.Context) error {
	f.calls++
	return f.err
}

type fixture struct {
	durable   *tierfake.MemoryTier
	ephemeral *tierfake.MemoryTier
	store     *credentials.Store
	auth      *fakeAuth
	revoker   *fakeRevoker
	manager   *session.Manager
}

func setup(t *testing.T, role string) *fixture {
	t.Helper()
	f := &fixture{
		durable:   tierfake.NewMemoryTier("durable", true),
		ephemeral: tierfake.NewMemoryTier("session", false),
		auth: &fakeAuth{resp: &apimodel.AuthResponse{
			Tokens: apimodel.Tokens{AccessToken: "A1", RefreshToken: "R1"},
			User:   apimodel.User{Email: "ana@vitevite.test", Role: role, FullName: "Ana"},
		}},
		revoker: &fakeRevoker{},
	}
	f.store = credentials.NewStore(f.durable, f.ephemeral, credentials.WithLogger(zerolog.Nop()))
	f.manager = session.NewManager(f.auth, f.store, session.WithRevoker(f.revoker), session.WithLogger(zerolog.Nop()))
	return f
}

func TestLoginRemembered(t *testing.T) {
	ctx := context.Background()
	f := setup(t, "admin")

	identity, err := f.manager.Login(ctx, "ana@vitevite.test", "secret", true)
	require.NoError(t, err)
	require.Equal(t, credentials.RoleAdmin, identity.Role)
	require.Equal(t, 0, f.ephemeral.Len())
	require.Same(t, f.durable, f.store.ActiveTier(ctx))
	require.True(t, f.store.IsAdmin(ctx))

	current, ok := f.manager.Current(ctx)
	require.True(t, ok)
	require.Equal(t, identity, current)
}

func TestLoginForSession(t *testing.T) {
	ctx := context.Background()
	f := setup(t, "user")

	_, err := f.manager.Login(ctx, "ana@vitevite.test", "secret", false)
	require.NoError(t, err)
	require.Same(t, f.ephemeral, f.store.ActiveTier(ctx))
	require.Equal(t, 0, f.durable.Len())
	require.False(t, f.store.IsAdmin(ctx))
}

func TestLoginFailureStoresNothing(t *testing.T) {
	ctx := context.Background()
	f := setup(t, "user")
	f.auth.err = apperrors.ErrInvalidCredentials

	_, err := f.manager.Login(ctx, "ana@vitevite.test", "wrong", true)
	require.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
	require.False(t, f.store.IsAuthenticated(ctx))
}

func TestLoginRejectsUnknownRole(t *testing.T) {
	ctx := context.Background()
	f := setup(t, "root")

	_, err := f.manager.Login(ctx, "ana@vitevite.test", "secret", true)
	require.ErrorIs(t, err, apperrors.ErrUnknownRole)
	require.False(t, f.store.IsAuthenticated(ctx))
}

func TestRegister(t *testing.T) {
	ctx := context.Background()
	f := setup(t, "user")

	identity, err := f.manager.Register(ctx, apimodel.RegisterRequest{Email: "ana@vitevite.test", Password: "Citizen123"}, false)
	require.NoError(t, err)
	require.Equal(t, "Ana", identity.FullName)
	require.Equal(t, "ana@vitevite.test", f.auth.last.Email)
	require.True(t, f.store.IsAuthenticated(ctx))
}

func TestLogout(t *testing.T) {
	ctx := context.Background()
	f := setup(t, "user")
	_, err := f.manager.Login(ctx, "ana@vitevite.test", "secret", true)
	require.NoError(t, err)

	f.revoker.err = errors.New("backend down")
	require.NoError(t, f.manager.Logout(ctx))
	require.Equal(t, 1, f.revoker.calls)
	require.False(t, f.store.IsAuthenticated(ctx))

	// nothing to revoke the second time
	require.NoError(t, f.manager.Logout(ctx))
	require.Equal(t, 1, f.revoker.calls)
	_, ok := f.manager.Current(ctx)
	require.False(t, ok)
}

type failingRefresher struct{}

func (failingRefresher) Refresh(context.Context, string) (credentials.TokenPair, error) {
	return credentials.TokenPair{}, errors.New("refresh token revoked")
}

func TestLogoutWithExpiredSessionIsNotForced(t *testing.T) {
	ctx := context.Background()
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	t.Cleanup(backend.Close)

	f := setup(t, "user")
	_, err := f.manager.Login(ctx, "ana@vitevite.test", "secret", true)
	require.NoError(t, err)

	var hookRuns atomic.Int32
	gw := gateway.New(f.store, failingRefresher{},
		gateway.WithLogger(zerolog.Nop()),
		gateway.WithLogoutFunc(func(context.Context, error) { hookRuns.Add(1) }),
	)
	manager := session.NewManager(f.auth, f.store,
		session.WithRevoker(api.New(backend.URL, gw)),
		session.WithLogger(zerolog.Nop()),
	)

	require.NoError(t, manager.Logout(ctx))
	require.Equal(t, int32(0), hookRuns.Load())
	require.False(t, f.store.IsAuthenticated(ctx))
}
