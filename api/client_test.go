package api_test

import (
	"context"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jrsteele09/viteviteapp/api"
	"github.com/jrsteele09/viteviteapp/apimodel"
	"github.com/jrsteele09/viteviteapp/credentials"
	"github.com/jrsteele09/viteviteapp/credentials/tierfake"
	"github.com/jrsteele09/viteviteapp/devserver"
	"github.com/jrsteele09/viteviteapp/gateway"
	"github.com/jrsteele09/viteviteapp/internal/config"
	apperrors "github.com/jrsteele09/viteviteapp/internal/errors"
	fakequeuerepo "github.com/jrsteele09/viteviteapp/queue/repofake"
	"github.com/jrsteele09/viteviteapp/session"
	refreshrepofake "github.com/jrsteele09/viteviteapp/token/refresh/repofake"
	fakeuserrepo "github.com/jrsteele09/viteviteapp/users/repofake"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

const (
	adminEmail    = "admin@vitevite.test"
	adminPassword = "Admin1234"
)

type backendConfig struct {
	config.Config
}

func (backendConfig) GetEnv() string                       { return "TEST" }
func (backendConfig) GetSigningSecret() string             { return "api-test-secret" }
func (backendConfig) GetAccessTokenExpiry() time.Duration  { return time.Minute }
func (backendConfig) GetRefreshTokenExpiry() time.Duration { return time.Hour }
func (backendConfig) GetAdminEmail() string                { return adminEmail }
func (backendConfig) GetAdminPassword() string             { return adminPassword }
func (backendConfig) GetSeedServices() bool                { return false }

// device is one signed-in client of the backend
type device struct {
	store    *credentials.Store
	client   *api.Client
	sessions *session.Manager
	logouts  *atomic.Int32
}

type fixture struct {
	baseURL string
	srv     *httptest.Server
}

func setup(t *testing.T) *fixture {
	t.Helper()
	s, err := devserver.New(backendConfig{Config: config.New()}, devserver.Repos{
		Users:         fakeuserrepo.NewFakeUserRepo(),
		RefreshTokens: refreshrepofake.NewFakeRefreshTokenRepo(),
		Queue:         fakequeuerepo.NewFakeQueueRepo(),
	}, devserver.WithLogger(zerolog.Nop()))
	require.NoError(t, err)
	srv := httptest.NewServer(s)
	t.Cleanup(srv.Close)
	return &fixture{baseURL: srv.URL + devserver.RouteAPIPrefix, srv: srv}
}

func (f *fixture) device(t *testing.T) *device {
	t.Helper()
	store := credentials.NewStore(
		tierfake.NewMemoryTier("durable", true),
		tierfake.NewMemoryTier("session", false),
		credentials.WithLogger(zerolog.Nop()),
	)
	logouts := &atomic.Int32{}
	authClient := api.NewAuthClient(f.baseURL, f.srv.Client())
	gw := gateway.New(store, authClient,
		gateway.WithTransport(f.srv.Client().Transport),
		gateway.WithLogger(zerolog.Nop()),
		gateway.WithLogoutFunc(func(context.Context, error) { logouts.Add(1) }),
	)
	client := api.New(f.baseURL, gw, api.WithAdminGate(store))
	return &device{
		store:    store,
		client:   client,
		sessions: session.NewManager(authClient, store, session.WithRevoker(client), session.WithLogger(zerolog.Nop())),
		logouts:  logouts,
	}
}

func (f *fixture) admin(t *testing.T) *device {
	t.Helper()
	d := f.device(t)
	_, err := d.sessions.Login(context.Background(), adminEmail, adminPassword, false)
	require.NoError(t, err)
	return d
}

func (f *fixture) citizen(t *testing.T, email string) *device {
	t.Helper()
	d := f.device(t)
	_, err := d.sessions.Register(context.Background(), apimodel.RegisterRequest{Email: email, Password: "Citizen123", FullName: "Ana Citizen"}, true)
	require.NoError(t, err)
	return d
}

func TestQueueFlow(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	admin := f.admin(t)
	ana := f.citizen(t, "ana@vitevite.test")

	service, err := admin.client.CreateService(ctx, apimodel.Service{Name: "Passports", Open: true, AvgMinutes: 6})
	require.NoError(t, err)

	services, err := ana.client.ListServices(ctx)
	require.NoError(t, err)
	require.Len(t, services, 1)

	ticket, err := ana.client.TakeTicket(ctx, service.ID)
	require.NoError(t, err)
	require.Equal(t, 1, ticket.Position)
	require.Equal(t, 6, ticket.EstimatedWaitMinutes)
	require.Equal(t, "Passports", ticket.ServiceName)

	got, err := ana.client.GetService(ctx, service.ID)
	require.NoError(t, err)
	require.Equal(t, 1, got.QueueLength)

	called, err := admin.client.CallNext(ctx, service.ID)
	require.NoError(t, err)
	require.Equal(t, ticket.ID, called.ID)

	mine, err := ana.client.MyTickets(ctx)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	require.Equal(t, apimodel.TicketCalled, mine[0].Status)

	closed, err := admin.client.SetServiceOpen(ctx, service.ID, false)
	require.NoError(t, err)
	require.False(t, closed.Open)
	require.NoError(t, admin.client.DeleteService(ctx, service.ID))
}

func TestBackendErrorsMapToSentinels(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	admin := f.admin(t)
	ana := f.citizen(t, "ana@vitevite.test")

	_, err := ana.client.GetTicket(ctx, "missing")
	require.ErrorIs(t, err, apperrors.ErrNotFound)
	var apiErr *api.Error
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, "ticket not found", apiErr.Message)

	service, err := admin.client.CreateService(ctx, apimodel.Service{Name: "Closed desk", Open: false})
	require.NoError(t, err)
	_, err = ana.client.TakeTicket(ctx, service.ID)
	require.ErrorIs(t, err, apperrors.ErrConflict)

	// a 4xx other than 401 leaves the session alone
	require.True(t, ana.store.IsAuthenticated(ctx))
	require.Zero(t, ana.logouts.Load())
}

func TestAdminGate(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	ana := f.citizen(t, "ana@vitevite.test")

	_, err := ana.client.ListUsers(ctx)
	require.ErrorIs(t, err, apperrors.ErrNotAdmin)

	// without the gate the backend still refuses
	ungated := api.New(f.baseURL, gateway.New(ana.store, api.NewAuthClient(f.baseURL, nil), gateway.WithLogger(zerolog.Nop())))
	_, err = ungated.ListUsers(ctx)
	require.ErrorIs(t, err, apperrors.ErrForbidden)

	admin := f.admin(t)
	list, err := admin.client.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
}

func TestExpiredAccessTokenIsRefreshed(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	ana := f.citizen(t, "ana@vitevite.test")

	before, ok := ana.store.Tokens(ctx)
	require.True(t, ok)
	// simulate an access token the backend no longer accepts
	require.NoError(t, ana.store.UpdateTokens(ctx, credentials.TokenPair{AccessToken: "stale"}))

	me, err := ana.client.Me(ctx)
	require.NoError(t, err)
	require.Equal(t, "ana@vitevite.test", me.Email)

	after, ok := ana.store.Tokens(ctx)
	require.True(t, ok)
	require.NotEqual(t, "stale", after.AccessToken)
	require.NotEqual(t, before.RefreshToken, after.RefreshToken)
	require.True(t, ana.store.Persistent(ctx))
	require.Zero(t, ana.logouts.Load())
}

func TestRejectedRefreshForcesLogout(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	ana := f.citizen(t, "ana@vitevite.test")

	identity, _ := ana.store.Identity(ctx)
	require.NoError(t, ana.store.Save(ctx, credentials.TokenPair{AccessToken: "stale", RefreshToken: "revoked"}, identity, true))

	_, err := ana.client.MyTickets(ctx)
	require.ErrorIs(t, err, apperrors.ErrForcedLogout)
	require.Equal(t, int32(1), ana.logouts.Load())
	require.False(t, ana.store.IsAuthenticated(ctx))
	_, ok := ana.store.Identity(ctx)
	require.False(t, ok)
}

func TestLogoutRevokesOnBackend(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	ana := f.citizen(t, "ana@vitevite.test")

	tokens, ok := ana.store.Tokens(ctx)
	require.True(t, ok)
	require.NoError(t, ana.sessions.Logout(ctx))
	require.False(t, ana.store.IsAuthenticated(ctx))

	_, err := api.NewAuthClient(f.baseURL, nil).Refresh(ctx, tokens.RefreshToken)
	require.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
}

func TestWatchTicket(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	f := setup(t)
	admin := f.admin(t)
	ana := f.citizen(t, "ana@vitevite.test")

	service, err := admin.client.CreateService(ctx, apimodel.Service{Name: "Pharmacy", Open: true, AvgMinutes: 3})
	require.NoError(t, err)
	ticket, err := ana.client.TakeTicket(ctx, service.ID)
	require.NoError(t, err)

	updates := ana.client.WatchTicket(ctx, ticket.ID, 10*time.Millisecond)
	first := <-updates
	require.NoError(t, first.Err)
	require.Equal(t, apimodel.TicketWaiting, first.Ticket.Status)

	_, err = ana.client.CancelTicket(ctx, ticket.ID)
	require.NoError(t, err)

	var last api.TicketUpdate
	for u := range updates {
		require.NoError(t, u.Err)
		last = u
	}
	require.NotNil(t, last.Ticket)
	require.Equal(t, apimodel.TicketCancelled, last.Ticket.Status)
}

func TestWatchTicketReportsError(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	f := setup(t)
	ana := f.citizen(t, "ana@vitevite.test")

	var updates []api.TicketUpdate
	for u := range ana.client.WatchTicket(ctx, "missing", 10*time.Millisecond) {
		updates = append(updates, u)
	}
	require.Len(t, updates, 1)
	require.ErrorIs(t, updates[0].Err, apperrors.ErrNotFound)
}

func TestWatchTicketNonPositiveInterval(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	f := setup(t)
	admin := f.admin(t)
	ana := f.citizen(t, "ana@vitevite.test")

	service, err := admin.client.CreateService(ctx, apimodel.Service{Name: "Pharmacy", Open: true, AvgMinutes: 3})
	require.NoError(t, err)
	ticket, err := ana.client.TakeTicket(ctx, service.ID)
	require.NoError(t, err)
	_, err = ana.client.CancelTicket(ctx, ticket.ID)
	require.NoError(t, err)

	for _, interval := range []time.Duration{0, -time.Second} {
		var updates []api.TicketUpdate
		for u := range ana.client.WatchTicket(ctx, ticket.ID, interval) {
			updates = append(updates, u)
		}
		require.Len(t, updates, 1)
		require.NoError(t, updates[0].Err)
		require.Equal(t, apimodel.TicketCancelled, updates[0].Ticket.Status)
	}
}
