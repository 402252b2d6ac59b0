package token_test

import (
	"testing"
	"time"

	apperrors "github.com/jrsteele09/viteviteapp/internal/errors"
	"github.com/jrsteele09/viteviteapp/token"
	"github.com/jrsteele09/viteviteapp/token/jwt"
	"github.com/jrsteele09/viteviteapp/token/keys"
	"github.com/jrsteele09/viteviteapp/token/refresh"
	refreshrepofake "github.com/jrsteele09/viteviteapp/token/refresh/repofake"
	"github.com/jrsteele09/viteviteapp/users"
	fakeuserrepo "github.com/jrsteele09/viteviteapp/users/repofake"
	"github.com/stretchr/testify/require"
)

const issuer = "test-issuer"

type fixture struct {
	manager *token.Manager
	users   users.UserRepo
	user    *users.User
}

func setup(t *testing.T, refreshExpiry time.Duration) *fixture {
	t.Helper()
	userRepo := fakeuserrepo.NewFakeUserRepo()
	user := &users.User{Email: "citizen@vitevite.local", Role: users.RoleAdmin}
	require.NoError(t, userRepo.Upsert(user))

	refreshManager := refresh.NewManager(refreshrepofake.NewFakeRefreshTokenRepo(), 32, refreshExpiry)
	return &fixture{
		manager: token.New(keys.NewHMACSigner("secret"), issuer, time.Minute, refreshManager, userRepo),
		users:   userRepo,
		user:    user,
	}
}

func TestIssueAndIntrospect(t *testing.T) {
	f := setup(t, time.Hour)

	pair, err := f.manager.Issue(f.user)
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.Len(t, pair.RefreshToken, 64)
	require.Equal(t, 60, pair.ExpiresIn)

	ti, err := f.manager.Introspect(pair.AccessToken)
	require.NoError(t, err)
	require.True(t, ti.Active)
	require.Equal(t, f.user.ID, ti.Sub)
	require.Equal(t, "admin", ti.Role)
	require.Equal(t, f.user.Email, ti.Email)
	require.Equal(t, issuer, ti.Iss)
}

func TestIntrospectRejectsForeignSignature(t *testing.T) {
	f := setup(t, time.Hour)
	other := token.New(keys.NewHMACSigner("other"), issuer, time.Minute,
		refresh.NewManager(refreshrepofake.NewFakeRefreshTokenRepo(), 32, time.Hour), f.users)

	pair, err := other.Issue(f.user)
	require.NoError(t, err)

	_, err = f.manager.Introspect(pair.AccessToken)
	require.ErrorIs(t, err, apperrors.ErrInvalidToken)

	_, err = f.manager.Introspect("")
	require.ErrorIs(t, err, apperrors.ErrInvalidToken)
}

func TestIntrospectExpired(t *testing.T) {
	f := setup(t, time.Hour)

	jwt.NowTimeFunc = func() time.Time { return time.Now().Add(-2 * time.Minute) }
	pair, err := f.manager.Issue(f.user)
	jwt.NowTimeFunc = time.Now
	require.NoError(t, err)

	_, err = f.manager.Introspect(pair.AccessToken)
	require.ErrorIs(t, err, apperrors.ErrTokenExpired)
}

func TestRefreshRotates(t *testing.T) {
	f := setup(t, time.Hour)

	first, err := f.manager.Issue(f.user)
	require.NoError(t, err)

	second, user, err := f.manager.Refresh(first.RefreshToken)
	require.NoError(t, err)
	require.Equal(t, f.user.ID, user.ID)
	require.NotEqual(t, first.RefreshToken, second.RefreshToken)

	// a rotated token cannot be replayed
	_, _, err = f.manager.Refresh(first.RefreshToken)
	require.ErrorIs(t, err, apperrors.ErrInvalidRefreshToken)

	_, _, err = f.manager.Refresh(second.RefreshToken)
	require.NoError(t, err)
}

func TestIssueReplacesPreviousRefreshToken(t *testing.T) {
	f := setup(t, time.Hour)

	first, err := f.manager.Issue(f.user)
	require.NoError(t, err)
	_, err = f.manager.Issue(f.user)
	require.NoError(t, err)

	_, _, err = f.manager.Refresh(first.RefreshToken)
	require.ErrorIs(t, err, apperrors.ErrInvalidRefreshToken)
}

func TestRefreshExpired(t *testing.T) {
	f := setup(t, time.Minute)

	refresh.NowTimeFunc = func() time.Time { return time.Now().Add(-time.Hour) }
	pair, err := f.manager.Issue(f.user)
	refresh.NowTimeFunc = time.Now
	require.NoError(t, err)

	_, _, err = f.manager.Refresh(pair.RefreshToken)
	require.ErrorIs(t, err, apperrors.ErrRefreshTokenExpired)
}

func TestRefreshBlockedUser(t *testing.T) {
	f := setup(t, time.Hour)

	pair, err := f.manager.Issue(f.user)
	require.NoError(t, err)
	require.NoError(t, f.users.SetBlocked(f.user.Email, true))

	_, _, err = f.manager.Refresh(pair.RefreshToken)
	require.ErrorIs(t, err, apperrors.ErrInvalidRefreshToken)
}

func TestRevoke(t *testing.T) {
	f := setup(t, time.Hour)

	pair, err := f.manager.Issue(f.user)
	require.NoError(t, err)
	require.NoError(t, f.manager.Revoke(pair.AccessToken))

	_, err = f.manager.Introspect(pair.AccessToken)
	require.ErrorIs(t, err, apperrors.ErrInvalidToken)

	_, _, err = f.manager.Refresh(pair.RefreshToken)
	require.ErrorIs(t, err, apperrors.ErrInvalidRefreshToken)
}

func TestRevokedCacheCleanup(t *testing.T) {
	now := time.Now()
	cache := token.NewInMemoryRevokedTokenCache(func() time.Time { return now })
	require.NoError(t, cache.Add("old", now.Add(-time.Second)))
	require.NoError(t, cache.Add("live", now.Add(time.Minute)))

	cache.Cleanup()
	require.False(t, cache.IsRevoked("old"))
	require.True(t, cache.IsRevoked("live"))
}
