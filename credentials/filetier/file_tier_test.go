package filetier_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/jrsteele09/viteviteapp/credentials"
	"github.com/jrsteele09/viteviteapp/credentials/filetier"
	"github.com/jrsteele09/viteviteapp/credentials/tierfake"
	apperrors "github.com/jrsteele09/viteviteapp/internal/errors"
	"github.com/stretchr/testify/require"
)

func TestFileTierReplaceAndLoad(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "credentials.json")
	tier := filetier.New(path, "default")

	values, err := tier.Load(ctx)
	require.NoError(t, err)
	require.Empty(t, values)

	require.NoError(t, tier.Replace(ctx, map[string]string{"access_token": "A1", "refresh_token": "R1"}))
	require.NoError(t, tier.Replace(ctx, map[string]string{"access_token": "A2"}))

	values, err = tier.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, map[string]string{"access_token": "A2"}, values)

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), info.Mode().Perm())
	_, err = os.Stat(path + ".tmp")
	require.True(t, os.IsNotExist(err))
}

func TestFileTierProfilesAreIsolated(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "credentials.json")
	alice := filetier.New(path, "alice")
	bob := filetier.New(path, "bob")

	require.NoError(t, alice.Replace(ctx, map[string]string{"access_token": "alice"}))
	require.NoError(t, bob.Replace(ctx, map[string]string{"access_token": "bob"}))

	require.NoError(t, alice.Clear(ctx))
	require.NoError(t, alice.Clear(ctx))

	values, err := bob.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, "bob", values["access_token"])

	require.NoError(t, bob.Clear(ctx))
	_, err = os.Stat(path)
	require.True(t, os.IsNotExist(err))
}

func TestFileTierCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, err := filetier.New(path, "default").Load(context.Background())
	require.ErrorIs(t, err, apperrors.ErrStorageUnavailable)
}

func TestFileTierBacksRememberedStore(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "credentials.json")

	store := credentials.NewStore(filetier.New(path, "default"), tierfake.NewMemoryTier("memory", false))
	require.NoError(t, store.Save(ctx,
		credentials.TokenPair{AccessToken: "A1", RefreshToken: "R1"},
		credentials.Identity{Email: "a@b.com", Role: credentials.RoleUser},
		true))

	reopened := credentials.NewStore(filetier.New(path, "default"), tierfake.NewMemoryTier("memory", false))
	identity, ok := reopened.Identity(ctx)
	require.True(t, ok)
	require.Equal(t, "a@b.com", identity.Email)
	require.Equal(t, "file", reopened.ActiveTier(ctx).Name())
}

func TestSessionFileTierKeepsUnrememberedLogin(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	durablePath := filepath.Join(dir, "credentials.json")
	sessionPath := filepath.Join(dir, "session.json")

	session := filetier.NewSession(sessionPath, "default")
	require.False(t, session.Durable())
	require.Equal(t, "session-file", session.Name())

	store := credentials.NewStore(filetier.New(durablePath, "default"), session)
	require.NoError(t, store.Save(ctx,
		credentials.TokenPair{AccessToken: "A1"},
		credentials.Identity{Email: "a@b.com", Role: credentials.RoleUser},
		false))
	_, err := os.Stat(durablePath)
	require.True(t, os.IsNotExist(err))

	// a later command in the same terminal reads the session file
	reopened := credentials.NewStore(filetier.New(durablePath, "default"), filetier.NewSession(sessionPath, "default"))
	token, ok := reopened.AccessToken(ctx)
	require.True(t, ok)
	require.Equal(t, "A1", token)
	require.Equal(t, "session-file", reopened.ActiveTier(ctx).Name())

	// a terminal with another session file starts signed out
	other := credentials.NewStore(filetier.New(durablePath, "default"), filetier.NewSession(filepath.Join(dir, "other.json"), "default"))
	require.False(t, other.IsAuthenticated(ctx))
}
