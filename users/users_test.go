package users_test

import (
	"testing"

	"github.com/jrsteele09/viteviteapp/users"
	fakeuserrepo "github.com/jrsteele09/viteviteapp/users/repofake"
	"github.com/stretchr/testify/require"
)

func TestValidatePasswordStrength(t *testing.T) {
	require.NoError(t, users.ValidatePasswordStrength("Password1"))
	require.Error(t, users.ValidatePasswordStrength("Pass1"))
	require.Error(t, users.ValidatePasswordStrength("password1"))
	require.Error(t, users.ValidatePasswordStrength("PASSWORD1"))
	require.Error(t, users.ValidatePasswordStrength("Passwordx"))
}

func TestPasswordHash(t *testing.T) {
	hash, err := users.HashPassword("Password1")
	require.NoError(t, err)
	require.True(t, users.CheckPasswordHash("Password1", hash))
	require.False(t, users.CheckPasswordHash("Password2", hash))
}

func TestRoles(t *testing.T) {
	require.False(t, (&users.User{Role: users.RoleUser}).IsAdmin())
	require.True(t, (&users.User{Role: users.RoleAdmin}).IsAdmin())
	require.True(t, (&users.User{Role: users.RoleSuper}).IsSuper())
	require.False(t, users.RoleType("root").Valid())
}

func TestFakeUserRepo(t *testing.T) {
	repo := fakeuserrepo.NewFakeUserRepo()

	u := &users.User{Email: "a@b.com", Role: users.RoleUser}
	require.NoError(t, repo.Upsert(u))
	require.NotEmpty(t, u.ID)
	require.NoError(t, repo.Upsert(&users.User{Email: "c@d.com", Role: users.RoleAdmin}))
	require.NoError(t, repo.Upsert(&users.User{Email: "e@f.com", Role: users.RoleUser}))

	got, err := repo.GetByEmail("a@b.com")
	require.NoError(t, err)
	require.Equal(t, u.ID, got.ID)

	page, err := repo.List(1, 5)
	require.NoError(t, err)
	require.Len(t, page, 2)

	page, err = repo.List(5, 5)
	require.NoError(t, err)
	require.Empty(t, page)

	require.NoError(t, repo.SetBlocked("a@b.com", true))
	got, _ = repo.GetByID(u.ID)
	require.True(t, got.Blocked)

	require.NoError(t, repo.Delete("a@b.com"))
	_, err = repo.GetByEmail("a@b.com")
	require.Error(t, err)
}
