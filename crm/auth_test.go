// ABOUTME: Tests for login, password changes, bootstrap and data reset
// ABOUTME: Covers legacy password migration and stale sessions
package crm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/medcrm/models"
)

func TestBootstrapCreatesCanonicalAdmin(t *testing.T) {
	env := setupTestService(t)

	assert.Equal(t, models.AdminID, env.admin.ID)
	assert.Equal(t, "Admin Manager", env.admin.Name)
	assert.True(t, env.admin.IsAdmin())
	assert.Empty(t, env.admin.PasswordHash, "login never returns the hash")

	ds := env.dataset(t)
	require.Len(t, ds.Users, 1)
	assert.NotEmpty(t, ds.Users[0].PasswordHash)
	assert.NotEqual(t, DefaultAdminPassword, ds.Users[0].PasswordHash)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	env := setupTestService(t)

	_, err := env.svc.Login(env.ctx, models.AdminID, "nope")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = env.svc.Login(env.ctx, "ghost", DefaultAdminPassword)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestBootstrapMigratesLegacyPasswords(t *testing.T) {
	env := setupTestService(t)

	err := env.repo.Update(env.ctx, func(ds *models.Dataset) error {
		ds.Users = append(ds.Users, models.User{ID: "sales-1", Name: "Ana", Role: models.RoleSalesperson, LegacyPassword: "viejo123"})
		return nil
	})
	require.NoError(t, err)

	require.NoError(t, env.svc.Bootstrap(env.ctx))

	u, _ := env.dataset(t).FindUser("sales-1")
	require.NotNil(t, u)
	assert.Empty(t, u.LegacyPassword)
	assert.NotEmpty(t, u.PasswordHash)

	_, err = env.svc.Login(env.ctx, "sales-1", "viejo123")
	assert.NoError(t, err)
}

func TestBootstrapRestoresAdminPassword(t *testing.T) {
	env := setupTestService(t)

	_, err := env.svc.ChangeOwnPassword(env.ctx, env.admin, DefaultAdminPassword, "cambiada")
	require.NoError(t, err)
	_, err = env.svc.Login(env.ctx, models.AdminID, DefaultAdminPassword)
	require.ErrorIs(t, err, ErrInvalidCredentials)

	require.NoError(t, env.svc.Bootstrap(env.ctx))

	_, err = env.svc.Login(env.ctx, models.AdminID, DefaultAdminPassword)
	assert.NoError(t, err)
}

func TestChangeOwnPassword(t *testing.T) {
	env := setupTestService(t)
	sp := env.addSalesperson(t, "Ana Ruiz")

	_, err := env.svc.ChangeOwnPassword(env.ctx, sp, "equivocada", "nueva123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = env.svc.ChangeOwnPassword(env.ctx, sp, testPassword, "corta")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = env.svc.ChangeOwnPassword(env.ctx, sp, testPassword, "nueva123")
	require.NoError(t, err)

	_, err = env.svc.Login(env.ctx, sp.ID, "nueva123")
	assert.NoError(t, err)
}

func TestAdminResetForcesPasswordChange(t *testing.T) {
	env := setupTestService(t)
	sp := env.addSalesperson(t, "Ana Ruiz")

	profile := sp.Profile()
	profile.Title = "Gerente"
	_, err := env.svc.UpdateSalesperson(env.ctx, env.admin, profile, "temporal2")
	require.NoError(t, err)

	user, err := env.svc.Login(env.ctx, sp.ID, "temporal2")
	require.NoError(t, err)
	assert.True(t, user.MustChangePassword)
	assert.Equal(t, "Gerente", user.Title)

	_, err = env.svc.UpdateSalesperson(env.ctx, sp, profile, "")
	assert.Error(t, err)
}

func TestSalespersonCannotManageSalespeople(t *testing.T) {
	env := setupTestService(t)
	sp := env.addSalesperson(t, "Ana Ruiz")

	_, err := env.svc.AddSalesperson(env.ctx, sp, models.Salesperson{Name: "Luis"}, "temporal1")
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = env.svc.AddSalesperson(env.ctx, env.admin, models.Salesperson{Name: "Luis"}, "")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestResolveSession(t *testing.T) {
	env := setupTestService(t)
	sp := env.addSalesperson(t, "Ana Ruiz")

	got, err := env.svc.ResolveSession(env.ctx, sp)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, sp.ID, got.ID)

	require.NoError(t, env.svc.DeleteSalesperson(env.ctx, env.admin, sp.ID))

	got, err = env.svc.ResolveSession(env.ctx, sp)
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = env.svc.ResolveSession(env.ctx, nil)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestResetData(t *testing.T) {
	env := setupTestService(t)
	sp := env.addSalesperson(t, "Ana Ruiz")
	env.addClient(t, "Hospital X")

	assert.ErrorIs(t, env.svc.ResetData(env.ctx, sp), ErrForbidden)

	require.NoError(t, env.svc.ResetData(env.ctx, env.admin))

	ds := env.dataset(t)
	assert.Empty(t, ds.Clients)
	assert.Empty(t, ds.Salespeople)
	require.Len(t, ds.Users, 1)
	assert.Equal(t, models.AdminID, ds.Users[0].ID)

	_, err := env.svc.Login(env.ctx, models.AdminID, DefaultAdminPassword)
	assert.NoError(t, err)
}
