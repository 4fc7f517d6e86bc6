package bootstrap

import (
	"context"
	"testing"

	"github.com/andriinero/inkspace-backend/internal/config"
	"github.com/andriinero/inkspace-backend/internal/models"
	"github.com/andriinero/inkspace-backend/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func devConfig() *config.Config {
	return &config.Config{
		Env:               "development",
		BcryptCost:        4,
		DevBootstrapAdmin: true,
		DevAdminUsername:  "inkspace_admin",
		DevAdminEmail:     "Admin@Inkspace.local",
		DevAdminPassword:  "admin-password",
	}
}

func TestEnsureDevAdmin_CreatesAdmin(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()

	require.NoError(t, EnsureDevAdmin(ctx, devConfig(), db))
	require.NoError(t, EnsureDevAdmin(ctx, devConfig(), db))

	var admins []models.User
	require.NoError(t, db.Where("username = ?", "inkspace_admin").Find(&admins).Error)
	require.Len(t, admins, 1)
	assert.True(t, admins[0].IsAdmin())
	assert.Equal(t, "admin@inkspace.local", admins[0].Email)
}

func TestEnsureDevAdmin_PromotesExistingUser(t *testing.T) {
	db := testutil.NewTestDB(t)
	u := testutil.CreateUser(t, db, "inkspace_admin")

	require.NoError(t, EnsureDevAdmin(context.Background(), devConfig(), db))

	var got models.User
	require.NoError(t, db.First(&got, u.ID).Error)
	assert.Equal(t, models.RoleAdmin, got.Role)
}

func TestEnsureDevAdmin_Skipped(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()

	prod := devConfig()
	prod.Env = "production"
	require.NoError(t, EnsureDevAdmin(ctx, prod, db))

	off := devConfig()
	off.DevBootstrapAdmin = false
	require.NoError(t, EnsureDevAdmin(ctx, off, db))

	var n int64
	require.NoError(t, db.Model(&models.User{}).Count(&n).Error)
	assert.Zero(t, n)

	noPassword := devConfig()
	noPassword.DevAdminPassword = ""
	assert.Error(t, EnsureDevAdmin(ctx, noPassword, db))
}
