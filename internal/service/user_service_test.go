package service

import (
	"context"
	"strings"
	"testing"

	"github.com/andriinero/inkspace-backend/internal/cache"
	"github.com/andriinero/inkspace-backend/internal/models"
	"github.com/andriinero/inkspace-backend/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserService_IsAdmin(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()
	alice := testutil.CreateUser(t, f.db, "alice")
	root := f.admin(t, "root")

	ok, err := f.users.IsAdmin(ctx, root.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = f.users.IsAdmin(ctx, alice.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = f.users.IsAdmin(ctx, 9999)
	require.NoError(t, err)
	assert.False(t, ok)

	// Demotion is visible immediately.
	require.NoError(t, f.db.Model(root).Update("role", models.RoleUser).Error)
	ok, err = f.users.IsAdmin(ctx, root.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestUserService_ProfileAndBio(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()
	alice := testutil.CreateUser(t, f.db, "alice")

	require.NoError(t, f.users.UpdateBio(ctx, alice.ID, UpdateBioInput{Bio: "writes about rust"}))
	profile, err := f.users.Profile(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", profile.Username)
	assert.Equal(t, "alice@example.com", profile.Email)
	assert.Equal(t, "writes about rust", profile.Bio)

	err = f.users.UpdateBio(ctx, alice.ID, UpdateBioInput{Bio: strings.Repeat("x", 281)})
	assertCode(t, err, models.CodeValidation)
	assert.Equal(t, []string{"bio"}, fieldNames(t, err))

	_, err = f.users.Profile(ctx, 9999)
	assertCode(t, err, models.CodeNotFound)
}

func TestUserService_ListAuthors(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()
	for _, name := range []string{"alice", "bob", "carol"} {
		testutil.CreateUser(t, f.db, name)
	}

	res, err := f.users.ListAuthors(ctx, PageRequest{Limit: intPtr(2), Page: intPtr(2)})
	require.NoError(t, err)
	assert.Equal(t, int64(3), res.Total)
	require.Len(t, res.Items, 1)
	assert.Equal(t, "carol", res.Items[0].Username)
	assert.Equal(t, 2, res.Page.Number())

	card, err := f.users.GetAuthor(ctx, res.Items[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "carol", card.Username)
}

func TestUserService_LatestUsersCachedUntilBioChange(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()
	var last *models.User
	for _, name := range []string{"alice", "bob", "carol", "dave"} {
		last = testutil.CreateUser(t, f.db, name)
	}

	latest, err := f.users.LatestUsers(ctx)
	require.NoError(t, err)
	require.Len(t, latest, LatestUsersCount)
	assert.Equal(t, "dave", latest[0].Username)
	assert.True(t, f.redis.Exists(cache.LatestUsersKey))

	require.NoError(t, f.users.UpdateBio(ctx, last.ID, UpdateBioInput{Bio: "new here"}))
	assert.False(t, f.redis.Exists(cache.LatestUsersKey))

	latest, err = f.users.LatestUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, "new here", latest[0].Bio)
}

func TestUserService_DeleteUser(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()
	alice := testutil.CreateUser(t, f.db, "alice")
	bob := testutil.CreateUser(t, f.db, "bob")
	root := f.admin(t, "root")

	err := f.users.DeleteUser(ctx, bob.ID, alice.ID)
	assertCode(t, err, models.CodeForbidden)

	require.NoError(t, f.users.DeleteUser(ctx, bob.ID, bob.ID))
	require.NoError(t, f.users.DeleteUser(ctx, root.ID, alice.ID))

	_, err = f.users.Profile(ctx, alice.ID)
	assertCode(t, err, models.CodeNotFound)
	err = f.users.DeleteUser(ctx, root.ID, alice.ID)
	assertCode(t, err, models.CodeNotFound)
}
