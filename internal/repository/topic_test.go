package repository

import (
	"context"
	"testing"
	"time"

	"github.com/andriinero/inkspace-backend/internal/models"
	"github.com/andriinero/inkspace-backend/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTopicRepository_CreateAndFindOrCreate(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewTopicRepository(db)
	ctx := context.Background()

	rust := &models.Topic{Name: "rust"}
	require.NoError(t, repo.Create(ctx, rust))

	err := repo.Create(ctx, &models.Topic{Name: "rust"})
	assert.True(t, models.HasReason(err, models.ReasonDuplicateTopic), "got %v", err)

	found, err := repo.FindOrCreate(ctx, "rust")
	require.NoError(t, err)
	assert.Equal(t, rust.ID, found.ID)

	created, err := repo.FindOrCreate(ctx, "zig")
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.NotEqual(t, rust.ID, created.ID)

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestTopicRepository_RenameAndList(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewTopicRepository(db)
	ctx := context.Background()

	b := testutil.CreateTopic(t, db, "beta")
	testutil.CreateTopic(t, db, "alpha")

	require.NoError(t, repo.Rename(ctx, b.ID, "gamma"))
	err := repo.Rename(ctx, b.ID, "alpha")
	assert.True(t, models.HasReason(err, models.ReasonDuplicateTopic))
	err = repo.Rename(ctx, 999, "delta")
	assert.True(t, models.HasCode(err, models.CodeNotFound))

	topics, err := repo.List(ctx, 0, 0)
	require.NoError(t, err)
	require.Len(t, topics, 2)
	assert.Equal(t, "alpha", topics[0].Name)
	assert.Equal(t, "gamma", topics[1].Name)
}

func TestCommentRepository_Lifecycle(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewCommentRepository(db)
	ctx := context.Background()

	alice := testutil.CreateUser(t, db, "alice")
	topic := testutil.CreateTopic(t, db, "go")
	post := testutil.CreatePost(t, db, alice, topic, "post", time.Now())

	c := &models.Comment{UserID: alice.ID, PostID: post.ID, Body: "first comment", Date: time.Now().Add(-time.Minute)}
	require.NoError(t, repo.Create(ctx, c))
	second := testutil.CreateComment(t, db, alice, post, "second comment")

	listed, err := repo.ListByPost(ctx, post.ID, 0, 0)
	require.NoError(t, err)
	require.Len(t, listed, 2)
	assert.Equal(t, second.ID, listed[0].ID)
	assert.Equal(t, "alice", listed[0].Author.Username)

	edited := time.Now().UTC()
	require.NoError(t, repo.UpdateBody(ctx, c.ID, "edited comment", edited))
	got, err := repo.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "edited comment", got.Body)
	require.NotNil(t, got.EditDate)

	require.NoError(t, repo.Delete(ctx, c.ID))
	assert.True(t, models.HasCode(repo.Delete(ctx, c.ID), models.CodeNotFound))

	n, err := repo.CountByPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}
