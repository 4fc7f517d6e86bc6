package repository

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/andriinero/inkspace-backend/internal/models"
	"github.com/andriinero/inkspace-backend/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(v uint) *uint { return &v }

func titles(posts []models.Post) []string {
	out := make([]string, 0, len(posts))
	for _, p := range posts {
		out = append(out, p.Title)
	}
	return out
}

func TestPostRepository_FeedOrderAndPages(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	alice := testutil.CreateUser(t, db, "alice")
	topic := testutil.CreateTopic(t, db, "go")
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 7; i++ {
		testutil.CreatePost(t, db, alice, topic, fmt.Sprintf("post-%d", i), base.Add(time.Duration(i)*time.Hour))
	}

	seen := map[uint]bool{}
	var all []models.Post
	for offset := 0; offset < 9; offset += 3 {
		posts, err := repo.Feed(ctx, FeedQuery{Limit: 3, Offset: offset})
		require.NoError(t, err)
		for _, p := range posts {
			assert.False(t, seen[p.ID], "post %d returned twice", p.ID)
			seen[p.ID] = true
		}
		all = append(all, posts...)
	}
	require.Len(t, all, 7)
	assert.Equal(t, "post-6", all[0].Title)
	assert.Equal(t, "post-0", all[6].Title)

	// Summaries carry author and topic but not the body.
	assert.Equal(t, "alice", all[0].Author.Username)
	assert.Equal(t, "go", all[0].Topic.Name)
	assert.Empty(t, all[0].Body)

	n, err := repo.CountFeed(ctx, FeedQuery{})
	require.NoError(t, err)
	assert.Equal(t, int64(7), n)
}

func TestPostRepository_FeedTieBreaksOnID(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewPostRepository(db)

	alice := testutil.CreateUser(t, db, "alice")
	topic := testutil.CreateTopic(t, db, "go")
	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	first := testutil.CreatePost(t, db, alice, topic, "first", at)
	second := testutil.CreatePost(t, db, alice, topic, "second", at)

	posts, err := repo.Feed(context.Background(), FeedQuery{})
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, second.ID, posts[0].ID)
	assert.Equal(t, first.ID, posts[1].ID)
}

func TestPostRepository_FeedFilters(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewPostRepository(db)
	rel := NewRelationshipRepository(db)
	ctx := context.Background()

	alice := testutil.CreateUser(t, db, "alice")
	bob := testutil.CreateUser(t, db, "bob")
	carol := testutil.CreateUser(t, db, "carol")
	viewer := testutil.CreateUser(t, db, "viewer")
	rust := testutil.CreateTopic(t, db, "rust")
	golang := testutil.CreateTopic(t, db, "golang")

	now := time.Now()
	testutil.CreatePost(t, db, alice, rust, "alice-rust", now.Add(-4*time.Hour))
	testutil.CreatePost(t, db, alice, golang, "alice-go", now.Add(-3*time.Hour))
	hidden := testutil.CreatePost(t, db, bob, golang, "bob-go", now.Add(-2*time.Hour))
	testutil.CreatePost(t, db, carol, rust, "carol-rust", now.Add(-1*time.Hour))

	require.NoError(t, rel.Add(ctx, models.EdgeFollow, viewer.ID, alice.ID))
	require.NoError(t, rel.Add(ctx, models.EdgeFollow, viewer.ID, bob.ID))
	require.NoError(t, rel.Add(ctx, models.EdgeIgnoreUser, viewer.ID, carol.ID))
	require.NoError(t, rel.Add(ctx, models.EdgeIgnorePost, viewer.ID, hidden.ID))

	tests := []struct {
		name string
		q    FeedQuery
		want []string
	}{
		{"all", FeedQuery{}, []string{"carol-rust", "bob-go", "alice-go", "alice-rust"}},
		{"topic", FeedQuery{TopicID: &rust.ID}, []string{"carol-rust", "alice-rust"}},
		{"author", FeedQuery{AuthorID: &alice.ID}, []string{"alice-go", "alice-rust"}},
		{"follow list", FeedQuery{FollowListOf: &viewer.ID}, []string{"bob-go", "alice-go", "alice-rust"}},
		{"ignore list", FeedQuery{IgnoreListOf: &viewer.ID}, []string{"alice-go", "alice-rust"}},
		{"follow and ignore", FeedQuery{FollowListOf: &viewer.ID, IgnoreListOf: &viewer.ID}, []string{"alice-go", "alice-rust"}},
		{"topic and author", FeedQuery{TopicID: &golang.ID, AuthorID: ptr(alice.ID)}, []string{"alice-go"}},
		{"nobody followed", FeedQuery{FollowListOf: &carol.ID}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			posts, err := repo.Feed(ctx, tt.q)
			require.NoError(t, err)
			assert.Equal(t, tt.want, titles(posts))

			n, err := repo.CountFeed(ctx, tt.q)
			require.NoError(t, err)
			assert.Equal(t, int64(len(tt.want)), n)
		})
	}
}

func TestPostRepository_FeedIgnoredTopic(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewPostRepository(db)
	rel := NewRelationshipRepository(db)
	ctx := context.Background()

	alice := testutil.CreateUser(t, db, "alice")
	rust := testutil.CreateTopic(t, db, "rust")
	golang := testutil.CreateTopic(t, db, "golang")
	testutil.CreatePost(t, db, alice, rust, "a", time.Now())
	testutil.CreatePost(t, db, alice, golang, "b", time.Now())
	require.NoError(t, rel.Add(ctx, models.EdgeIgnoreTopic, alice.ID, rust.ID))

	posts, err := repo.Feed(ctx, FeedQuery{IgnoreListOf: &alice.ID})
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, titles(posts))
}

func TestPostRepository_FeedRandom(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewPostRepository(db)

	alice := testutil.CreateUser(t, db, "alice")
	bob := testutil.CreateUser(t, db, "bob")
	topic := testutil.CreateTopic(t, db, "go")
	for i := 0; i < 6; i++ {
		testutil.CreatePost(t, db, alice, topic, fmt.Sprintf("a-%d", i), time.Now())
	}
	testutil.CreatePost(t, db, bob, topic, "b", time.Now())

	posts, err := repo.Feed(context.Background(), FeedQuery{Random: 3, Limit: 1, Offset: 5})
	require.NoError(t, err)
	assert.Len(t, posts, 3)

	posts, err = repo.Feed(context.Background(), FeedQuery{Random: 10, AuthorID: &alice.ID})
	require.NoError(t, err)
	assert.Len(t, posts, 6)
	for _, p := range posts {
		assert.Equal(t, alice.ID, p.UserID)
	}
}

func TestPostRepository_IncrementLikeConcurrent(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	alice := testutil.CreateUser(t, db, "alice")
	topic := testutil.CreateTopic(t, db, "go")
	post := testutil.CreatePost(t, db, alice, topic, "liked", time.Now())

	const n = 20
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.IncrementLike(ctx, post.ID)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	count, err := repo.LikeCount(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(n), count)
}

func TestPostRepository_UpdateReplacesThumbnail(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	alice := testutil.CreateUser(t, db, "alice")
	topic := testutil.CreateTopic(t, db, "go")
	post := testutil.CreatePost(t, db, alice, topic, "thumb", time.Now())
	oldImg := testutil.CreateImage(t, db, alice)
	newImg := testutil.CreateImage(t, db, alice)

	replaced, err := repo.Update(ctx, post.ID, PostPatch{ThumbnailImageID: &oldImg.ID})
	require.NoError(t, err)
	assert.Nil(t, replaced)

	title := "renamed"
	replaced, err = repo.Update(ctx, post.ID, PostPatch{Title: &title, ThumbnailImageID: &newImg.ID})
	require.NoError(t, err)
	require.NotNil(t, replaced)
	assert.Equal(t, oldImg.ID, replaced.ID)

	var remaining int64
	require.NoError(t, db.Model(&models.Image{}).Where("id = ?", oldImg.ID).Count(&remaining).Error)
	assert.Zero(t, remaining)

	got, err := repo.GetByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "renamed", got.Title)
	assert.Equal(t, newImg.ID, *got.ThumbnailImageID)
}

func TestPostRepository_GetDetailCommentsNewestFirst(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewPostRepository(db)

	alice := testutil.CreateUser(t, db, "alice")
	bob := testutil.CreateUser(t, db, "bob")
	topic := testutil.CreateTopic(t, db, "go")
	post := testutil.CreatePost(t, db, alice, topic, "detail", time.Now())
	older := &models.Comment{UserID: bob.ID, PostID: post.ID, Body: "older comment", Date: time.Now().Add(-time.Hour)}
	newer := &models.Comment{UserID: alice.ID, PostID: post.ID, Body: "newer comment", Date: time.Now()}
	require.NoError(t, db.Create(older).Error)
	require.NoError(t, db.Create(newer).Error)

	got, err := repo.GetDetail(context.Background(), post.ID)
	require.NoError(t, err)
	require.Len(t, got.Comments, 2)
	assert.Equal(t, newer.ID, got.Comments[0].ID)
	assert.Equal(t, "alice", got.Comments[0].Author.Username)
	assert.Equal(t, "bob", got.Comments[1].Author.Username)

	_, err = repo.GetDetail(context.Background(), 999)
	assert.True(t, models.HasCode(err, models.CodeNotFound))
}
