package service

import (
	"context"
	"testing"
	"time"

	"github.com/andriinero/inkspace-backend/internal/models"
	"github.com/andriinero/inkspace-backend/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type feedWorld struct {
	alice, bob, carol *models.User
	rust, golang      *models.Topic
	bobRust, carolGo  *models.Post
	aliceRust         *models.Post
}

func newFeedWorld(t *testing.T, f *fixture) *feedWorld {
	t.Helper()
	now := time.Now()
	w := &feedWorld{
		alice:  testutil.CreateUser(t, f.db, "alice"),
		bob:    testutil.CreateUser(t, f.db, "bob"),
		carol:  testutil.CreateUser(t, f.db, "carol"),
		rust:   testutil.CreateTopic(t, f.db, "rust"),
		golang: testutil.CreateTopic(t, f.db, "golang"),
	}
	w.bobRust = testutil.CreatePost(t, f.db, w.bob, w.rust, "Bob on rust", now.Add(-3*time.Hour))
	w.carolGo = testutil.CreatePost(t, f.db, w.carol, w.golang, "Carol on go", now.Add(-2*time.Hour))
	w.aliceRust = testutil.CreatePost(t, f.db, w.alice, w.rust, "Alice on rust", now.Add(-time.Hour))
	return w
}

func titles(items []models.PostSummary) []string {
	out := make([]string, 0, len(items))
	for _, p := range items {
		out = append(out, p.Title)
	}
	return out
}

func TestFeedService_Filters(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()
	w := newFeedWorld(t, f)
	require.NoError(t, f.rel.Add(ctx, models.EdgeFollow, w.alice.ID, w.bob.ID))
	require.NoError(t, f.rel.Add(ctx, models.EdgeIgnoreUser, w.alice.ID, w.carol.ID))

	tests := []struct {
		name string
		in   FeedInput
		want []string
	}{
		{"everything newest first", FeedInput{}, []string{"Alice on rust", "Carol on go", "Bob on rust"}},
		{"topic by name", FeedInput{Topic: &TopicRef{Name: "rust"}}, []string{"Alice on rust", "Bob on rust"}},
		{"topic by id", FeedInput{Topic: &TopicRef{ID: w.golang.ID}}, []string{"Carol on go"}},
		{"author", FeedInput{AuthorID: &w.alice.ID}, []string{"Alice on rust"}},
		{"author and topic", FeedInput{AuthorID: &w.alice.ID, Topic: &TopicRef{Name: "golang"}}, []string{}},
		{"follow list", FeedInput{FollowListOf: &w.alice.ID}, []string{"Bob on rust"}},
		{"ignore list", FeedInput{IgnoreListOf: &w.alice.ID}, []string{"Alice on rust", "Bob on rust"}},
		{"unknown topic", FeedInput{Topic: &TopicRef{Name: "cobol"}}, []string{}},
		{"unknown topic id", FeedInput{Topic: &TopicRef{ID: 9999}}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := f.feed.Feed(ctx, tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, titles(res.Items))
			assert.Equal(t, int64(len(tt.want)), res.Total)
		})
	}
}

func TestFeedService_IgnoredTopicAndPost(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()
	w := newFeedWorld(t, f)
	require.NoError(t, f.rel.Add(ctx, models.EdgeIgnoreTopic, w.carol.ID, w.golang.ID))
	require.NoError(t, f.rel.Add(ctx, models.EdgeIgnorePost, w.carol.ID, w.bobRust.ID))

	res, err := f.feed.Feed(ctx, FeedInput{IgnoreListOf: &w.carol.ID})
	require.NoError(t, err)
	assert.Equal(t, []string{"Alice on rust"}, titles(res.Items))
}

func TestFeedService_Paging(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()
	newFeedWorld(t, f)

	first, err := f.feed.Feed(ctx, FeedInput{PageRequest: PageRequest{Limit: intPtr(2), Page: intPtr(1)}})
	require.NoError(t, err)
	second, err := f.feed.Feed(ctx, FeedInput{PageRequest: PageRequest{Limit: intPtr(2), Page: intPtr(2)}})
	require.NoError(t, err)

	assert.Equal(t, []string{"Alice on rust", "Carol on go"}, titles(first.Items))
	assert.Equal(t, []string{"Bob on rust"}, titles(second.Items))
	assert.Equal(t, int64(3), second.Total)
	assert.Equal(t, 2, second.Page.Number())

	// Out of range falls back to the first page.
	past, err := f.feed.Feed(ctx, FeedInput{PageRequest: PageRequest{Limit: intPtr(2), Page: intPtr(9)}})
	require.NoError(t, err)
	assert.Equal(t, titles(first.Items), titles(past.Items))
}

func TestFeedService_Random(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()
	w := newFeedWorld(t, f)

	res, err := f.feed.Feed(ctx, FeedInput{Random: intPtr(2)})
	require.NoError(t, err)
	assert.Len(t, res.Items, 2)

	res, err = f.feed.Feed(ctx, FeedInput{Random: intPtr(100), AuthorID: &w.bob.ID})
	require.NoError(t, err)
	assert.Equal(t, []string{"Bob on rust"}, titles(res.Items))

	for _, n := range []int{0, -5} {
		_, err = f.feed.Feed(ctx, FeedInput{Random: intPtr(n)})
		assert.Equal(t, []string{"random"}, fieldNames(t, err))
	}
}

func TestFeedService_UnknownListUser(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()
	newFeedWorld(t, f)

	_, err := f.feed.Feed(ctx, FeedInput{FollowListOf: uintPtr(9999)})
	assertCode(t, err, models.CodeNotFound)
	_, err = f.feed.Feed(ctx, FeedInput{IgnoreListOf: uintPtr(9999)})
	assertCode(t, err, models.CodeNotFound)
}
