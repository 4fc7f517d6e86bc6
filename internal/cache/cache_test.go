package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cachedTopic struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

func newTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewStore(rdb), mr
}

func TestStore_Aside(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	calls := 0
	fetch := func(dest *[]cachedTopic) func() error {
		return func() error {
			calls++
			*dest = []cachedTopic{{ID: 1, Name: "rust"}}
			return nil
		}
	}

	var first []cachedTopic
	require.NoError(t, store.Aside(ctx, TopicListKey(10, 0), &first, TopicListTTL, fetch(&first)))
	assert.Equal(t, 1, calls)
	assert.True(t, mr.Exists("topics:list:10:0"))

	var second []cachedTopic
	require.NoError(t, store.Aside(ctx, TopicListKey(10, 0), &second, TopicListTTL, fetch(&second)))
	assert.Equal(t, 1, calls, "second read must be served from cache")
	assert.Equal(t, first, second)
}

func TestStore_AsideFetchError(t *testing.T) {
	store, mr := newTestStore(t)
	var dest []cachedTopic
	err := store.Aside(context.Background(), "k", &dest, time.Minute, func() error {
		return errors.New("db down")
	})
	assert.EqualError(t, err, "db down")
	assert.False(t, mr.Exists("k"))
}

func TestStore_Invalidation(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SetJSON(ctx, TopicListKey(10, 0), []int{1}, time.Minute))
	require.NoError(t, store.SetJSON(ctx, TopicListKey(5, 1), []int{1}, time.Minute))
	require.NoError(t, store.SetJSON(ctx, TopicKey(3), cachedTopic{ID: 3}, time.Minute))
	require.NoError(t, store.SetJSON(ctx, AuthorListKey(10, 0), []int{1}, time.Minute))
	require.NoError(t, store.SetJSON(ctx, PostKey(7), map[string]int{"id": 7}, time.Minute))

	store.InvalidateTopics(ctx, 3)
	assert.False(t, mr.Exists(TopicListKey(10, 0)))
	assert.False(t, mr.Exists(TopicListKey(5, 1)))
	assert.False(t, mr.Exists(TopicKey(3)))
	assert.True(t, mr.Exists(AuthorListKey(10, 0)))

	store.InvalidateAuthors(ctx)
	assert.False(t, mr.Exists(AuthorListKey(10, 0)))

	store.InvalidatePosts(ctx, 7)
	assert.False(t, mr.Exists(PostKey(7)))
}

func TestStore_NilClient(t *testing.T) {
	store := NewStore(nil)
	ctx := context.Background()
	assert.False(t, store.Enabled())

	found, err := store.GetJSON(ctx, "x", &struct{}{})
	assert.NoError(t, err)
	assert.False(t, found)
	assert.NoError(t, store.SetJSON(ctx, "x", 1, time.Minute))

	calls := 0
	var v int
	require.NoError(t, store.Aside(ctx, "x", &v, time.Minute, func() error { calls++; v = 4; return nil }))
	require.NoError(t, store.Aside(ctx, "x", &v, time.Minute, func() error { calls++; v = 4; return nil }))
	assert.Equal(t, 2, calls)

	store.InvalidateTopics(ctx, 1)
	store.InvalidateAuthors(ctx)
}

func TestInitRedis(t *testing.T) {
	mr := miniredis.RunT(t)

	InitRedis("redis://" + mr.Addr())
	require.NotNil(t, GetClient())
	assert.NoError(t, GetClient().Ping(context.Background()).Err())

	InitRedis("redis://%%bad")
	assert.Nil(t, GetClient())
}
