package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/andriinero/inkspace-backend/internal/observability"

	"github.com/redis/go-redis/v9"
)

// Store is a JSON cache over Redis. A Store with a nil client is valid and
// caches nothing, so every method is safe without Redis.
type Store struct {
	rdb *redis.Client
}

// NewStore wraps rdb, which may be nil.
func NewStore(rdb *redis.Client) *Store {
	return &Store{rdb: rdb}
}

// Enabled reports whether a Redis client is attached.
func (s *Store) Enabled() bool {
	return s != nil && s.rdb != nil
}

// GetJSON attempts to get the key from Redis and unmarshal into dest.
// Returns (true, nil) if found and unmarshaled, (false, nil) if not found.
func (s *Store) GetJSON(ctx context.Context, key string, dest any) (bool, error) {
	if !s.Enabled() {
		return false, nil
	}
	b, err := s.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(b, dest); err != nil {
		return false, err
	}
	return true, nil
}

// SetJSON marshals v and sets the key with TTL.
func (s *Store) SetJSON(ctx context.Context, key string, v any, ttl time.Duration) error {
	if !s.Enabled() {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, key, b, ttl).Err()
}

// Aside tries Redis first, on miss it calls fetch (which must populate dest),
// then stores dest with ttl. Cache failures fall through to fetch.
func (s *Store) Aside(ctx context.Context, key string, dest any, ttl time.Duration, fetch func() error) error {
	family := keyFamily(key)

	lookupCtx, span := observability.GetTraceLayer().TraceRedisOperation(ctx, "get."+family)
	found, err := s.GetJSON(lookupCtx, key, dest)
	observability.FinishSpan(span, err)
	switch {
	case err != nil:
		observability.CacheLookups.WithLabelValues(family, "error").Inc()
	case found:
		observability.CacheLookups.WithLabelValues(family, "hit").Inc()
		return nil
	case s.Enabled():
		observability.CacheLookups.WithLabelValues(family, "miss").Inc()
	}

	if err := fetch(); err != nil {
		return err
	}

	// Best-effort.
	_ = s.SetJSON(ctx, key, dest, ttl)
	return nil
}

// Invalidate deletes the given keys.
func (s *Store) Invalidate(ctx context.Context, keys ...string) {
	if !s.Enabled() || len(keys) == 0 {
		return
	}
	s.rdb.Del(ctx, keys...)
}

// InvalidatePrefix deletes every key starting with prefix.
func (s *Store) InvalidatePrefix(ctx context.Context, prefix string) {
	if !s.Enabled() {
		return
	}
	iter := s.rdb.Scan(ctx, 0, prefix+"*", 100).Iterator()
	var batch []string
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == 100 {
			s.rdb.Del(ctx, batch...)
			batch = batch[:0]
		}
	}
	if len(batch) > 0 {
		s.rdb.Del(ctx, batch...)
	}
}

// InvalidateTopics drops the topic detail and every cached topic page.
func (s *Store) InvalidateTopics(ctx context.Context, topicIDs ...uint) {
	keys := make([]string, 0, len(topicIDs))
	for _, id := range topicIDs {
		keys = append(keys, TopicKey(id))
	}
	s.Invalidate(ctx, keys...)
	s.InvalidatePrefix(ctx, TopicListPrefix)
}

// InvalidateAuthors drops every cached author page and the latest users list.
func (s *Store) InvalidateAuthors(ctx context.Context) {
	s.Invalidate(ctx, LatestUsersKey)
	s.InvalidatePrefix(ctx, AuthorListPrefix)
}

// InvalidatePosts drops the cached detail of each post.
func (s *Store) InvalidatePosts(ctx context.Context, postIDs ...uint) {
	keys := make([]string, 0, len(postIDs))
	for _, id := range postIDs {
		keys = append(keys, PostKey(id))
	}
	s.Invalidate(ctx, keys...)
}

// InvalidateAllPosts drops every cached post detail. Used when data embedded
// in many posts changes, such as a topic name or an author's picture.
func (s *Store) InvalidateAllPosts(ctx context.Context) {
	s.InvalidatePrefix(ctx, postFamilyPrefix)
}

func keyFamily(key string) string {
	if i := strings.IndexByte(key, ':'); i > 0 {
		return key[:i]
	}
	return key
}
