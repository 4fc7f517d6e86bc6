package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/andriinero/inkspace-backend/internal/cache"
	"github.com/andriinero/inkspace-backend/internal/config"
	"github.com/andriinero/inkspace-backend/internal/models"
	"github.com/andriinero/inkspace-backend/internal/repository"
	"github.com/andriinero/inkspace-backend/internal/testutil"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// fixture wires every service over an in-memory database.
type fixture struct {
	db    *gorm.DB
	blobs *testutil.MemoryBlobStore
	cache *cache.Store
	redis *miniredis.Miniredis

	auth     *AuthService
	users    *UserService
	rel      *RelationshipService
	bookmark *BookmarkService
	topics   *TopicService
	posts    *PostService
	comments *CommentService
	feed     *FeedService
	images   *ImageService
}

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:            "test-secret-that-is-long-enough-123",
		JWTExpiry:            time.Hour,
		BcryptCost:           4,
		PageSize:             10,
		ImageMaxUploadSizeMB: 2,
	}
}

func newFixture(t *testing.T, withRedis bool) *fixture {
	t.Helper()
	cfg := testConfig()
	db := testutil.NewTestDB(t)
	f := &fixture{db: db, blobs: testutil.NewMemoryBlobStore(), cache: cache.NewStore(nil)}

	if withRedis {
		f.redis = miniredis.RunT(t)
		rdb := redis.NewClient(&redis.Options{Addr: f.redis.Addr()})
		t.Cleanup(func() { _ = rdb.Close() })
		f.cache = cache.NewStore(rdb)
	}

	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)
	topicRepo := repository.NewTopicRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	imageRepo := repository.NewImageRepository(db)
	edgeRepo := repository.NewRelationshipRepository(db)
	cascade := NewCascadeService(repository.NewCascadeRepository(db), f.blobs, f.cache)

	f.auth = NewAuthService(userRepo, cfg)
	f.users = NewUserService(userRepo, cascade, f.cache, cfg.PageSize)
	f.rel = NewRelationshipService(edgeRepo, userRepo, topicRepo, postRepo, cfg.PageSize)
	f.bookmark = NewBookmarkService(f.rel)
	f.topics = NewTopicService(topicRepo, cascade, f.cache, f.users.IsAdmin, cfg.PageSize)
	f.posts = NewPostService(postRepo, topicRepo, imageRepo, cascade, f.blobs, f.cache, f.users.IsAdmin)
	f.comments = NewCommentService(commentRepo, postRepo, f.cache, f.users.IsAdmin, cfg.PageSize)
	f.feed = NewFeedService(postRepo, topicRepo, userRepo, cfg.PageSize)
	f.images = NewImageService(imageRepo, userRepo, f.blobs, f.cache, cfg)
	return f
}

func (f *fixture) admin(t *testing.T, username string) *models.User {
	t.Helper()
	u := testutil.CreateUser(t, f.db, username)
	require.NoError(t, f.db.Model(u).Update("role", models.RoleAdmin).Error)
	u.Role = models.RoleAdmin
	return u
}

// longBody returns a post body that passes length validation.
func longBody(prefix string) string {
	return prefix + " " + strings.Repeat("lorem ipsum dolor sit amet ", 6)
}

func (f *fixture) createPost(t *testing.T, author *models.User, topic string) *models.PostDetail {
	t.Helper()
	post, err := f.posts.Create(context.Background(), author.ID, CreatePostInput{
		Title: "About " + topic,
		Body:  longBody(topic),
		Topic: &TopicRef{Name: topic},
	})
	require.NoError(t, err)
	return post
}

func intPtr(v int) *int    { return &v }
func uintPtr(v uint) *uint { return &v }

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	assert.True(t, models.HasCode(err, code), "want %s, got %v", code, err)
}

func assertReason(t *testing.T, err error, reason string) {
	t.Helper()
	require.Error(t, err)
	assert.True(t, models.HasReason(err, reason), "want %s, got %v", reason, err)
}

func fieldNames(t *testing.T, err error) []string {
	t.Helper()
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	names := make([]string, 0, len(appErr.Fields))
	for _, f := range appErr.Fields {
		names = append(names, f.Field)
	}
	return names
}
