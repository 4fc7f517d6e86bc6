package repository

import (
	"context"
	"testing"
	"time"

	"github.com/andriinero/inkspace-backend/internal/models"
	"github.com/andriinero/inkspace-backend/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func count(t *testing.T, db *gorm.DB, model any, query string, args ...any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(model).Where(query, args...).Count(&n).Error)
	return n
}

func TestCascadeRepository_DeletePost(t *testing.T) {
	db := testutil.NewTestDB(t)
	cascade := NewCascadeRepository(db)
	rel := NewRelationshipRepository(db)
	ctx := context.Background()

	alice := testutil.CreateUser(t, db, "alice")
	bob := testutil.CreateUser(t, db, "bob")
	topic := testutil.CreateTopic(t, db, "rust")
	post := testutil.CreatePost(t, db, alice, topic, "doomed", time.Now())
	keep := testutil.CreatePost(t, db, alice, topic, "kept", time.Now())
	thumb := testutil.CreateImage(t, db, alice)
	require.NoError(t, db.Model(post).Update("thumbnail_image_id", thumb.ID).Error)

	testutil.CreateComment(t, db, bob, post, "a comment here")
	testutil.CreateComment(t, db, bob, keep, "another comment")
	require.NoError(t, rel.Add(ctx, models.EdgeBookmark, bob.ID, post.ID))
	require.NoError(t, rel.Add(ctx, models.EdgeBookmark, bob.ID, keep.ID))
	require.NoError(t, rel.Add(ctx, models.EdgeIgnorePost, alice.ID, post.ID))

	res, err := cascade.DeletePost(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{post.ID}, res.PostIDs)
	assert.Equal(t, []uint{topic.ID}, res.TopicIDs)
	require.Len(t, res.Images, 1)
	assert.Equal(t, thumb.Key, res.Images[0].Key)

	assert.Zero(t, count(t, db, &models.Post{}, "id = ?", post.ID))
	assert.Zero(t, count(t, db, &models.Comment{}, "post_id = ?", post.ID))
	assert.Zero(t, count(t, db, &models.Bookmark{}, "post_id = ?", post.ID))
	assert.Zero(t, count(t, db, &models.IgnoredPost{}, "post_id = ?", post.ID))
	assert.Zero(t, count(t, db, &models.Image{}, "id = ?", thumb.ID))

	assert.Equal(t, int64(1), count(t, db, &models.Comment{}, "post_id = ?", keep.ID))
	assert.Equal(t, int64(1), count(t, db, &models.Bookmark{}, "post_id = ?", keep.ID))

	_, err = cascade.DeletePost(ctx, post.ID)
	assert.True(t, models.HasCode(err, models.CodeNotFound))
}

func TestCascadeRepository_DeleteUser(t *testing.T) {
	db := testutil.NewTestDB(t)
	cascade := NewCascadeRepository(db)
	rel := NewRelationshipRepository(db)
	ctx := context.Background()

	alice := testutil.CreateUser(t, db, "alice")
	bob := testutil.CreateUser(t, db, "bob")
	rust := testutil.CreateTopic(t, db, "rust")
	avatar := testutil.CreateImage(t, db, alice)
	require.NoError(t, db.Model(alice).Update("profile_image_id", avatar.ID).Error)

	alicePost := testutil.CreatePost(t, db, alice, rust, "by alice", time.Now())
	bobPost := testutil.CreatePost(t, db, bob, rust, "by bob", time.Now())
	testutil.CreateComment(t, db, bob, alicePost, "bob on alice")
	testutil.CreateComment(t, db, alice, bobPost, "alice on bob")

	require.NoError(t, rel.Add(ctx, models.EdgeFollow, alice.ID, bob.ID))
	require.NoError(t, rel.Add(ctx, models.EdgeFollow, bob.ID, alice.ID))
	require.NoError(t, rel.Add(ctx, models.EdgeIgnoreUser, bob.ID, alice.ID))
	require.NoError(t, rel.Add(ctx, models.EdgeIgnoreTopic, alice.ID, rust.ID))
	require.NoError(t, rel.Add(ctx, models.EdgeBookmark, alice.ID, bobPost.ID))
	require.NoError(t, rel.Add(ctx, models.EdgeBookmark, bob.ID, alicePost.ID))

	res, err := cascade.DeleteUser(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{alicePost.ID}, res.PostIDs)
	assert.Equal(t, []uint{rust.ID}, res.TopicIDs)
	assert.Equal(t, []uint{bobPost.ID}, res.CommentedPostIDs)
	require.Len(t, res.Images, 1)
	assert.Equal(t, avatar.ID, res.Images[0].ID)

	assert.Zero(t, count(t, db, &models.User{}, "id = ?", alice.ID))
	assert.Zero(t, count(t, db, &models.Post{}, "user_id = ?", alice.ID))
	assert.Zero(t, count(t, db, &models.Comment{}, "user_id = ? OR post_id = ?", alice.ID, alicePost.ID))
	assert.Zero(t, count(t, db, &models.Follow{}, "follower_id = ? OR followee_id = ?", alice.ID, alice.ID))
	assert.Zero(t, count(t, db, &models.IgnoredUser{}, "user_id = ? OR ignored_user_id = ?", alice.ID, alice.ID))
	assert.Zero(t, count(t, db, &models.IgnoredTopic{}, "user_id = ?", alice.ID))
	assert.Zero(t, count(t, db, &models.Bookmark{}, "user_id = ? OR post_id = ?", alice.ID, alicePost.ID))
	assert.Zero(t, count(t, db, &models.Image{}, "owner_id = ?", alice.ID))

	// Bob and his post survive.
	assert.Equal(t, int64(1), count(t, db, &models.Post{}, "id = ?", bobPost.ID))
	assert.Equal(t, int64(1), count(t, db, &models.User{}, "id = ?", bob.ID))

	_, err = cascade.DeleteUser(ctx, alice.ID)
	assert.True(t, models.HasCode(err, models.CodeNotFound))
}

func TestCascadeRepository_DeleteTopic(t *testing.T) {
	db := testutil.NewTestDB(t)
	cascade := NewCascadeRepository(db)
	rel := NewRelationshipRepository(db)
	ctx := context.Background()

	alice := testutil.CreateUser(t, db, "alice")
	used := testutil.CreateTopic(t, db, "used")
	unused := testutil.CreateTopic(t, db, "unused")
	testutil.CreatePost(t, db, alice, used, "post", time.Now())
	require.NoError(t, rel.Add(ctx, models.EdgeIgnoreTopic, alice.ID, unused.ID))

	err := cascade.DeleteTopic(ctx, used.ID)
	assert.True(t, models.HasReason(err, models.ReasonTopicInUse), "got %v", err)
	assert.Equal(t, int64(1), count(t, db, &models.Topic{}, "id = ?", used.ID))

	require.NoError(t, cascade.DeleteTopic(ctx, unused.ID))
	assert.Zero(t, count(t, db, &models.Topic{}, "id = ?", unused.ID))
	assert.Zero(t, count(t, db, &models.IgnoredTopic{}, "topic_id = ?", unused.ID))

	err = cascade.DeleteTopic(ctx, 999)
	assert.True(t, models.HasCode(err, models.CodeNotFound))
}

// sharedImage attaches one image as alice's profile image and as the
// thumbnail of both posts, bypassing the service checks.
func sharedImage(t *testing.T, db *gorm.DB, alice *models.User, posts ...*models.Post) *models.Image {
	t.Helper()
	img := testutil.CreateImage(t, db, alice)
	require.NoError(t, db.Model(alice).Update("profile_image_id", img.ID).Error)
	for _, p := range posts {
		require.NoError(t, db.Model(p).Update("thumbnail_image_id", img.ID).Error)
	}
	return img
}

func TestCascadeRepository_DeletePostKeepsSharedImage(t *testing.T) {
	db := testutil.NewTestDB(t)
	cascade := NewCascadeRepository(db)
	ctx := context.Background()

	alice := testutil.CreateUser(t, db, "alice")
	topic := testutil.CreateTopic(t, db, "rust")
	first := testutil.CreatePost(t, db, alice, topic, "first", time.Now())
	second := testutil.CreatePost(t, db, alice, topic, "second", time.Now())
	img := sharedImage(t, db, alice, first, second)

	res, err := cascade.DeletePost(ctx, first.ID)
	require.NoError(t, err)
	assert.Empty(t, res.Images)
	assert.Equal(t, int64(1), count(t, db, &models.Image{}, "id = ?", img.ID))

	res, err = cascade.DeletePost(ctx, second.ID)
	require.NoError(t, err)
	assert.Empty(t, res.Images, "still the profile image")
	assert.Equal(t, int64(1), count(t, db, &models.Image{}, "id = ?", img.ID))
}

func TestCascadeRepository_DeleteUserDetachesOwnedImages(t *testing.T) {
	db := testutil.NewTestDB(t)
	cascade := NewCascadeRepository(db)
	ctx := context.Background()

	alice := testutil.CreateUser(t, db, "alice")
	bob := testutil.CreateUser(t, db, "bob")
	topic := testutil.CreateTopic(t, db, "rust")
	bobPost := testutil.CreatePost(t, db, bob, topic, "by bob", time.Now())

	img := testutil.CreateImage(t, db, alice)
	require.NoError(t, db.Model(alice).Update("profile_image_id", img.ID).Error)
	require.NoError(t, db.Model(bob).Update("profile_image_id", img.ID).Error)
	require.NoError(t, db.Model(bobPost).Update("thumbnail_image_id", img.ID).Error)

	res, err := cascade.DeleteUser(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, res.Images, 1)
	assert.Equal(t, img.ID, res.Images[0].ID)

	assert.Zero(t, count(t, db, &models.Image{}, "id = ?", img.ID))
	assert.Zero(t, count(t, db, &models.User{}, "profile_image_id = ?", img.ID))
	assert.Zero(t, count(t, db, &models.Post{}, "thumbnail_image_id = ?", img.ID))
	assert.Equal(t, int64(1), count(t, db, &models.Post{}, "id = ?", bobPost.ID))
}

func TestPostRepository_UpdateKeepsSharedThumbnail(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	alice := testutil.CreateUser(t, db, "alice")
	topic := testutil.CreateTopic(t, db, "rust")
	first := testutil.CreatePost(t, db, alice, topic, "first", time.Now())
	second := testutil.CreatePost(t, db, alice, topic, "second", time.Now())
	img := sharedImage(t, db, alice, first, second)
	fresh := testutil.CreateImage(t, db, alice)

	replaced, err := repo.Update(ctx, first.ID, PostPatch{ThumbnailImageID: &fresh.ID})
	require.NoError(t, err)
	assert.Nil(t, replaced)
	assert.Equal(t, int64(1), count(t, db, &models.Image{}, "id = ?", img.ID))
}

func TestUserRepository_SetProfileImageKeepsSharedImage(t *testing.T) {
	db := testutil.NewTestDB(t)
	users := NewUserRepository(db)
	ctx := context.Background()

	alice := testutil.CreateUser(t, db, "alice")
	topic := testutil.CreateTopic(t, db, "rust")
	post := testutil.CreatePost(t, db, alice, topic, "cover", time.Now())
	img := sharedImage(t, db, alice, post)
	fresh := testutil.CreateImage(t, db, alice)

	replaced, err := users.SetProfileImage(ctx, alice.ID, fresh.ID)
	require.NoError(t, err)
	assert.Nil(t, replaced)
	assert.Equal(t, int64(1), count(t, db, &models.Image{}, "id = ?", img.ID))
}

func TestImageRepository_InUse(t *testing.T) {
	db := testutil.NewTestDB(t)
	images := NewImageRepository(db)
	ctx := context.Background()

	alice := testutil.CreateUser(t, db, "alice")
	topic := testutil.CreateTopic(t, db, "rust")
	post := testutil.CreatePost(t, db, alice, topic, "cover", time.Now())
	free := testutil.CreateImage(t, db, alice)
	avatar := testutil.CreateImage(t, db, alice)
	cover := testutil.CreateImage(t, db, alice)
	require.NoError(t, db.Model(alice).Update("profile_image_id", avatar.ID).Error)
	require.NoError(t, db.Model(post).Update("thumbnail_image_id", cover.ID).Error)

	tests := []struct {
		name    string
		imageID uint
		user    uint
		postID  uint
		want    bool
	}{
		{"unattached", free.ID, 0, 0, false},
		{"profile image", avatar.ID, 0, 0, true},
		{"own profile image", avatar.ID, alice.ID, 0, false},
		{"thumbnail", cover.ID, 0, 0, true},
		{"own thumbnail", cover.ID, 0, post.ID, false},
		{"thumbnail for profile", cover.ID, alice.ID, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := images.InUse(ctx, tt.imageID, tt.user, tt.postID)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
