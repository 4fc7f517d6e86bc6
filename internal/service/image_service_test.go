package service

import (
	"bytes"
	"context"
	"image"
	"testing"

	"github.com/andriinero/inkspace-backend/internal/cache"
	"github.com/andriinero/inkspace-backend/internal/models"
	"github.com/andriinero/inkspace-backend/internal/testutil"

	"github.com/chai2010/webp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImageService_Upload(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()
	alice := testutil.CreateUser(t, f.db, "alice")

	img, err := f.images.Upload(ctx, UploadImageInput{
		OwnerID:     alice.ID,
		Filename:    "cover.png",
		ContentType: "image/png",
		Content:     testutil.PNG(t, 640, 320),
	})
	require.NoError(t, err)
	assert.Equal(t, "image/png", img.ContentType)
	assert.Equal(t, 640, img.Width)
	assert.Equal(t, 320, img.Height)
	assert.True(t, f.blobs.Has(img.Key))
	assert.True(t, f.blobs.Has(img.ThumbKey))

	thumb, err := f.images.Read(ctx, img.ID, VariantThumb)
	require.NoError(t, err)
	assert.Equal(t, ThumbnailContentType, thumb.ContentType)
	decoded, err := webp.Decode(bytes.NewReader(thumb.Data))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 256, 128), decoded.Bounds())

	original, err := f.images.Read(ctx, img.ID, "")
	require.NoError(t, err)
	assert.Equal(t, "image/png", original.ContentType)
	assert.Equal(t, testutil.PNG(t, 640, 320), original.Data)

	_, err = f.images.Read(ctx, img.ID, "huge")
	assert.Equal(t, []string{"variant"}, fieldNames(t, err))
	_, err = f.images.Read(ctx, 9999, VariantOriginal)
	assertCode(t, err, models.CodeNotFound)
}

func TestImageService_UploadRejects(t *testing.T) {
	f := newFixture(t, false)
	alice := testutil.CreateUser(t, f.db, "alice")

	tests := []struct {
		name string
		in   UploadImageInput
	}{
		{"empty", UploadImageInput{OwnerID: alice.ID}},
		{"not an image", UploadImageInput{OwnerID: alice.ID, Content: []byte("GIF89a plain text pretending")}},
		{"mismatched type", UploadImageInput{OwnerID: alice.ID, ContentType: "image/jpeg", Content: testutil.PNG(t, 8, 8)}},
		{"too large", UploadImageInput{OwnerID: alice.ID, Content: make([]byte, 2*1024*1024+1)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.images.Upload(context.Background(), tt.in)
			assertCode(t, err, models.CodeValidation)
		})
	}
}

func TestImageService_SetProfileImage(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()
	alice := testutil.CreateUser(t, f.db, "alice")
	bob := testutil.CreateUser(t, f.db, "bob")
	post := f.createPost(t, alice, "rust")
	_, err := f.posts.Get(ctx, post.ID)
	require.NoError(t, err)

	first, err := f.images.Upload(ctx, UploadImageInput{OwnerID: alice.ID, Content: testutil.JPEG(t, 64, 64)})
	require.NoError(t, err)
	theirs := testutil.CreateImage(t, f.db, bob)

	assertCode(t, f.images.SetProfileImage(ctx, alice.ID, theirs.ID), models.CodeForbidden)
	require.NoError(t, f.images.SetProfileImage(ctx, alice.ID, first.ID))
	assert.False(t, f.redis.Exists(cache.PostKey(post.ID)))

	detail, err := f.posts.Get(ctx, post.ID)
	require.NoError(t, err)
	require.NotNil(t, detail.Author.ProfileImageID)
	assert.Equal(t, first.ID, *detail.Author.ProfileImageID)

	second, err := f.images.Upload(ctx, UploadImageInput{OwnerID: alice.ID, Content: testutil.PNG(t, 32, 32)})
	require.NoError(t, err)
	require.NoError(t, f.images.SetProfileImage(ctx, alice.ID, second.ID))
	assert.False(t, f.blobs.Has(first.Key))
	assert.False(t, f.blobs.Has(first.ThumbKey))

	_, err = f.images.Read(ctx, first.ID, VariantOriginal)
	assertCode(t, err, models.CodeNotFound)
}

func TestResizeToFit(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 100, 400))
	assert.Equal(t, image.Rect(0, 0, 64, 256), resizeToFit(src, 256, 256).Bounds())

	small := image.NewRGBA(image.Rect(0, 0, 10, 10))
	assert.Equal(t, small.Bounds(), resizeToFit(small, 256, 256).Bounds())
}
