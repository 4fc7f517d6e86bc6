package testutil

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"strings"
	"testing"
	"time"

	"github.com/andriinero/inkspace-backend/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"gorm.io/gorm"
)

// PNG returns an encoded w x h PNG.
func PNG(t testing.TB, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, solid(w, h)); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

// JPEG returns an encoded w x h JPEG.
func JPEG(t testing.TB, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, solid(w, h), nil); err != nil {
		t.Fatalf("encode jpeg: %v", err)
	}
	return buf.Bytes()
}

func solid(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 200, A: 255})
		}
	}
	return img
}

// CreateUser inserts a user with the given username. The password hash is a
// placeholder; tests that log in create users through the auth service.
func CreateUser(t testing.TB, db *gorm.DB, username string) *models.User {
	t.Helper()
	u := &models.User{
		Username:   username,
		Email:      strings.ToLower(username) + "@example.com",
		Password:   "x",
		Role:       models.RoleUser,
		SignUpDate: time.Now().UTC(),
	}
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	return u
}

// CreateTopic inserts a topic.
func CreateTopic(t testing.TB, db *gorm.DB, name string) *models.Topic {
	t.Helper()
	topic := &models.Topic{Name: name}
	if err := db.Create(topic).Error; err != nil {
		t.Fatalf("create topic %s: %v", name, err)
	}
	return topic
}

// CreatePost inserts a post dated at. Body is filled to a valid length.
func CreatePost(t testing.TB, db *gorm.DB, author *models.User, topic *models.Topic, title string, at time.Time) *models.Post {
	t.Helper()
	p := &models.Post{
		UserID:  author.ID,
		TopicID: topic.ID,
		Title:   title,
		Body:    gofakeit.Paragraph(2, 4, 12, " "),
		Date:    at.UTC(),
	}
	if err := db.Create(p).Error; err != nil {
		t.Fatalf("create post %s: %v", title, err)
	}
	return p
}

// CreateComment inserts a comment on post.
func CreateComment(t testing.TB, db *gorm.DB, author *models.User, post *models.Post, body string) *models.Comment {
	t.Helper()
	c := &models.Comment{UserID: author.ID, PostID: post.ID, Body: body, Date: time.Now().UTC()}
	if err := db.Create(c).Error; err != nil {
		t.Fatalf("create comment: %v", err)
	}
	return c
}

// CreateImage inserts image metadata owned by owner.
func CreateImage(t testing.TB, db *gorm.DB, owner *models.User) *models.Image {
	t.Helper()
	key := fmt.Sprintf("img-%d-%d", owner.ID, time.Now().UnixNano())
	img := &models.Image{
		OwnerID:     owner.ID,
		Key:         key,
		ThumbKey:    key + "-thumb",
		ContentType: "image/png",
		SizeBytes:   10,
	}
	if err := db.Create(img).Error; err != nil {
		t.Fatalf("create image: %v", err)
	}
	return img
}
