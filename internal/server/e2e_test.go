package server

import (
	"net/http"
	"testing"

	"github.com/andriinero/inkspace-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEndToEnd_TopicFeedAndIgnoreList(t *testing.T) {
	ts := newTestServer(t)
	aliceID, alice := ts.signUp("alice")
	bobID, bob := ts.signUp("bob")

	resp := ts.do(http.MethodPost, "/api/topics", map[string]string{"name": "rust"}, alice)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	post := ts.createPost(alice, "Hello", "rust")
	assert.Equal(t, aliceID, post.Author.ID)

	feed := func(query string) []models.PostSummary {
		resp := ts.do(http.MethodGet, "/api/posts"+query, nil, "")
		require.Equal(t, fiber.StatusOK, resp.StatusCode, query)
		var posts []models.PostSummary
		decode(t, resp, &posts)
		return posts
	}

	byTopic := feed("?topic=rust")
	require.Len(t, byTopic, 1)
	assert.Equal(t, post.ID, byTopic[0].ID)

	resp = ts.do(http.MethodPost, "/api/profile/ignored-users", map[string]uint{"id": aliceID}, bob)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	assert.Empty(t, feed(urlf("?topic=rust&ignoreList=%d", bobID)))
	assert.Len(t, feed(urlf("?topic=rust&ignoreList=%d", aliceID)), 1)
}
