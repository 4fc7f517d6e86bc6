package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/andriinero/inkspace-backend/internal/config"
	"github.com/andriinero/inkspace-backend/internal/models"
	"github.com/andriinero/inkspace-backend/internal/testutil"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testPassword = "correct-horse-battery"

// testServer is a full app over in-memory SQLite and blob storage.
type testServer struct {
	t     *testing.T
	srv   *Server
	app   *fiber.App
	db    *gorm.DB
	blobs *testutil.MemoryBlobStore
}

func testConfig() *config.Config {
	return &config.Config{
		Env:                  "test",
		JWTSecret:            "test-secret-that-is-long-enough-123",
		JWTExpiry:            time.Hour,
		BcryptCost:           4,
		PageSize:             10,
		RequestTimeout:       5 * time.Second,
		AllowedOrigins:       "http://localhost:5173",
		ImageMaxUploadSizeMB: 2,
	}
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	t.Setenv("APP_ENV", "test")

	db := testutil.NewTestDB(t)
	blobs := testutil.NewMemoryBlobStore()
	srv, err := NewServerWithDeps(testConfig(), db, nil, blobs)
	require.NoError(t, err)

	return &testServer{t: t, srv: srv, app: srv.App(), db: db, blobs: blobs}
}

// do sends a JSON request. A nil body sends none; an empty token sends no
// Authorization header.
func (ts *testServer) do(method, path string, body any, token string) *http.Response {
	ts.t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(ts.t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := ts.app.Test(req, -1)
	require.NoError(ts.t, err)
	ts.t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

// signUp registers username and returns its id and a login token.
func (ts *testServer) signUp(username string) (uint, string) {
	ts.t.Helper()
	resp := ts.do(http.MethodPost, "/auth/sign-up", map[string]string{
		"username":              username,
		"password":              testPassword,
		"password_confirmation": testPassword,
		"email":                 username + "@example.com",
	}, "")
	require.Equal(ts.t, fiber.StatusCreated, resp.StatusCode)
	var created struct {
		ID uint `json:"id"`
	}
	decode(ts.t, resp, &created)

	return created.ID, ts.login(username)
}

func (ts *testServer) login(username string) string {
	ts.t.Helper()
	resp := ts.do(http.MethodPost, "/auth/login", map[string]string{
		"username": username,
		"password": testPassword,
	}, "")
	require.Equal(ts.t, fiber.StatusOK, resp.StatusCode)
	var body struct {
		Token string `json:"token"`
	}
	decode(ts.t, resp, &body)
	require.NotEmpty(ts.t, body.Token)
	return body.Token
}

func (ts *testServer) promote(id uint) {
	ts.t.Helper()
	require.NoError(ts.t, ts.db.Model(&models.User{}).Where("id = ?", id).Update("role", models.RoleAdmin).Error)
}

// createPost posts under topic and returns the new post.
func (ts *testServer) createPost(token, title, topic string) models.PostDetail {
	ts.t.Helper()
	resp := ts.do(http.MethodPost, "/api/posts", map[string]any{
		"title": title,
		"body":  longBody(title),
		"topic": topic,
	}, token)
	require.Equal(ts.t, fiber.StatusCreated, resp.StatusCode)
	var post models.PostDetail
	decode(ts.t, resp, &post)
	return post
}

func longBody(prefix string) string {
	return prefix + " " + strings.Repeat("lorem ipsum ", 12)
}

func decode(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

func decodeError(t *testing.T, resp *http.Response) models.ErrorResponse {
	t.Helper()
	var body models.ErrorResponse
	decode(t, resp, &body)
	return body
}

func fieldSet(body models.ErrorResponse) map[string]bool {
	set := make(map[string]bool, len(body.Fields))
	for _, f := range body.Fields {
		set[f.Field] = true
	}
	return set
}

func urlf(format string, args ...any) string {
	return fmt.Sprintf(format, args...)
}
