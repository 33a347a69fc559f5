package web

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"distsocial/internal/logging"
	"distsocial/internal/server/storage"
)

func newWebServer(t *testing.T) (*Server, *storage.Store) {
	t.Helper()
	store, err := storage.Open(filepath.Join(t.TempDir(), "store"))
	require.NoError(t, err)
	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	s, err := NewServer("127.0.0.1:0", logger, store)
	require.NoError(t, err)
	return s, store
}

func TestIndex_RedirectsToPosts(t *testing.T) {
	s, _ := newWebServer(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/posts", rec.Header().Get("Location"))
}

func TestPosts_ListsFeedNewestFirst(t *testing.T) {
	s, store := newWebServer(t)
	_, _, err := store.GetOrCreateUser("alice", "p1")
	require.NoError(t, err)
	require.NoError(t, store.CreatePost("alice", "older", "100.000000"))
	require.NoError(t, store.CreatePost("alice", "newer", "200.000000"))

	req := httptest.NewRequest(http.MethodGet, "/posts", nil)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "newer")
	assert.Contains(t, body, "older")
	assert.Less(t, strings.Index(body, "newer"), strings.Index(body, "older"))
}

func TestPosts_EmptyFeed(t *testing.T) {
	s, _ := newWebServer(t)

	req := httptest.NewRequest(http.MethodGet, "/posts", nil)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "No posts yet.")
}

func TestProfile(t *testing.T) {
	s, store := newWebServer(t)
	_, _, err := store.GetOrCreateUser("alice", "p1")
	require.NoError(t, err)
	require.NoError(t, store.UpdateBio("alice", "hello there", "100.000000"))
	require.NoError(t, store.CreatePost("alice", "my post", "200.000000"))

	req := httptest.NewRequest(http.MethodGet, "/user/alice", nil)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "alice")
	assert.Contains(t, body, "hello there")
	assert.Contains(t, body, "my post")
	// the password never leaks into the page
	assert.NotContains(t, body, "p1")
}

func TestProfile_UnknownUser(t *testing.T) {
	s, _ := newWebServer(t)

	req := httptest.NewRequest(http.MethodGet, "/user/ghost", nil)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "User not found...")
}
