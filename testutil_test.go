package main

import (
	"context"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gorilla/sessions"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

// newTestDB returns an in-memory sqlite database with the schema applied.
// The pool is pinned to a single connection: every sqlite ":memory:"
// connection is its own database.
func newTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	dbx, err := sqlx.Open("sqlite", ":memory:")
	require.NoError(t, err)
	dbx.SetMaxOpenConns(1)
	require.NoError(t, applySQLiteSchema(dbx))
	t.Cleanup(func() { dbx.Close() })
	return dbx
}

// newTestServer points the package globals at a fresh database and cookie
// session store, then serves the full router. Tests that use it must not run
// in parallel.
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	db = newTestDB(t)
	sessionStore = sessions.NewCookieStore([]byte("test-secret"))
	srv := httptest.NewServer(newRouter())
	t.Cleanup(srv.Close)
	return srv
}

// newTestClient carries a cookie jar but never follows redirects, so tests
// can assert on Location headers.
func newTestClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func httpGet(t *testing.T, client *http.Client, url string) *http.Response {
	t.Helper()
	resp, err := client.Get(url)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func httpPostForm(t *testing.T, client *http.Client, url string, values url.Values) *http.Response {
	t.Helper()
	resp, err := client.PostForm(url, values)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b)
}

func signupViaHTTP(t *testing.T, client *http.Client, baseURL, username, email, password string) {
	t.Helper()
	resp := httpPostForm(t, client, baseURL+"/signup", url.Values{
		"username": {username},
		"email":    {email},
		"password": {password},
	})
	require.Equal(t, http.StatusFound, resp.StatusCode)
	require.Equal(t, "/", resp.Header.Get("Location"))
}

func createTestUser(t *testing.T, dbx *sqlx.DB, username, email, password string) *UserRow {
	t.Helper()
	user, err := signupUser(context.Background(), dbx, username, email, password, "")
	require.NoError(t, err)
	return user
}

func createTestSong(t *testing.T, dbx *sqlx.DB, title string) *SongRow {
	t.Helper()
	filename := strings.ToLower(strings.ReplaceAll(title, " ", "_")) + ".mp3"
	song, err := insertSong(context.Background(), dbx, title, "Test Artist", filename)
	require.NoError(t, err)
	return song
}

func createTestPlaylist(t *testing.T, dbx *sqlx.DB, name string) *PlaylistRow {
	t.Helper()
	playlist, err := insertPlaylist(context.Background(), dbx, name, "")
	require.NoError(t, err)
	return playlist
}
