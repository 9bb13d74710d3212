package main

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func newFormContext(t *testing.T, values url.Values) echo.Context {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(values.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	return e.NewContext(req, httptest.NewRecorder())
}

func TestParseSignupForm(t *testing.T) {
	tests := []struct {
		name      string
		values    url.Values
		wantValid bool
		wantField string
	}{
		{
			name:      "valid",
			values:    url.Values{"username": {"alice"}, "email": {"a@x.com"}, "password": {"secret1"}},
			wantValid: true,
		},
		{
			name:      "missing username",
			values:    url.Values{"email": {"a@x.com"}, "password": {"secret1"}},
			wantField: "username",
		},
		{
			name:      "bad email",
			values:    url.Values{"username": {"alice"}, "email": {"not-an-address"}, "password": {"secret1"}},
			wantField: "email",
		},
		{
			name:      "short password",
			values:    url.Values{"username": {"alice"}, "email": {"a@x.com"}, "password": {"abc"}},
			wantField: "password",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := parseSignupForm(newFormContext(t, tt.values))
			assert.Equal(t, tt.wantValid, f.valid())
			if tt.wantField != "" {
				assert.Contains(t, f.Errors, tt.wantField)
			}
		})
	}
}

func TestParsePlaylistForm(t *testing.T) {
	f := parsePlaylistForm(newFormContext(t, url.Values{"name": {"Road Trip"}, "description": {"for long drives"}}))
	assert.True(t, f.valid())
	assert.Equal(t, "Road Trip", f.Name)

	f = parsePlaylistForm(newFormContext(t, url.Values{"description": {"no name"}}))
	assert.False(t, f.valid())
	assert.Contains(t, f.Errors, "name")
}

func TestParseSongForm(t *testing.T) {
	f := parseSongForm(newFormContext(t, url.Values{"title": {"Song A"}, "filename": {"song_a.mp3"}}))
	assert.True(t, f.valid())

	f = parseSongForm(newFormContext(t, url.Values{"title": {"Song A"}}))
	assert.False(t, f.valid())
	assert.Contains(t, f.Errors, "filename")
}

func TestParseAddSongForm(t *testing.T) {
	f := parseAddSongForm(newFormContext(t, url.Values{"song": {"42"}}))
	assert.True(t, f.valid())
	assert.EqualValues(t, 42, f.SongID)

	for _, raw := range []string{"", "abc", "-1", "0"} {
		f := parseAddSongForm(newFormContext(t, url.Values{"song": {raw}}))
		assert.False(t, f.valid(), "song=%q should not validate", raw)
	}
}

func TestProfileFormApply(t *testing.T) {
	user := &UserRow{
		Username:       "alice",
		Email:          "a@x.com",
		ImageURL:       defaultImageURL,
		HeaderImageURL: defaultHeaderImageURL,
	}
	f := parseProfileForm(newFormContext(t, url.Values{
		"username": {"alice2"},
		"email":    {"a2@x.com"},
		"bio":      {"hello"},
		"location": {"Lisbon"},
		"password": {"secret1"},
	}))
	assert.True(t, f.valid())

	f.apply(user)
	assert.Equal(t, "alice2", user.Username)
	assert.Equal(t, "a2@x.com", user.Email)
	assert.Equal(t, "hello", user.Bio)
	assert.Equal(t, "Lisbon", user.Location)
	// blank URLs keep the stored defaults
	assert.Equal(t, defaultImageURL, user.ImageURL)
	assert.Equal(t, defaultHeaderImageURL, user.HeaderImageURL)
}
