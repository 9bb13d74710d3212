package main

import (
	"net/mail"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/labstack/echo/v4"
)

// One explicit parse-and-validate function per entity, replacing the
// reflective form mapping the templates used to rely on. Each form carries a
// field-keyed error map; an empty map means the form is valid and the handler
// may hand the values to a store.

type signupForm struct {
	Username string
	Email    string
	Password string
	ImageURL string
	Errors   map[string]string
}

func parseSignupForm(c echo.Context) *signupForm {
	f := &signupForm{
		Username: strings.TrimSpace(c.FormValue("username")),
		Email:    strings.TrimSpace(c.FormValue("email")),
		Password: c.FormValue("password"),
		ImageURL: strings.TrimSpace(c.FormValue("image_url")),
		Errors:   map[string]string{},
	}
	validateUsername(f.Username, f.Errors)
	validateEmail(f.Email, f.Errors)
	validatePassword(f.Password, f.Errors)
	return f
}

func (f *signupForm) valid() bool { return len(f.Errors) == 0 }

type loginForm struct {
	Username string
	Password string
	Errors   map[string]string
}

func parseLoginForm(c echo.Context) *loginForm {
	f := &loginForm{
		Username: strings.TrimSpace(c.FormValue("username")),
		Password: c.FormValue("password"),
		Errors:   map[string]string{},
	}
	if f.Username == "" {
		f.Errors["username"] = "Username is required"
	}
	validatePassword(f.Password, f.Errors)
	return f
}

func (f *loginForm) valid() bool { return len(f.Errors) == 0 }

type profileForm struct {
	Username       string
	Email          string
	ImageURL       string
	HeaderImageURL string
	Bio            string
	Location       string
	Password       string
	Errors         map[string]string
}

// profileFormFromUser pre-fills the edit form from the stored row. The
// password field stays empty: it asks for the current password, which is
// re-verified before any update is applied.
func profileFormFromUser(u *UserRow) *profileForm {
	return &profileForm{
		Username:       u.Username,
		Email:          u.Email,
		ImageURL:       u.ImageURL,
		HeaderImageURL: u.HeaderImageURL,
		Bio:            u.Bio,
		Location:       u.Location,
		Errors:         map[string]string{},
	}
}

func parseProfileForm(c echo.Context) *profileForm {
	f := &profileForm{
		Username:       strings.TrimSpace(c.FormValue("username")),
		Email:          strings.TrimSpace(c.FormValue("email")),
		ImageURL:       strings.TrimSpace(c.FormValue("image_url")),
		HeaderImageURL: strings.TrimSpace(c.FormValue("header_image_url")),
		Bio:            strings.TrimSpace(c.FormValue("bio")),
		Location:       strings.TrimSpace(c.FormValue("location")),
		Password:       c.FormValue("password"),
		Errors:         map[string]string{},
	}
	validateUsername(f.Username, f.Errors)
	validateEmail(f.Email, f.Errors)
	if f.Password == "" {
		f.Errors["password"] = "Current password is required to save changes"
	}
	return f
}

func (f *profileForm) valid() bool { return len(f.Errors) == 0 }

// apply copies the editable fields onto the row. Empty image URLs keep the
// stored values so clearing a field does not wipe the defaults.
func (f *profileForm) apply(u *UserRow) {
	u.Username = f.Username
	u.Email = f.Email
	if f.ImageURL != "" {
		u.ImageURL = f.ImageURL
	}
	if f.HeaderImageURL != "" {
		u.HeaderImageURL = f.HeaderImageURL
	}
	u.Bio = f.Bio
	u.Location = f.Location
}

type playlistForm struct {
	Name        string
	Description string
	Errors      map[string]string
}

func parsePlaylistForm(c echo.Context) *playlistForm {
	f := &playlistForm{
		Name:        strings.TrimSpace(c.FormValue("name")),
		Description: strings.TrimSpace(c.FormValue("description")),
		Errors:      map[string]string{},
	}
	if f.Name == "" {
		f.Errors["name"] = "Name is required"
	} else if utf8.RuneCountInString(f.Name) > 191 {
		f.Errors["name"] = "Name must be 191 characters or fewer"
	}
	return f
}

func (f *playlistForm) valid() bool { return len(f.Errors) == 0 }

type songForm struct {
	Title    string
	Artist   string
	Filename string
	Errors   map[string]string
}

func parseSongForm(c echo.Context) *songForm {
	f := &songForm{
		Title:    strings.TrimSpace(c.FormValue("title")),
		Artist:   strings.TrimSpace(c.FormValue("artist")),
		Filename: strings.TrimSpace(c.FormValue("filename")),
		Errors:   map[string]string{},
	}
	if f.Title == "" {
		f.Errors["title"] = "Title is required"
	} else if utf8.RuneCountInString(f.Title) > 191 {
		f.Errors["title"] = "Title must be 191 characters or fewer"
	}
	if f.Filename == "" {
		f.Errors["filename"] = "Filename is required"
	}
	return f
}

func (f *songForm) valid() bool { return len(f.Errors) == 0 }

type addSongForm struct {
	SongID int64
	Errors map[string]string
}

func parseAddSongForm(c echo.Context) *addSongForm {
	f := &addSongForm{Errors: map[string]string{}}
	raw := c.FormValue("song")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		f.Errors["song"] = "Choose a song to add"
		return f
	}
	f.SongID = id
	return f
}

func (f *addSongForm) valid() bool { return len(f.Errors) == 0 }

func validateUsername(username string, errs map[string]string) {
	if username == "" {
		errs["username"] = "Username is required"
	} else if utf8.RuneCountInString(username) > 191 {
		errs["username"] = "Username must be 191 characters or fewer"
	}
}

func validateEmail(email string, errs map[string]string) {
	if email == "" {
		errs["email"] = "E-mail is required"
		return
	}
	if _, err := mail.ParseAddress(email); err != nil {
		errs["email"] = "Invalid e-mail address"
	}
}

func validatePassword(password string, errs map[string]string) {
	if utf8.RuneCountInString(password) < 6 {
		errs["password"] = "Password must be at least 6 characters"
	}
}
