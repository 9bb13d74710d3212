package main

import (
	"fmt"
	"html/template"
	"io"

	"github.com/labstack/echo/v4"
)

type renderer struct {
	templates *template.Template
}

func (t *renderer) Render(w io.Writer, name string, data interface{}, c echo.Context) error {
	return t.templates.ExecuteTemplate(w, name, data)
}

// page is the payload every template receives.
type page struct {
	LoggedIn    bool
	CurrentUser *UserRow
	Flashes     []flashMessage
	Data        interface{}
}

type siteStats struct {
	Playlists int
	Songs     int
	Users     int
}

// renderPage drains pending flashes into the response so messages queued
// earlier in the same request (e.g. a failed signup) show up immediately.
func renderPage(c echo.Context, status int, name string, user *UserRow, data interface{}) error {
	flashes, err := takeFlashes(c)
	if err != nil {
		return fmt.Errorf("error takeFlashes: %w", err)
	}
	return c.Render(status, name, &page{
		LoggedIn:    user != nil,
		CurrentUser: user,
		Flashes:     flashes,
		Data:        data,
	})
}
