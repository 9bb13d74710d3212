package main

import (
	"encoding/gob"
	"fmt"
	"net/http"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo/v4"
)

const (
	sessionCookieName = "soundshelf_session"
	sessionUserIDKey  = "user_id"
)

// flashMessage is a one-shot notice carried in the session across a redirect.
// Level is one of "success", "warning", "danger".
type flashMessage struct {
	Level   string
	Message string
}

func init() {
	// flashes are stored as interface values, so gob needs the concrete type
	gob.Register(flashMessage{})
}

// getSession goes through the gorilla registry, so repeated calls within one
// request return the same session instance and mutations accumulate.
func getSession(r *http.Request) (*sessions.Session, error) {
	session, err := sessionStore.Get(r, sessionCookieName)
	if err != nil {
		return nil, err
	}
	return session, nil
}

// currentUser resolves the session identity. The user row is loaded fresh on
// every request so profile edits are visible immediately; a session holding a
// stale id (e.g. the account was deleted) resolves to anonymous.
func currentUser(c echo.Context) (*UserRow, error) {
	sess, err := getSession(c.Request())
	if err != nil {
		return nil, fmt.Errorf("error getSession: %w", err)
	}
	v, ok := sess.Values[sessionUserIDKey]
	if !ok {
		return nil, nil
	}
	userID, ok := v.(int64)
	if !ok {
		return nil, nil
	}
	user, err := getUserByID(c.Request().Context(), db, userID)
	if err != nil {
		return nil, fmt.Errorf("error getUserByID: %w", err)
	}
	return user, nil
}

// establishSession transitions the session from Anonymous to
// Authenticated(userID). Only the numeric id is stored; the cookie itself is
// an opaque lookup key the server never interprets as data.
func establishSession(c echo.Context, userID int64) error {
	sess, err := getSession(c.Request())
	if err != nil {
		return fmt.Errorf("error getSession: %w", err)
	}
	sess.Values[sessionUserIDKey] = userID
	if err := sess.Save(c.Request(), c.Response()); err != nil {
		return fmt.Errorf("error Save session: %w", err)
	}
	return nil
}

// clearSession drops the stored identity but keeps the session record alive
// so a flash can still ride it to the next request.
func clearSession(c echo.Context) error {
	sess, err := getSession(c.Request())
	if err != nil {
		return fmt.Errorf("error getSession: %w", err)
	}
	delete(sess.Values, sessionUserIDKey)
	if err := sess.Save(c.Request(), c.Response()); err != nil {
		return fmt.Errorf("error Save session: %w", err)
	}
	return nil
}

func addFlash(c echo.Context, level, message string) error {
	sess, err := getSession(c.Request())
	if err != nil {
		return fmt.Errorf("error getSession: %w", err)
	}
	sess.AddFlash(flashMessage{Level: level, Message: message})
	if err := sess.Save(c.Request(), c.Response()); err != nil {
		return fmt.Errorf("error Save session: %w", err)
	}
	return nil
}

// takeFlashes drains pending flashes; reading them mutates the session, so it
// is saved again when anything was read.
func takeFlashes(c echo.Context) ([]flashMessage, error) {
	sess, err := getSession(c.Request())
	if err != nil {
		return nil, fmt.Errorf("error getSession: %w", err)
	}
	raw := sess.Flashes()
	if len(raw) > 0 {
		if err := sess.Save(c.Request(), c.Response()); err != nil {
			return nil, fmt.Errorf("error Save session: %w", err)
		}
	}
	flashes := make([]flashMessage, 0, len(raw))
	for _, v := range raw {
		if f, ok := v.(flashMessage); ok {
			flashes = append(flashes, f)
		}
	}
	return flashes, nil
}

// requireUser resolves the authenticated user for a protected handler. When
// the session is anonymous it writes the soft redirect to the homepage with a
// warning and returns (nil, nil); this is policy, not a security boundary, so
// no 401 is ever produced. Callers bail out when user is nil.
func requireUser(c echo.Context) (*UserRow, error) {
	user, err := currentUser(c)
	if err != nil {
		return nil, err
	}
	if user == nil {
		if err := addFlash(c, "danger", "You are not authorized"); err != nil {
			return nil, err
		}
		return nil, c.Redirect(http.StatusFound, "/")
	}
	return user, nil
}
