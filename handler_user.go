package main

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
)

func serverError(c echo.Context, op string, err error) error {
	c.Logger().Errorf("error %s: %s", op, err)
	return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
}

func parseIDParam(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusNotFound, "not found")
	}
	return id, nil
}

// GET /

func homeHandler(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return serverError(c, "currentUser", err)
	}
	if user == nil {
		return renderPage(c, http.StatusOK, "index.html", nil, nil)
	}

	stats, err := getSiteStats(c.Request().Context(), db)
	if err != nil {
		return serverError(c, "getSiteStats", err)
	}
	return renderPage(c, http.StatusOK, "home.html", user, stats)
}

// GET /signup, POST /signup

func signupPageHandler(c echo.Context) error {
	return renderPage(c, http.StatusOK, "signup.html", nil, &signupForm{Errors: map[string]string{}})
}

func signupHandler(c echo.Context) error {
	form := parseSignupForm(c)
	if !form.valid() {
		return renderPage(c, http.StatusOK, "signup.html", nil, form)
	}

	user, err := signupUser(c.Request().Context(), db, form.Username, form.Email, form.Password, form.ImageURL)
	if err != nil {
		if errors.Is(err, errDuplicateIdentity) {
			if err := addFlash(c, "danger", "Username or e-mail already taken"); err != nil {
				return serverError(c, "addFlash", err)
			}
			return renderPage(c, http.StatusOK, "signup.html", nil, form)
		}
		return serverError(c, "signupUser", err)
	}

	// the new identity is logged in right away, as the signup flow promises
	if err := establishSession(c, user.ID); err != nil {
		return serverError(c, "establishSession", err)
	}
	return c.Redirect(http.StatusFound, "/")
}

// GET /login, POST /login

func loginPageHandler(c echo.Context) error {
	return renderPage(c, http.StatusOK, "login.html", nil, &loginForm{Errors: map[string]string{}})
}

func loginHandler(c echo.Context) error {
	form := parseLoginForm(c)
	if !form.valid() {
		return renderPage(c, http.StatusOK, "login.html", nil, form)
	}

	user, err := authenticateUser(c.Request().Context(), db, form.Username, form.Password)
	if err != nil {
		return serverError(c, "authenticateUser", err)
	}
	if user == nil {
		// deliberately generic: does not reveal whether the username exists
		if err := addFlash(c, "danger", "Invalid credentials."); err != nil {
			return serverError(c, "addFlash", err)
		}
		return renderPage(c, http.StatusOK, "login.html", nil, form)
	}

	if err := establishSession(c, user.ID); err != nil {
		return serverError(c, "establishSession", err)
	}
	if err := addFlash(c, "success", fmt.Sprintf("Hello, %s!", user.Username)); err != nil {
		return serverError(c, "addFlash", err)
	}
	return c.Redirect(http.StatusFound, "/")
}

// GET /logout

func logoutHandler(c echo.Context) error {
	user, err := requireUser(c)
	if err != nil || user == nil {
		return err
	}
	if err := clearSession(c); err != nil {
		return serverError(c, "clearSession", err)
	}
	if err := addFlash(c, "warning", "You are logged out!"); err != nil {
		return serverError(c, "addFlash", err)
	}
	return c.Redirect(http.StatusFound, "/login")
}

// GET /users

func listUsersHandler(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return serverError(c, "currentUser", err)
	}

	q := c.QueryParam("q")
	users, err := searchUsersByUsername(c.Request().Context(), db, q)
	if err != nil {
		return serverError(c, "searchUsersByUsername", err)
	}

	return renderPage(c, http.StatusOK, "users.html", user, struct {
		Users []UserRow
		Query string
	}{Users: users, Query: q})
}

// GET /users/:id

func showUserHandler(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return serverError(c, "currentUser", err)
	}

	id, err := parseIDParam(c)
	if err != nil {
		return err
	}
	profile, err := getUserByID(c.Request().Context(), db, id)
	if err != nil {
		return serverError(c, "getUserByID", err)
	}
	if profile == nil {
		return echo.NewHTTPError(http.StatusNotFound, "user not found")
	}

	return renderPage(c, http.StatusOK, "user.html", user, struct {
		Profile *UserRow
	}{Profile: profile})
}

// GET /users/profile, POST /users/profile

func profilePageHandler(c echo.Context) error {
	user, err := requireUser(c)
	if err != nil || user == nil {
		return err
	}
	return renderPage(c, http.StatusOK, "edit_profile.html", user, profileFormFromUser(user))
}

func profileHandler(c echo.Context) error {
	user, err := requireUser(c)
	if err != nil || user == nil {
		return err
	}

	form := parseProfileForm(c)
	if !form.valid() {
		return renderPage(c, http.StatusOK, "edit_profile.html", user, form)
	}

	ctx := c.Request().Context()

	// re-authenticate with the current password before touching the record
	verified, err := authenticateUser(ctx, db, user.Username, form.Password)
	if err != nil {
		return serverError(c, "authenticateUser", err)
	}
	if verified == nil {
		if err := addFlash(c, "danger", "Bad password"); err != nil {
			return serverError(c, "addFlash", err)
		}
		return renderPage(c, http.StatusOK, "edit_profile.html", user, form)
	}

	form.apply(user)
	if err := updateUserProfile(ctx, db, user); err != nil {
		if errors.Is(err, errDuplicateIdentity) {
			if err := addFlash(c, "danger", "Username or e-mail already taken"); err != nil {
				return serverError(c, "addFlash", err)
			}
			return renderPage(c, http.StatusOK, "edit_profile.html", user, form)
		}
		return serverError(c, "updateUserProfile", err)
	}

	return c.Redirect(http.StatusFound, fmt.Sprintf("/users/%d", user.ID))
}

// POST /users/delete

func deleteUserHandler(c echo.Context) error {
	user, err := requireUser(c)
	if err != nil || user == nil {
		return err
	}

	// logout first so the session never points at a half-deleted account
	if err := clearSession(c); err != nil {
		return serverError(c, "clearSession", err)
	}
	if err := deleteUser(c.Request().Context(), db, user.ID); err != nil {
		return serverError(c, "deleteUser", err)
	}

	return c.Redirect(http.StatusFound, "/signup")
}
