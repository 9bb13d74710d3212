package main

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"
)

const (
	bcryptCost = 11

	defaultImageURL       = "/static/images/default-pic.png"
	defaultHeaderImageURL = "/static/images/signed-out-home.jpg"
)

func generatePasswordHash(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("error bcrypt.GenerateFromPassword: %w", err)
	}
	return string(hashed), nil
}

func comparePasswordHash(password, passwordHash string) (bool, error) {
	if err := bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(password)); err != nil {
		if err == bcrypt.ErrMismatchedHashAndPassword {
			return false, nil
		}
		return false, fmt.Errorf("error bcrypt.CompareHashAndPassword: %w", err)
	}
	return true, nil
}

// signupUser hashes the password and inserts a new user. Uniqueness of
// username and email is left to the store constraints rather than pre-checked,
// so two concurrent signups cannot race past a lookup; a violation surfaces as
// errDuplicateIdentity. The caller decides whether to establish a session.
func signupUser(ctx context.Context, db connOrTx, username, email, password, imageURL string) (*UserRow, error) {
	passwordHash, err := generatePasswordHash(password)
	if err != nil {
		return nil, fmt.Errorf("error generatePasswordHash: %w", err)
	}

	if imageURL == "" {
		imageURL = defaultImageURL
	}

	res, err := db.ExecContext(
		ctx,
		"INSERT INTO users (`username`, `email`, `password_hash`, `image_url`, `header_image_url`, `bio`, `location`, `created_at`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		username, email, passwordHash, imageURL, defaultHeaderImageURL, "", "", time.Now(),
	)
	if err != nil {
		if isDuplicateEntry(err) {
			return nil, errDuplicateIdentity
		}
		return nil, fmt.Errorf(
			"error Insert users by username=%s, email=%s: %w",
			username, email, err,
		)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("error LastInsertId for users: %w", err)
	}
	return getUserByID(ctx, db, id)
}

// authenticateUser returns the user only when both the username lookup and the
// password comparison succeed. Any failure yields (nil, nil): an unknown
// username and a wrong password are indistinguishable to the caller.
func authenticateUser(ctx context.Context, db connOrTx, username, password string) (*UserRow, error) {
	user, err := getUserByUsername(ctx, db, username)
	if err != nil {
		return nil, fmt.Errorf("error getUserByUsername: %w", err)
	}
	if user == nil {
		return nil, nil
	}

	matched, err := comparePasswordHash(password, user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("error comparePasswordHash: %w", err)
	}
	if !matched {
		return nil, nil
	}
	return user, nil
}
