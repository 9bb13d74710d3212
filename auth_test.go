package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignupThenAuthenticate(t *testing.T) {
	dbx := newTestDB(t)
	ctx := context.Background()

	user, err := signupUser(ctx, dbx, "alice", "a@x.com", "secret1", "")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, "a@x.com", user.Email)
	assert.Equal(t, defaultImageURL, user.ImageURL)
	assert.Equal(t, defaultHeaderImageURL, user.HeaderImageURL)
	// only the hash is stored
	assert.NotEqual(t, "secret1", user.PasswordHash)
	assert.NotEmpty(t, user.PasswordHash)

	got, err := authenticateUser(ctx, dbx, "alice", "secret1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, user.ID, got.ID)
}

func TestAuthenticateFailuresAreIndistinguishable(t *testing.T) {
	dbx := newTestDB(t)
	ctx := context.Background()

	createTestUser(t, dbx, "alice", "a@x.com", "secret1")

	wrongPassword, err := authenticateUser(ctx, dbx, "alice", "not-the-password")
	require.NoError(t, err)
	unknownUser, err := authenticateUser(ctx, dbx, "nobody", "secret1")
	require.NoError(t, err)

	// both failure modes look identical to the caller
	assert.Nil(t, wrongPassword)
	assert.Nil(t, unknownUser)
}

func TestSignupDuplicateUsername(t *testing.T) {
	dbx := newTestDB(t)
	ctx := context.Background()

	_, err := signupUser(ctx, dbx, "alice", "a@x.com", "secret1", "")
	require.NoError(t, err)

	_, err = signupUser(ctx, dbx, "alice", "b@y.com", "secret2", "")
	require.ErrorIs(t, err, errDuplicateIdentity)

	stats, err := getSiteStats(ctx, dbx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Users, "no second record may be created")
}

func TestSignupDuplicateEmail(t *testing.T) {
	dbx := newTestDB(t)
	ctx := context.Background()

	_, err := signupUser(ctx, dbx, "alice", "a@x.com", "secret1", "")
	require.NoError(t, err)

	_, err = signupUser(ctx, dbx, "bob", "a@x.com", "secret2", "")
	require.ErrorIs(t, err, errDuplicateIdentity)
}

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := generatePasswordHash("secret1")
	require.NoError(t, err)

	ok, err := comparePasswordHash("secret1", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = comparePasswordHash("secret2", hash)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSignupKeepsSuppliedImageURL(t *testing.T) {
	dbx := newTestDB(t)

	user, err := signupUser(context.Background(), dbx, "carol", "c@x.com", "secret1", "/static/images/carol.png")
	require.NoError(t, err)
	assert.Equal(t, "/static/images/carol.png", user.ImageURL)
}
