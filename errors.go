package main

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
)

var (
	// errNotFound is returned when a referenced id is absent from its store.
	errNotFound = errors.New("not found")
	// errDuplicateIdentity is a username or email unique-constraint violation.
	errDuplicateIdentity = errors.New("username or email already taken")
	// errAlreadyMember means the (playlist, song) pair already exists.
	errAlreadyMember = errors.New("song is already in the playlist")
)

// isDuplicateEntry reports whether err is a unique-constraint violation from
// either backing driver: MySQL error 1062 in production, or the sqlite
// constraint message in dev/test mode.
func isDuplicateEntry(err error) bool {
	if err == nil {
		return false
	}
	var merr *mysql.MySQLError
	if errors.As(err, &merr) {
		return merr.Number == 1062
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
