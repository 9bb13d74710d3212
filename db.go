package main

import (
	"context"
	"database/sql"
	"time"
)

type UserRow struct {
	ID             int64     `db:"id"`
	Username       string    `db:"username"`
	Email          string    `db:"email"`
	PasswordHash   string    `db:"password_hash"`
	ImageURL       string    `db:"image_url"`
	HeaderImageURL string    `db:"header_image_url"`
	Bio            string    `db:"bio"`
	Location       string    `db:"location"`
	CreatedAt      time.Time `db:"created_at"`
}

type SongRow struct {
	ID        int64     `db:"id"`
	Title     string    `db:"title"`
	Artist    string    `db:"artist"`
	Filename  string    `db:"filename"`
	CreatedAt time.Time `db:"created_at"`
}

type PlaylistRow struct {
	ID          int64     `db:"id"`
	Name        string    `db:"name"`
	Description string    `db:"description"`
	CreatedAt   time.Time `db:"created_at"`
}

type PlaylistSongRow struct {
	ID         int64 `db:"id"`
	PlaylistID int64 `db:"playlist_id"`
	SongID     int64 `db:"song_id"`
}

// connOrTx is satisfied by *sqlx.DB, *sqlx.Conn and *sqlx.Tx, so the query
// helpers work the same inside and outside a transaction.
type connOrTx interface {
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}
