package main

import (
	"fmt"

	"github.com/jmoiron/sqlx"
)

// sqliteSchema mirrors schema.sql for the dev/test driver. Statements are
// applied one by one at startup; CREATE TABLE IF NOT EXISTS keeps reopening a
// file-backed database cheap.
var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		username TEXT NOT NULL UNIQUE,
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		image_url TEXT NOT NULL DEFAULT '/static/images/default-pic.png',
		header_image_url TEXT NOT NULL DEFAULT '/static/images/signed-out-home.jpg',
		bio TEXT NOT NULL DEFAULT '',
		location TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS songs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		title TEXT NOT NULL,
		artist TEXT NOT NULL DEFAULT '',
		filename TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS playlists (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS playlists_songs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		playlist_id INTEGER NOT NULL REFERENCES playlists(id),
		song_id INTEGER NOT NULL REFERENCES songs(id),
		UNIQUE (playlist_id, song_id)
	)`,
}

func applySQLiteSchema(db *sqlx.DB) error {
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return fmt.Errorf("error enabling foreign keys: %w", err)
	}
	for _, stmt := range sqliteSchema {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("error applying sqlite schema: %w", err)
		}
	}
	return nil
}
