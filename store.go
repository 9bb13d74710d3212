package main

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// Credential store

func getUserByID(ctx context.Context, db connOrTx, id int64) (*UserRow, error) {
	var row UserRow
	if err := db.GetContext(ctx, &row, "SELECT * FROM users WHERE `id` = ?", id); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("error Get user by id=%d: %w", id, err)
	}
	return &row, nil
}

func getUserByUsername(ctx context.Context, db connOrTx, username string) (*UserRow, error) {
	var row UserRow
	if err := db.GetContext(ctx, &row, "SELECT * FROM users WHERE `username` = ?", username); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("error Get user by username=%s: %w", username, err)
	}
	return &row, nil
}

// searchUsersByUsername lists all users, or the ones whose username contains q.
func searchUsersByUsername(ctx context.Context, db connOrTx, q string) ([]UserRow, error) {
	var rows []UserRow
	if q == "" {
		if err := db.SelectContext(ctx, &rows, "SELECT * FROM users ORDER BY `username`"); err != nil {
			return nil, fmt.Errorf("error Select users: %w", err)
		}
		return rows, nil
	}
	if err := db.SelectContext(
		ctx,
		&rows,
		"SELECT * FROM users WHERE `username` LIKE ? ORDER BY `username`",
		"%"+q+"%",
	); err != nil {
		return nil, fmt.Errorf("error Select users by username like %s: %w", q, err)
	}
	return rows, nil
}

func updateUserProfile(ctx context.Context, db connOrTx, user *UserRow) error {
	if _, err := db.ExecContext(
		ctx,
		"UPDATE users SET `username` = ?, `email` = ?, `image_url` = ?, `header_image_url` = ?, `bio` = ?, `location` = ? WHERE `id` = ?",
		user.Username, user.Email, user.ImageURL, user.HeaderImageURL, user.Bio, user.Location, user.ID,
	); err != nil {
		if isDuplicateEntry(err) {
			return errDuplicateIdentity
		}
		return fmt.Errorf("error Update users by id=%d: %w", user.ID, err)
	}
	return nil
}

func deleteUser(ctx context.Context, db connOrTx, id int64) error {
	if _, err := db.ExecContext(ctx, "DELETE FROM users WHERE `id` = ?", id); err != nil {
		return fmt.Errorf("error Delete users by id=%d: %w", id, err)
	}
	return nil
}

// Catalog store

func insertSong(ctx context.Context, db connOrTx, title, artist, filename string) (*SongRow, error) {
	res, err := db.ExecContext(
		ctx,
		"INSERT INTO songs (`title`, `artist`, `filename`, `created_at`) VALUES (?, ?, ?, ?)",
		title, artist, filename, time.Now(),
	)
	if err != nil {
		return nil, fmt.Errorf("error Insert songs by title=%s, filename=%s: %w", title, filename, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("error LastInsertId for songs: %w", err)
	}
	return getSongByID(ctx, db, id)
}

func getSongByID(ctx context.Context, db connOrTx, id int64) (*SongRow, error) {
	var row SongRow
	if err := db.GetContext(ctx, &row, "SELECT * FROM songs WHERE `id` = ?", id); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("error Get song by id=%d: %w", id, err)
	}
	return &row, nil
}

func listSongs(ctx context.Context, db connOrTx) ([]SongRow, error) {
	var rows []SongRow
	if err := db.SelectContext(ctx, &rows, "SELECT * FROM songs ORDER BY `id`"); err != nil {
		return nil, fmt.Errorf("error Select songs: %w", err)
	}
	return rows, nil
}

func insertPlaylist(ctx context.Context, db connOrTx, name, description string) (*PlaylistRow, error) {
	res, err := db.ExecContext(
		ctx,
		"INSERT INTO playlists (`name`, `description`, `created_at`) VALUES (?, ?, ?)",
		name, description, time.Now(),
	)
	if err != nil {
		return nil, fmt.Errorf("error Insert playlists by name=%s: %w", name, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("error LastInsertId for playlists: %w", err)
	}
	return getPlaylistByID(ctx, db, id)
}

func getPlaylistByID(ctx context.Context, db connOrTx, id int64) (*PlaylistRow, error) {
	var row PlaylistRow
	if err := db.GetContext(ctx, &row, "SELECT * FROM playlists WHERE `id` = ?", id); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("error Get playlist by id=%d: %w", id, err)
	}
	return &row, nil
}

func listPlaylists(ctx context.Context, db connOrTx) ([]PlaylistRow, error) {
	var rows []PlaylistRow
	if err := db.SelectContext(ctx, &rows, "SELECT * FROM playlists ORDER BY `id`"); err != nil {
		return nil, fmt.Errorf("error Select playlists: %w", err)
	}
	return rows, nil
}

func getSiteStats(ctx context.Context, db connOrTx) (*siteStats, error) {
	var stats siteStats
	if err := db.GetContext(ctx, &stats.Playlists, "SELECT COUNT(*) FROM playlists"); err != nil {
		return nil, fmt.Errorf("error Count playlists: %w", err)
	}
	if err := db.GetContext(ctx, &stats.Songs, "SELECT COUNT(*) FROM songs"); err != nil {
		return nil, fmt.Errorf("error Count songs: %w", err)
	}
	if err := db.GetContext(ctx, &stats.Users, "SELECT COUNT(*) FROM users"); err != nil {
		return nil, fmt.Errorf("error Count users: %w", err)
	}
	return &stats, nil
}

// Association store

// PlaylistMember is a song together with the id of the membership row that
// placed it in the playlist.
type PlaylistMember struct {
	SongRow
	MembershipID int64 `db:"membership_id"`
}

// SongPlacement is the reverse: a playlist together with the membership row
// that contains the song.
type SongPlacement struct {
	PlaylistRow
	MembershipID int64 `db:"membership_id"`
}

// addSongToPlaylist creates a membership row inside a single transaction.
// Both referenced rows must exist (errNotFound otherwise). The
// UNIQUE(playlist_id, song_id) constraint decides races between concurrent
// adds; the loser gets errAlreadyMember.
func addSongToPlaylist(ctx context.Context, db *sqlx.DB, playlistID, songID int64) (int64, error) {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("error BeginTxx: %w", err)
	}
	defer tx.Rollback()

	playlist, err := getPlaylistByID(ctx, tx, playlistID)
	if err != nil {
		return 0, err
	}
	if playlist == nil {
		return 0, errNotFound
	}
	song, err := getSongByID(ctx, tx, songID)
	if err != nil {
		return 0, err
	}
	if song == nil {
		return 0, errNotFound
	}

	res, err := tx.ExecContext(
		ctx,
		"INSERT INTO playlists_songs (`playlist_id`, `song_id`) VALUES (?, ?)",
		playlistID, songID,
	)
	if err != nil {
		if isDuplicateEntry(err) {
			return 0, errAlreadyMember
		}
		return 0, fmt.Errorf(
			"error Insert playlists_songs by playlist_id=%d, song_id=%d: %w",
			playlistID, songID, err,
		)
	}
	membershipID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("error LastInsertId for playlists_songs: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("error Commit: %w", err)
	}
	return membershipID, nil
}

// listMembersOfPlaylist returns the playlist's songs in insertion order
// (ascending membership id; the table has no explicit order column).
func listMembersOfPlaylist(ctx context.Context, db connOrTx, playlistID int64) ([]PlaylistMember, error) {
	var members []PlaylistMember
	if err := db.SelectContext(
		ctx,
		&members,
		"SELECT s.*, ps.id AS membership_id FROM playlists_songs ps JOIN songs s ON s.id = ps.song_id WHERE ps.playlist_id = ? ORDER BY ps.id",
		playlistID,
	); err != nil {
		return nil, fmt.Errorf("error Select members by playlist_id=%d: %w", playlistID, err)
	}
	return members, nil
}

func listPlaylistsContainingSong(ctx context.Context, db connOrTx, songID int64) ([]SongPlacement, error) {
	var placements []SongPlacement
	if err := db.SelectContext(
		ctx,
		&placements,
		"SELECT p.*, ps.id AS membership_id FROM playlists_songs ps JOIN playlists p ON p.id = ps.playlist_id WHERE ps.song_id = ? ORDER BY ps.id",
		songID,
	); err != nil {
		return nil, fmt.Errorf("error Select placements by song_id=%d: %w", songID, err)
	}
	return placements, nil
}

// listSongsNotInPlaylist returns the complement set used to populate the
// add-song choices, so the normal flow never offers a song twice.
func listSongsNotInPlaylist(ctx context.Context, db connOrTx, playlistID int64) ([]SongRow, error) {
	var rows []SongRow
	if err := db.SelectContext(
		ctx,
		&rows,
		"SELECT * FROM songs WHERE `id` NOT IN (SELECT song_id FROM playlists_songs WHERE playlist_id = ?) ORDER BY `id`",
		playlistID,
	); err != nil {
		return nil, fmt.Errorf("error Select songs not in playlist_id=%d: %w", playlistID, err)
	}
	return rows, nil
}

// deletePlaylist removes the playlist and its membership rows in one
// transaction. Memberships go first: the schema has no ON DELETE CASCADE.
func deletePlaylist(ctx context.Context, db *sqlx.DB, id int64) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error BeginTxx: %w", err)
	}
	defer tx.Rollback()

	playlist, err := getPlaylistByID(ctx, tx, id)
	if err != nil {
		return err
	}
	if playlist == nil {
		return errNotFound
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM playlists_songs WHERE `playlist_id` = ?", id); err != nil {
		return fmt.Errorf("error Delete playlists_songs by playlist_id=%d: %w", id, err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM playlists WHERE `id` = ?", id); err != nil {
		return fmt.Errorf("error Delete playlists by id=%d: %w", id, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("error Commit: %w", err)
	}
	return nil
}

// deleteSong mirrors deletePlaylist for the other side of the association.
func deleteSong(ctx context.Context, db *sqlx.DB, id int64) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error BeginTxx: %w", err)
	}
	defer tx.Rollback()

	song, err := getSongByID(ctx, tx, id)
	if err != nil {
		return err
	}
	if song == nil {
		return errNotFound
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM playlists_songs WHERE `song_id` = ?", id); err != nil {
		return fmt.Errorf("error Delete playlists_songs by song_id=%d: %w", id, err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM songs WHERE `id` = ?", id); err != nil {
		return fmt.Errorf("error Delete songs by id=%d: %w", id, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("error Commit: %w", err)
	}
	return nil
}
