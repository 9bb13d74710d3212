package main

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
)

// GET /playlists

func listPlaylistsHandler(c echo.Context) error {
	user, err := requireUser(c)
	if err != nil || user == nil {
		return err
	}

	playlists, err := listPlaylists(c.Request().Context(), db)
	if err != nil {
		return serverError(c, "listPlaylists", err)
	}
	return renderPage(c, http.StatusOK, "playlists.html", user, struct {
		Playlists []PlaylistRow
	}{Playlists: playlists})
}

// GET /playlists/:id

func showPlaylistHandler(c echo.Context) error {
	user, err := requireUser(c)
	if err != nil || user == nil {
		return err
	}

	id, err := parseIDParam(c)
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	playlist, err := getPlaylistByID(ctx, db, id)
	if err != nil {
		return serverError(c, "getPlaylistByID", err)
	}
	if playlist == nil {
		return echo.NewHTTPError(http.StatusNotFound, "playlist not found")
	}

	members, err := listMembersOfPlaylist(ctx, db, playlist.ID)
	if err != nil {
		return serverError(c, "listMembersOfPlaylist", err)
	}

	return renderPage(c, http.StatusOK, "playlist.html", user, struct {
		Playlist *PlaylistRow
		Members  []PlaylistMember
	}{Playlist: playlist, Members: members})
}

// GET /playlists/add, POST /playlists/add

func addPlaylistPageHandler(c echo.Context) error {
	user, err := requireUser(c)
	if err != nil || user == nil {
		return err
	}
	return renderPage(c, http.StatusOK, "new_playlist.html", user, &playlistForm{Errors: map[string]string{}})
}

func addPlaylistHandler(c echo.Context) error {
	user, err := requireUser(c)
	if err != nil || user == nil {
		return err
	}

	form := parsePlaylistForm(c)
	if !form.valid() {
		return renderPage(c, http.StatusOK, "new_playlist.html", user, form)
	}

	playlist, err := insertPlaylist(c.Request().Context(), db, form.Name, form.Description)
	if err != nil {
		return serverError(c, "insertPlaylist", err)
	}

	if err := addFlash(c, "success", fmt.Sprintf("Added %s", playlist.Name)); err != nil {
		return serverError(c, "addFlash", err)
	}
	return c.Redirect(http.StatusFound, "/playlists/add")
}

// POST /playlists/:id/delete

func deletePlaylistHandler(c echo.Context) error {
	user, err := requireUser(c)
	if err != nil || user == nil {
		return err
	}

	id, err := parseIDParam(c)
	if err != nil {
		return err
	}
	if err := deletePlaylist(c.Request().Context(), db, id); err != nil {
		if errors.Is(err, errNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "playlist not found")
		}
		return serverError(c, "deletePlaylist", err)
	}

	if err := addFlash(c, "warning", "Playlist deleted"); err != nil {
		return serverError(c, "addFlash", err)
	}
	return c.Redirect(http.StatusFound, "/playlists")
}

// GET /playlists/:id/add-song, POST /playlists/:id/add-song

func addSongToPlaylistPageHandler(c echo.Context) error {
	user, err := requireUser(c)
	if err != nil || user == nil {
		return err
	}

	id, err := parseIDParam(c)
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	playlist, err := getPlaylistByID(ctx, db, id)
	if err != nil {
		return serverError(c, "getPlaylistByID", err)
	}
	if playlist == nil {
		return echo.NewHTTPError(http.StatusNotFound, "playlist not found")
	}

	choices, err := listSongsNotInPlaylist(ctx, db, playlist.ID)
	if err != nil {
		return serverError(c, "listSongsNotInPlaylist", err)
	}

	return renderPage(c, http.StatusOK, "add_song_to_playlist.html", user, struct {
		Playlist *PlaylistRow
		Choices  []SongRow
		Form     *addSongForm
	}{Playlist: playlist, Choices: choices, Form: &addSongForm{Errors: map[string]string{}}})
}

func addSongToPlaylistHandler(c echo.Context) error {
	user, err := requireUser(c)
	if err != nil || user == nil {
		return err
	}

	id, err := parseIDParam(c)
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	playlist, err := getPlaylistByID(ctx, db, id)
	if err != nil {
		return serverError(c, "getPlaylistByID", err)
	}
	if playlist == nil {
		return echo.NewHTTPError(http.StatusNotFound, "playlist not found")
	}

	form := parseAddSongForm(c)
	if !form.valid() {
		choices, err := listSongsNotInPlaylist(ctx, db, playlist.ID)
		if err != nil {
			return serverError(c, "listSongsNotInPlaylist", err)
		}
		return renderPage(c, http.StatusOK, "add_song_to_playlist.html", user, struct {
			Playlist *PlaylistRow
			Choices  []SongRow
			Form     *addSongForm
		}{Playlist: playlist, Choices: choices, Form: form})
	}

	if _, err := addSongToPlaylist(ctx, db, playlist.ID, form.SongID); err != nil {
		switch {
		case errors.Is(err, errNotFound):
			return echo.NewHTTPError(http.StatusNotFound, "song not found")
		case errors.Is(err, errAlreadyMember):
			if err := addFlash(c, "danger", "That song is already in the playlist"); err != nil {
				return serverError(c, "addFlash", err)
			}
			return c.Redirect(http.StatusFound, fmt.Sprintf("/playlists/%d/add-song", playlist.ID))
		default:
			return serverError(c, "addSongToPlaylist", err)
		}
	}

	return c.Redirect(http.StatusFound, fmt.Sprintf("/playlists/%d", playlist.ID))
}

// GET /songs

func listSongsHandler(c echo.Context) error {
	user, err := requireUser(c)
	if err != nil || user == nil {
		return err
	}

	songs, err := listSongs(c.Request().Context(), db)
	if err != nil {
		return serverError(c, "listSongs", err)
	}
	return renderPage(c, http.StatusOK, "songs.html", user, struct {
		Songs []SongRow
	}{Songs: songs})
}

// GET /songs/:id

func showSongHandler(c echo.Context) error {
	user, err := requireUser(c)
	if err != nil || user == nil {
		return err
	}

	id, err := parseIDParam(c)
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	song, err := getSongByID(ctx, db, id)
	if err != nil {
		return serverError(c, "getSongByID", err)
	}
	if song == nil {
		return echo.NewHTTPError(http.StatusNotFound, "song not found")
	}

	placements, err := listPlaylistsContainingSong(ctx, db, song.ID)
	if err != nil {
		return serverError(c, "listPlaylistsContainingSong", err)
	}

	return renderPage(c, http.StatusOK, "song.html", user, struct {
		Song       *SongRow
		Placements []SongPlacement
	}{Song: song, Placements: placements})
}

// GET /songs/add, POST /songs/add

func addSongPageHandler(c echo.Context) error {
	user, err := requireUser(c)
	if err != nil || user == nil {
		return err
	}
	return renderPage(c, http.StatusOK, "new_song.html", user, &songForm{Errors: map[string]string{}})
}

func addSongHandler(c echo.Context) error {
	user, err := requireUser(c)
	if err != nil || user == nil {
		return err
	}

	form := parseSongForm(c)
	if !form.valid() {
		return renderPage(c, http.StatusOK, "new_song.html", user, form)
	}

	song, err := insertSong(c.Request().Context(), db, form.Title, form.Artist, form.Filename)
	if err != nil {
		return serverError(c, "insertSong", err)
	}

	if err := addFlash(c, "success", fmt.Sprintf("Added %s", song.Title)); err != nil {
		return serverError(c, "addFlash", err)
	}
	return c.Redirect(http.StatusFound, "/songs/add")
}

// POST /songs/:id/delete

func deleteSongHandler(c echo.Context) error {
	user, err := requireUser(c)
	if err != nil || user == nil {
		return err
	}

	id, err := parseIDParam(c)
	if err != nil {
		return err
	}
	if err := deleteSong(c.Request().Context(), db, id); err != nil {
		if errors.Is(err, errNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "song not found")
		}
		return serverError(c, "deleteSong", err)
	}

	if err := addFlash(c, "warning", "Song deleted"); err != nil {
		return serverError(c, "addFlash", err)
	}
	return c.Redirect(http.StatusFound, "/songs")
}

// GET /search
// iTunes search integration. TODO: call the iTunes lookup API and offer the
// results as importable songs; for now this renders the dashboard like the
// homepage does.

func searchHandler(c echo.Context) error {
	user, err := requireUser(c)
	if err != nil || user == nil {
		return err
	}

	stats, err := getSiteStats(c.Request().Context(), db)
	if err != nil {
		return serverError(c, "getSiteStats", err)
	}
	return renderPage(c, http.StatusOK, "home.html", user, stats)
}
