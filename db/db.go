package db

import (
	"database/sql"
	"fmt"
	"math/rand"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/oklog/ulid/v2"

	"github.com/hum-fm/crate/models"
)

// DB is a wrapper around sql.DB
type DB struct {
	*sql.DB

	entropyMu sync.Mutex
	entropy   *ulid.MonotonicEntropy
}

// New creates a new database connection
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	if err = conn.Ping(); err != nil {
		return nil, err
	}

	return &DB{
		DB:      conn,
		entropy: ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0),
	}, nil
}

// Initialize sets up the database tables
func (db *DB) Initialize() error {
	_, err := db.Exec(`
	CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		username TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		created_at TIMESTAMP
	)`)
	if err != nil {
		return err
	}

	_, err = db.Exec(`
	CREATE TABLE IF NOT EXISTS playlists (
		id TEXT PRIMARY KEY,
		user_id INTEGER NOT NULL,
		title TEXT NOT NULL,
		created_at TIMESTAMP,
		updated_at TIMESTAMP,
		FOREIGN KEY (user_id) REFERENCES users(id)
	)`)
	if err != nil {
		return err
	}

	// Tracks live in their own rows so concurrent appends to the same
	// playlist are independent INSERTs, not rewrites of the whole list.
	_, err = db.Exec(`
	CREATE TABLE IF NOT EXISTS playlist_tracks (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		playlist_id TEXT NOT NULL,
		position INTEGER NOT NULL,
		name TEXT NOT NULL,
		artist TEXT NOT NULL,
		album TEXT,
		mbid TEXT,
		fallback_key TEXT,
		image_url TEXT,
		FOREIGN KEY (playlist_id) REFERENCES playlists(id)
	)`)
	if err != nil {
		return err
	}

	return nil
}

func (db *DB) newULID() string {
	db.entropyMu.Lock()
	defer db.entropyMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), db.entropy).String()
}

// CreateUser adds a new user. The username must already be normalized; the
// UNIQUE constraint is the last line of defense against duplicates.
func (db *DB) CreateUser(username, passwordHash string) (*models.User, error) {
	now := time.Now().UTC()

	result, err := db.Exec(`
	INSERT INTO users (username, password_hash, created_at)
	VALUES (?, ?, ?)`,
		username, passwordHash, now)
	if err != nil {
		return nil, err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}

	return &models.User{
		ID:           id,
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    now,
	}, nil
}

// GetUserByUsername retrieves a user by normalized username. A missing user
// is (nil, nil).
func (db *DB) GetUserByUsername(username string) (*models.User, error) {
	user := &models.User{}

	err := db.QueryRow(`
	SELECT id, username, password_hash, created_at
	FROM users WHERE username = ?`, username).Scan(
		&user.ID, &user.Username, &user.PasswordHash, &user.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return user, nil
}

// GetUserByID retrieves a user by id. A missing user is (nil, nil).
func (db *DB) GetUserByID(id int64) (*models.User, error) {
	user := &models.User{}

	err := db.QueryRow(`
	SELECT id, username, password_hash, created_at
	FROM users WHERE id = ?`, id).Scan(
		&user.ID, &user.Username, &user.PasswordHash, &user.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return user, nil
}

// CreatePlaylist stores a new empty playlist and returns it.
func (db *DB) CreatePlaylist(userID int64, title string) (*models.Playlist, error) {
	now := time.Now().UTC()
	id := db.newULID()

	_, err := db.Exec(`
	INSERT INTO playlists (id, user_id, title, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?)`,
		id, userID, title, now, now)
	if err != nil {
		return nil, err
	}

	return &models.Playlist{
		ID:        id,
		UserID:    userID,
		Title:     title,
		Tracks:    []models.Track{},
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// GetPlaylistByID loads a playlist with its ordered tracks. A missing
// playlist is (nil, nil).
func (db *DB) GetPlaylistByID(id string) (*models.Playlist, error) {
	playlist := &models.Playlist{}

	err := db.QueryRow(`
	SELECT id, user_id, title, created_at, updated_at
	FROM playlists WHERE id = ?`, id).Scan(
		&playlist.ID, &playlist.UserID, &playlist.Title,
		&playlist.CreatedAt, &playlist.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	tracks, err := db.GetPlaylistTracks(id)
	if err != nil {
		return nil, err
	}
	playlist.Tracks = tracks

	return playlist, nil
}

// GetPlaylistsForUser returns every playlist the user owns, newest first,
// tracks included.
func (db *DB) GetPlaylistsForUser(userID int64) ([]*models.Playlist, error) {
	rows, err := db.Query(`
	SELECT id, user_id, title, created_at, updated_at
	FROM playlists
	WHERE user_id = ?
	ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	playlists := []*models.Playlist{}
	for rows.Next() {
		playlist := &models.Playlist{}
		if err := rows.Scan(
			&playlist.ID, &playlist.UserID, &playlist.Title,
			&playlist.CreatedAt, &playlist.UpdatedAt); err != nil {
			return nil, err
		}
		playlists = append(playlists, playlist)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, playlist := range playlists {
		tracks, err := db.GetPlaylistTracks(playlist.ID)
		if err != nil {
			return nil, err
		}
		playlist.Tracks = tracks
	}

	return playlists, nil
}

// RenamePlaylist updates the (already normalized) title.
func (db *DB) RenamePlaylist(id, title string) error {
	_, err := db.Exec(`
	UPDATE playlists SET title = ?, updated_at = ? WHERE id = ?`,
		title, time.Now().UTC(), id)
	return err
}

// DeletePlaylist removes the playlist and its tracks.
func (db *DB) DeletePlaylist(id string) error {
	if _, err := db.Exec(`DELETE FROM playlist_tracks WHERE playlist_id = ?`, id); err != nil {
		return fmt.Errorf("error deleting tracks for playlist %s: %w", id, err)
	}
	if _, err := db.Exec(`DELETE FROM playlists WHERE id = ?`, id); err != nil {
		return fmt.Errorf("error deleting playlist %s: %w", id, err)
	}
	return nil
}

// AppendTrack appends one track to the end of the playlist. The position is
// computed in the INSERT itself, so two concurrent appends both land instead
// of one overwriting the other.
func (db *DB) AppendTrack(playlistID string, track models.Track) error {
	_, err := db.Exec(`
	INSERT INTO playlist_tracks (playlist_id, position, name, artist, album, mbid, fallback_key, image_url)
	SELECT ?, COALESCE(MAX(position), 0) + 1, ?, ?, ?, ?, ?, ?
	FROM playlist_tracks WHERE playlist_id = ?`,
		playlistID, track.Name, track.Artist, track.Album,
		track.MBID, track.FallbackKey, track.ImageURL, playlistID)
	if err != nil {
		return fmt.Errorf("error appending track to playlist %s: %w", playlistID, err)
	}

	_, err = db.Exec(`UPDATE playlists SET updated_at = ? WHERE id = ?`,
		time.Now().UTC(), playlistID)
	return err
}

// RemoveTrack deletes the first track whose mbid or fallback key matches.
// It reports whether a row was removed.
func (db *DB) RemoveTrack(playlistID, key string) (bool, error) {
	result, err := db.Exec(`
	DELETE FROM playlist_tracks
	WHERE id = (
		SELECT id FROM playlist_tracks
		WHERE playlist_id = ? AND (mbid = ? OR fallback_key = ?)
		ORDER BY position, id
		LIMIT 1
	)`, playlistID, key, key)
	if err != nil {
		return false, fmt.Errorf("error removing track %s from playlist %s: %w", key, playlistID, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// GetPlaylistTracks returns the ordered track list.
func (db *DB) GetPlaylistTracks(playlistID string) ([]models.Track, error) {
	rows, err := db.Query(`
	SELECT name, artist, album, mbid, fallback_key, image_url
	FROM playlist_tracks
	WHERE playlist_id = ?
	ORDER BY position, id`, playlistID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tracks := []models.Track{}
	for rows.Next() {
		var track models.Track
		var album, mbid, fallbackKey, imageURL sql.NullString
		if err := rows.Scan(&track.Name, &track.Artist, &album, &mbid, &fallbackKey, &imageURL); err != nil {
			return nil, err
		}
		track.Album = album.String
		track.MBID = mbid.String
		track.FallbackKey = fallbackKey.String
		track.ImageURL = imageURL.String
		tracks = append(tracks, track)
	}

	return tracks, rows.Err()
}
