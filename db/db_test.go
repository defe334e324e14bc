package db

import (
	"testing"

	"github.com/hum-fm/crate/models"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()

	database, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	// the in-memory database exists per connection
	database.SetMaxOpenConns(1)

	if err := database.Initialize(); err != nil {
		t.Fatalf("failed to initialize test database: %v", err)
	}
	return database
}

func TestUserLookup(t *testing.T) {
	database := newTestDB(t)

	created, err := database.CreateUser("alice", "hashed")
	if err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}

	byName, err := database.GetUserByUsername("alice")
	if err != nil {
		t.Fatalf("GetUserByUsername() error = %v", err)
	}
	if byName == nil || byName.ID != created.ID {
		t.Errorf("GetUserByUsername() = %+v, want id %d", byName, created.ID)
	}

	byID, err := database.GetUserByID(created.ID)
	if err != nil {
		t.Fatalf("GetUserByID() error = %v", err)
	}
	if byID == nil || byID.Username != "alice" {
		t.Errorf("GetUserByID() = %+v", byID)
	}

	missing, err := database.GetUserByUsername("nobody")
	if err != nil {
		t.Fatalf("GetUserByUsername(missing) error = %v", err)
	}
	if missing != nil {
		t.Errorf("missing user = %+v, want nil", missing)
	}
}

func TestDuplicateUsernameRejected(t *testing.T) {
	database := newTestDB(t)

	if _, err := database.CreateUser("alice", "h1"); err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}
	if _, err := database.CreateUser("alice", "h2"); err == nil {
		t.Error("second CreateUser with the same username succeeded")
	}
}

func TestTrackOrdering(t *testing.T) {
	database := newTestDB(t)

	user, _ := database.CreateUser("alice", "h")
	playlist, err := database.CreatePlaylist(user.ID, "mix")
	if err != nil {
		t.Fatalf("CreatePlaylist() error = %v", err)
	}

	tracks := []models.Track{
		{Name: "One", Artist: "A", MBID: "m1"},
		{Name: "Two", Artist: "B", FallbackKey: "b|two"},
		{Name: "Three", Artist: "C", MBID: "m3"},
	}
	for _, track := range tracks {
		if err := database.AppendTrack(playlist.ID, track); err != nil {
			t.Fatalf("AppendTrack(%s) error = %v", track.Name, err)
		}
	}

	loaded, err := database.GetPlaylistByID(playlist.ID)
	if err != nil {
		t.Fatalf("GetPlaylistByID() error = %v", err)
	}
	if len(loaded.Tracks) != 3 {
		t.Fatalf("len(tracks) = %d, want 3", len(loaded.Tracks))
	}
	for i, track := range loaded.Tracks {
		if track.Name != tracks[i].Name {
			t.Errorf("tracks[%d].Name = %q, want %q (insertion order)", i, track.Name, tracks[i].Name)
		}
	}
}

func TestRemoveTrackFirstMatchOnly(t *testing.T) {
	database := newTestDB(t)

	user, _ := database.CreateUser("alice", "h")
	playlist, _ := database.CreatePlaylist(user.ID, "mix")

	// the same track twice
	dup := models.Track{Name: "One", Artist: "A", MBID: "m1"}
	database.AppendTrack(playlist.ID, dup)
	database.AppendTrack(playlist.ID, dup)

	removed, err := database.RemoveTrack(playlist.ID, "m1")
	if err != nil {
		t.Fatalf("RemoveTrack() error = %v", err)
	}
	if !removed {
		t.Fatal("RemoveTrack() removed nothing")
	}

	remaining, _ := database.GetPlaylistTracks(playlist.ID)
	if len(remaining) != 1 {
		t.Errorf("len(remaining) = %d, want 1 (only the first copy removed)", len(remaining))
	}

	if removed, _ := database.RemoveTrack(playlist.ID, "no-such-key"); removed {
		t.Error("RemoveTrack() reported a hit for an unknown key")
	}
}

func TestDeletePlaylistRemovesTracks(t *testing.T) {
	database := newTestDB(t)

	user, _ := database.CreateUser("alice", "h")
	playlist, _ := database.CreatePlaylist(user.ID, "mix")
	database.AppendTrack(playlist.ID, models.Track{Name: "One", Artist: "A", MBID: "m1"})

	if err := database.DeletePlaylist(playlist.ID); err != nil {
		t.Fatalf("DeletePlaylist() error = %v", err)
	}

	missing, err := database.GetPlaylistByID(playlist.ID)
	if err != nil {
		t.Fatalf("GetPlaylistByID() error = %v", err)
	}
	if missing != nil {
		t.Errorf("deleted playlist still loads: %+v", missing)
	}

	orphans, _ := database.GetPlaylistTracks(playlist.ID)
	if len(orphans) != 0 {
		t.Errorf("%d orphaned track rows left behind", len(orphans))
	}
}

func TestGetPlaylistsForUserNewestFirst(t *testing.T) {
	database := newTestDB(t)

	alice, _ := database.CreateUser("alice", "h")
	bob, _ := database.CreateUser("bob", "h")

	first, _ := database.CreatePlaylist(alice.ID, "first")
	second, _ := database.CreatePlaylist(alice.ID, "second")
	database.CreatePlaylist(bob.ID, "other")

	playlists, err := database.GetPlaylistsForUser(alice.ID)
	if err != nil {
		t.Fatalf("GetPlaylistsForUser() error = %v", err)
	}
	if len(playlists) != 2 {
		t.Fatalf("len(playlists) = %d, want 2", len(playlists))
	}
	// both created in the same instant sort equal; otherwise newest first
	if playlists[0].CreatedAt.Before(playlists[1].CreatedAt) {
		t.Errorf("playlists out of order: %s before %s", playlists[0].ID, playlists[1].ID)
	}
	found := map[string]bool{first.ID: false, second.ID: false}
	for _, p := range playlists {
		found[p.ID] = true
	}
	for id, ok := range found {
		if !ok {
			t.Errorf("playlist %s missing from listing", id)
		}
	}
}
