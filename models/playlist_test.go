package models

import (
	"errors"
	"testing"
)

func TestNormalizeTitle(t *testing.T) {
	tests := []struct {
		name    string
		title   string
		want    string
		wantErr error
	}{
		{name: "already normalized", title: "favorites", want: "favorites"},
		{name: "mixed case", title: "Favorites", want: "favorites"},
		{name: "surrounding whitespace", title: "  Road Trip  ", want: "road trip"},
		{name: "empty", title: "", wantErr: ErrEmptyTitle},
		{name: "whitespace only", title: "   ", wantErr: ErrEmptyTitle},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeTitle(tt.title)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("NormalizeTitle(%q) error = %v, want %v", tt.title, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("NormalizeTitle(%q) = %q, want %q", tt.title, got, tt.want)
			}
		})
	}
}

func TestPlaylistTrackOrder(t *testing.T) {
	playlist := &Playlist{ID: "p1", UserID: 1, Title: "favorites"}

	first := Track{Name: "Empire State Of Mind", Artist: "Lang Lang", FallbackKey: "lang lang|empire state of mind"}
	second := Track{Name: "Hey Jude", Artist: "The Beatles", MBID: "0d34ec9c-dfd8-4dc7-93e3-b2bca9b207c9"}
	third := Track{Name: "Empire State Of Mind", Artist: "Lang Lang", FallbackKey: "lang lang|empire state of mind"}

	playlist.AddTrack(first)
	playlist.AddTrack(second)
	playlist.AddTrack(third) // duplicates are allowed

	if len(playlist.Tracks) != 3 {
		t.Fatalf("len(Tracks) = %d, want 3", len(playlist.Tracks))
	}
	if playlist.Tracks[1].Name != "Hey Jude" {
		t.Errorf("Tracks[1] = %q, order not preserved", playlist.Tracks[1].Name)
	}

	// removal takes the first match only
	if !playlist.RemoveTrack("lang lang|empire state of mind") {
		t.Fatal("RemoveTrack() = false, want true")
	}
	if len(playlist.Tracks) != 2 {
		t.Fatalf("len(Tracks) after removal = %d, want 2", len(playlist.Tracks))
	}
	if playlist.Tracks[0].Name != "Hey Jude" {
		t.Errorf("Tracks[0] = %q, want the second insert after removing the first", playlist.Tracks[0].Name)
	}

	if playlist.RemoveTrack("no-such-key") {
		t.Error("RemoveTrack(unknown) = true, want false")
	}
}

func TestPlaylistRename(t *testing.T) {
	playlist := &Playlist{ID: "p1", UserID: 1, Title: "favorites"}

	if err := playlist.Rename("  Summer Mix  "); err != nil {
		t.Fatalf("Rename() error = %v", err)
	}
	if playlist.Title != "summer mix" {
		t.Errorf("Title = %q, want %q", playlist.Title, "summer mix")
	}

	if err := playlist.Rename("   "); !errors.Is(err, ErrEmptyTitle) {
		t.Errorf("Rename(blank) error = %v, want ErrEmptyTitle", err)
	}
	if playlist.Title != "summer mix" {
		t.Errorf("failed rename changed the title to %q", playlist.Title)
	}
}

func TestTrackKey(t *testing.T) {
	withMBID := Track{MBID: "abc-123", FallbackKey: ""}
	if withMBID.Key() != "abc-123" {
		t.Errorf("Key() = %q, want mbid", withMBID.Key())
	}

	withFallback := Track{FallbackKey: "artist|name"}
	if withFallback.Key() != "artist|name" {
		t.Errorf("Key() = %q, want fallback key", withFallback.Key())
	}
}
