package auth

import (
	"testing"

	"github.com/hum-fm/crate/models"
)

func TestCanAccess(t *testing.T) {
	playlist := &models.Playlist{ID: "01H0000000000000000000000", UserID: 7, Title: "favorites"}

	tests := []struct {
		name     string
		userID   int64
		playlist *models.Playlist
		mode     AccessMode
		want     bool
	}{
		{name: "owner write", userID: 7, playlist: playlist, mode: Write, want: true},
		{name: "owner read", userID: 7, playlist: playlist, mode: Read, want: true},
		{name: "other authenticated user write", userID: 8, playlist: playlist, mode: Write, want: false},
		{name: "other authenticated user read", userID: 8, playlist: playlist, mode: Read, want: false},
		{name: "zero user id", userID: 0, playlist: playlist, mode: Write, want: false},
		{name: "nil playlist", userID: 7, playlist: nil, mode: Read, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanAccess(tt.userID, tt.playlist, tt.mode); got != tt.want {
				t.Errorf("CanAccess(%d, _, %v) = %v, want %v", tt.userID, tt.mode, got, tt.want)
			}
		})
	}
}
