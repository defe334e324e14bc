package auth

import "github.com/hum-fm/crate/models"

// AccessMode distinguishes reads from mutations when checking ownership.
type AccessMode int

const (
	Read AccessMode = iota
	Write
)

// CanAccess is the ownership decision for playlists. Playlists are private:
// both modes require the authenticated user to be the owner. There is no
// shared or public playlist concept.
func CanAccess(userID int64, playlist *models.Playlist, mode AccessMode) bool {
	if playlist == nil {
		return false
	}
	switch mode {
	case Read, Write:
		return playlist.UserID == userID
	default:
		return false
	}
}
