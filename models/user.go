package models

import (
	"strings"
	"time"
)

// User represents a registered account. The password hash never leaves the
// process; anything returned to a client goes through PublicView.
type User struct {
	ID           int64
	Username     string // stored case-folded, unique
	PasswordHash string
	CreatedAt    time.Time
}

// PublicUser is the client-facing shape of a user. It has no credential
// field at all, so sanitization cannot be forgotten at a call site.
type PublicUser struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"registrationDate"`
}

func (u *User) PublicView() PublicUser {
	return PublicUser{
		ID:        u.ID,
		Username:  u.Username,
		CreatedAt: u.CreatedAt,
	}
}

// NormalizeUsername case-folds and trims a username so lookups and the
// uniqueness constraint agree regardless of how the client typed it.
func NormalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}
