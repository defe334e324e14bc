package models

import (
	"errors"
	"strings"
	"time"
)

var ErrEmptyTitle = errors.New("playlist title must not be empty")

// Playlist is an ordered collection of tracks owned by exactly one user.
// The aggregate does not check authorization — callers gate every mutation
// through the ownership policy first.
type Playlist struct {
	ID        string    `json:"id"`
	UserID    int64     `json:"userId"`
	Title     string    `json:"title"`
	Tracks    []Track   `json:"tracks"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NormalizeTitle trims and case-folds a playlist title the way the store
// keeps it.
func NormalizeTitle(title string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(title))
	if normalized == "" {
		return "", ErrEmptyTitle
	}
	return normalized, nil
}

// AddTrack appends to the ordered track list. Duplicate identifiers are
// permitted.
func (p *Playlist) AddTrack(track Track) {
	p.Tracks = append(p.Tracks, track)
}

// RemoveTrack removes the first track whose identifier (mbid or fallback
// key) matches. It reports whether anything was removed.
func (p *Playlist) RemoveTrack(key string) bool {
	for i, track := range p.Tracks {
		if track.Key() == key {
			p.Tracks = append(p.Tracks[:i], p.Tracks[i+1:]...)
			return true
		}
	}
	return false
}

// Rename replaces the title after normalization.
func (p *Playlist) Rename(title string) error {
	normalized, err := NormalizeTitle(title)
	if err != nil {
		return err
	}
	p.Title = normalized
	return nil
}
