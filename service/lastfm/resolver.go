package lastfm

import (
	"context"
	"strings"

	"github.com/hum-fm/crate/models"
)

// fallbackSeparator joins the artist and track segments of a synthesized
// key. It doubles as the marker that tells a detail lookup the identifier
// is not a provider mbid, so it must never change once keys are persisted.
const fallbackSeparator = "|"

// NormalizeSearchQuery shapes a raw search term for the provider: trimmed,
// words joined with "+", and a trailing "*" wildcard when fuzzy matching is
// requested. Normalizing an already-normalized query returns it unchanged.
func NormalizeSearchQuery(raw string, fuzzy bool) string {
	query := strings.Join(strings.Fields(raw), "+")
	if fuzzy && !strings.HasSuffix(query, "*") && query != "" {
		query += "*"
	}
	return query
}

// normalizeKeySegment folds one side of a fallback key: lower-cased, outer
// whitespace trimmed, inner runs collapsed to single spaces. Incidental
// formatting differences in provider responses must not change the key.
func normalizeKeySegment(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// FallbackKey synthesizes the stable identifier used when the provider
// omits an mbid: normalized artist, the separator, normalized track name.
func FallbackKey(artist, name string) string {
	return normalizeKeySegment(artist) + fallbackSeparator + normalizeKeySegment(name)
}

// ResolveTrack turns a raw provider record into a track with exactly one
// identifier. A non-empty mbid is used verbatim; otherwise a fallback key is
// derived from artist and name. Records without enough identity to ever be
// looked up again are rejected.
func ResolveTrack(rec SearchResult) (models.Track, error) {
	name := strings.TrimSpace(rec.Name)
	artist := strings.TrimSpace(rec.Artist)

	track := models.Track{
		Name:     name,
		Artist:   artist,
		ImageURL: extraLargeImage(rec.Image),
	}

	if mbid := strings.TrimSpace(rec.MBID); mbid != "" {
		if name == "" && artist == "" {
			return models.Track{}, ErrIncompleteRecord
		}
		track.MBID = mbid
		return track, nil
	}

	// the fallback key needs both segments to round-trip
	if name == "" || artist == "" {
		return models.Track{}, ErrIncompleteRecord
	}
	track.FallbackKey = FallbackKey(artist, name)
	return track, nil
}

// SearchTracks queries the provider and resolves every usable record.
// Incomplete records are dropped from the result set, not returned as
// partial data.
func (s *Service) SearchTracks(ctx context.Context, rawTerm string, fuzzy bool) ([]models.Track, error) {
	term, _ := s.cleaner.CleanTrackName(rawTerm)
	query := NormalizeSearchQuery(term, fuzzy)

	results, err := s.search(ctx, query)
	if err != nil {
		return nil, err
	}

	tracks := make([]models.Track, 0, len(results))
	for _, rec := range results {
		track, err := ResolveTrack(rec)
		if err != nil {
			continue
		}
		tracks = append(tracks, track)
	}
	return tracks, nil
}

// ResolveDetail looks up full metadata for either identifier kind. A
// fallback key is split back into its artist and track segments and the
// provider is queried by those fields; anything else is treated as an mbid.
func (s *Service) ResolveDetail(ctx context.Context, idOrKey string) (*TrackDetail, error) {
	if strings.Contains(idOrKey, fallbackSeparator) {
		artist, name, _ := strings.Cut(idOrKey, fallbackSeparator)
		if artist == "" || name == "" {
			return nil, ErrTrackNotFound
		}
		return s.getInfo(ctx, detailParams{Artist: artist, Track: name})
	}
	return s.getInfo(ctx, detailParams{MBID: idOrKey})
}
