package lastfm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Resolution failures surfaced to callers. ErrProviderUnavailable covers
// transport problems and non-200 provider responses; it is retryable from
// the caller's point of view but this package does not retry.
var (
	ErrIncompleteRecord    = errors.New("provider record is missing both artist and track name")
	ErrTrackNotFound       = errors.New("track not found")
	ErrProviderUnavailable = errors.New("metadata provider unavailable")
)

// searchResponse mirrors the Last.fm track.search payload.
type searchResponse struct {
	Results struct {
		TrackMatches struct {
			Track []SearchResult `json:"track"`
		} `json:"trackmatches"`
	} `json:"results"`
}

// SearchResult is one raw record from the provider's search endpoint.
type SearchResult struct {
	Name   string  `json:"name"`
	Artist string  `json:"artist"`
	MBID   string  `json:"mbid"`
	URL    string  `json:"url"`
	Image  []Image `json:"image"`
}

type Image struct {
	Size string `json:"size"`  // "small", "medium", "large", "extralarge"
	Text string `json:"#text"` // URL of the image
}

// infoResponse mirrors the Last.fm track.getInfo payload.
type infoResponse struct {
	Track *struct {
		Name   string `json:"name"`
		MBID   string `json:"mbid"`
		URL    string `json:"url"`
		Artist struct {
			Name string `json:"name"`
		} `json:"artist"`
		Album *struct {
			Title string  `json:"title"`
			Image []Image `json:"image"`
		} `json:"album"`
	} `json:"track"`
}

// TrackDetail is the sanitized detail record for a single track.
type TrackDetail struct {
	Name     string `json:"name"`
	Artist   string `json:"artist"`
	Album    string `json:"album,omitempty"`
	MBID     string `json:"mbid,omitempty"`
	ImageURL string `json:"image,omitempty"`
}

// detailParams selects a getInfo lookup: by canonical mbid, or by
// artist+track when the caller only has a fallback key.
type detailParams struct {
	MBID   string
	Artist string
	Track  string
}

// cacheEntry holds cached search results and their expiration time.
type cacheEntry struct {
	results   []SearchResult
	expiresAt time.Time
}

// Service talks to the Last.fm API. Requests are rate limited and time
// bounded so a slow provider cannot stall callers indefinitely; nothing on
// the authentication path goes through here.
type Service struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	cleaner    *MetadataCleaner

	searchCache map[string]cacheEntry
	cacheMutex  sync.RWMutex
	cacheTTL    time.Duration

	logger *slog.Logger
}

// NewService creates a provider client. The endpoint and timeout come from
// configuration, loaded once at startup.
func NewService(apiKey, baseURL string, timeout time.Duration, logger *slog.Logger) *Service {
	return &Service{
		apiKey:  apiKey,
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		// Last.fm unofficial rate limit is ~5 requests per second
		limiter:     rate.NewLimiter(rate.Every(200*time.Millisecond), 1),
		cleaner:     NewMetadataCleaner(),
		searchCache: make(map[string]cacheEntry),
		cacheTTL:    time.Hour,
		logger:      logger,
	}
}

func (s *Service) get(ctx context.Context, params url.Values) (*http.Response, error) {
	params.Set("api_key", s.apiKey)
	params.Set("format", "json")
	endpoint := s.baseURL + "?" + params.Encode()

	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter error: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "crate/0.1 ( https://github.com/hum-fm/crate )")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		s.logger.Warn("provider request failed", "method", params.Get("method"), "error", err)
		return nil, ErrProviderUnavailable
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		s.logger.Warn("provider returned non-OK status", "method", params.Get("method"), "status", resp.StatusCode)
		return nil, ErrProviderUnavailable
	}
	return resp, nil
}

// search runs track.search with an already-normalized query.
func (s *Service) search(ctx context.Context, query string) ([]SearchResult, error) {
	s.cacheMutex.RLock()
	entry, found := s.searchCache[query]
	s.cacheMutex.RUnlock()
	if found && time.Now().UTC().Before(entry.expiresAt) {
		s.logger.Debug("search cache hit", "query", query)
		return entry.results, nil
	}

	params := url.Values{}
	params.Set("method", "track.search")
	params.Set("track", query)

	resp, err := s.get(ctx, params)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var result searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}

	results := result.Results.TrackMatches.Track

	s.cacheMutex.Lock()
	s.searchCache[query] = cacheEntry{
		results:   results,
		expiresAt: time.Now().UTC().Add(s.cacheTTL),
	}
	s.cacheMutex.Unlock()

	return results, nil
}

// getInfo runs track.getInfo by mbid or by artist+track.
func (s *Service) getInfo(ctx context.Context, lookup detailParams) (*TrackDetail, error) {
	params := url.Values{}
	params.Set("method", "track.getInfo")
	if lookup.MBID != "" {
		params.Set("mbid", lookup.MBID)
	} else {
		params.Set("artist", lookup.Artist)
		params.Set("track", lookup.Track)
	}

	resp, err := s.get(ctx, params)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var result infoResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode track info response: %w", err)
	}
	if result.Track == nil || result.Track.Name == "" {
		return nil, ErrTrackNotFound
	}

	detail := &TrackDetail{
		Name:   result.Track.Name,
		Artist: result.Track.Artist.Name,
		MBID:   result.Track.MBID,
	}
	if result.Track.Album != nil {
		detail.Album = result.Track.Album.Title
		detail.ImageURL = extraLargeImage(result.Track.Album.Image)
	}
	return detail, nil
}

func extraLargeImage(images []Image) string {
	for _, img := range images {
		if img.Size == "extralarge" {
			return img.Text
		}
	}
	return ""
}
