package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/mattn/go-sqlite3"

	"github.com/hum-fm/crate/auth"
	"github.com/hum-fm/crate/models"
	"github.com/hum-fm/crate/service/lastfm"
	"github.com/hum-fm/crate/session"
)

type registerRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken string            `json:"access_token"`
	TokenType   string            `json:"token_type"`
	User        models.PublicUser `json:"user"`
}

// POST /api/register
func (app *application) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		validationError(w, auth.NewValidationError("username", "password"))
		return
	}

	missing := []string{}
	if strings.TrimSpace(req.Username) == "" {
		missing = append(missing, "username")
	}
	if req.Password == "" {
		missing = append(missing, "password")
	}
	if len(missing) > 0 {
		validationError(w, auth.NewValidationError(missing...))
		return
	}

	username := models.NormalizeUsername(req.Username)

	existing, err := app.db.GetUserByUsername(username)
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	if existing != nil {
		errorResponse(w, http.StatusBadRequest, "username already exists")
		return
	}

	passwordHash, err := app.hasher.Hash(req.Password)
	if err != nil {
		app.serverError(w, r, err)
		return
	}

	user, err := app.db.CreateUser(username, passwordHash)
	if err != nil {
		// two concurrent registrations can race past the lookup above;
		// the UNIQUE constraint catches the loser
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint {
			errorResponse(w, http.StatusBadRequest, "username already exists")
			return
		}
		app.serverError(w, r, err)
		return
	}

	jsonResponse(w, http.StatusCreated, user.PublicView())
}

// POST /api/login
func (app *application) login(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		validationError(w, auth.NewValidationError("username", "password"))
		return
	}

	// unknown user and wrong password produce the same response so the
	// login endpoint cannot be used to enumerate usernames
	user, err := app.db.GetUserByUsername(models.NormalizeUsername(req.Username))
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	if user == nil || !app.hasher.Verify(req.Password, user.PasswordHash) {
		errorResponse(w, http.StatusUnauthorized, auth.ErrInvalidCredentials.Error())
		return
	}

	token, err := app.tokens.Issue(user.ID)
	if err != nil {
		app.serverError(w, r, err)
		return
	}

	jsonResponse(w, http.StatusOK, loginResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		User:        user.PublicView(),
	})
}

type profileResponse struct {
	models.PublicUser
	Playlists []*models.Playlist `json:"playlists,omitempty"`
}

// GET /api/users/{id}
func (app *application) userProfile(w http.ResponseWriter, r *http.Request) {
	current, _ := session.UserFromContext(r.Context())

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		validationError(w, auth.NewValidationError("id"))
		return
	}

	// profiles are private: only the account owner may read one
	if current.ID != id {
		errorResponse(w, http.StatusForbidden, auth.ErrForbidden.Error())
		return
	}

	resp := profileResponse{PublicUser: current.PublicView()}

	if r.URL.Query().Get("playlists") == "true" {
		playlists, err := app.db.GetPlaylistsForUser(current.ID)
		if err != nil {
			app.serverError(w, r, err)
			return
		}
		resp.Playlists = playlists
	}

	jsonResponse(w, http.StatusOK, resp)
}

// GET /api/playlists
func (app *application) listPlaylists(w http.ResponseWriter, r *http.Request) {
	current, _ := session.UserFromContext(r.Context())

	playlists, err := app.db.GetPlaylistsForUser(current.ID)
	if err != nil {
		app.serverError(w, r, err)
		return
	}

	jsonResponse(w, http.StatusOK, map[string]any{"playlists": playlists})
}

// POST /api/playlists
func (app *application) createPlaylist(w http.ResponseWriter, r *http.Request) {
	current, _ := session.UserFromContext(r.Context())

	var req struct {
		Title string `json:"title"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		validationError(w, auth.NewValidationError("title"))
		return
	}

	title, err := models.NormalizeTitle(req.Title)
	if err != nil {
		validationError(w, auth.NewValidationError("title"))
		return
	}

	playlist, err := app.db.CreatePlaylist(current.ID, title)
	if err != nil {
		app.serverError(w, r, err)
		return
	}

	jsonResponse(w, http.StatusCreated, playlist)
}

// loadOwnedPlaylist fetches the playlist from the path and runs the
// ownership policy. It writes the error response itself and returns nil
// when the caller should stop.
func (app *application) loadOwnedPlaylist(w http.ResponseWriter, r *http.Request, mode auth.AccessMode) *models.Playlist {
	current, _ := session.UserFromContext(r.Context())

	playlist, err := app.db.GetPlaylistByID(r.PathValue("id"))
	if err != nil {
		app.serverError(w, r, err)
		return nil
	}
	if playlist == nil {
		errorResponse(w, http.StatusNotFound, "playlist not found")
		return nil
	}

	if !auth.CanAccess(current.ID, playlist, mode) {
		errorResponse(w, http.StatusForbidden, "you do not own this playlist")
		return nil
	}

	return playlist
}

// GET /api/playlists/{id}
func (app *application) getPlaylist(w http.ResponseWriter, r *http.Request) {
	playlist := app.loadOwnedPlaylist(w, r, auth.Read)
	if playlist == nil {
		return
	}

	jsonResponse(w, http.StatusOK, playlist)
}

type trackPayload struct {
	Name   string `json:"name"`
	Artist string `json:"artist"`
	Album  string `json:"album"`
	MBID   string `json:"mbid"`
	Image  string `json:"image"`
}

// resolvePayload derives the track identity from a client-supplied record,
// reporting the missing fields when it cannot.
func resolvePayload(payload trackPayload) (models.Track, *auth.ValidationError) {
	track, err := lastfm.ResolveTrack(lastfm.SearchResult{
		Name:   payload.Name,
		Artist: payload.Artist,
		MBID:   payload.MBID,
	})
	if err != nil {
		missing := []string{}
		if strings.TrimSpace(payload.Name) == "" {
			missing = append(missing, "name")
		}
		if strings.TrimSpace(payload.Artist) == "" {
			missing = append(missing, "artist")
		}
		return models.Track{}, auth.NewValidationError(missing...)
	}

	track.Album = strings.TrimSpace(payload.Album)
	track.ImageURL = payload.Image
	return track, nil
}

func (app *application) appendTrack(w http.ResponseWriter, r *http.Request, playlist *models.Playlist, payload trackPayload) {
	track, verr := resolvePayload(payload)
	if verr != nil {
		validationError(w, verr)
		return
	}

	if err := app.db.AppendTrack(playlist.ID, track); err != nil {
		app.serverError(w, r, err)
		return
	}
	playlist.AddTrack(track)

	jsonResponse(w, http.StatusOK, playlist)
}

// POST /api/playlists/{id}/tracks
func (app *application) addPlaylistTrack(w http.ResponseWriter, r *http.Request) {
	playlist := app.loadOwnedPlaylist(w, r, auth.Write)
	if playlist == nil {
		return
	}

	var payload trackPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		validationError(w, auth.NewValidationError("name", "artist"))
		return
	}

	app.appendTrack(w, r, playlist, payload)
}

// PUT /api/playlists/{id} — renames when the body carries a title, appends
// when it carries a track.
func (app *application) updatePlaylist(w http.ResponseWriter, r *http.Request) {
	playlist := app.loadOwnedPlaylist(w, r, auth.Write)
	if playlist == nil {
		return
	}

	var req struct {
		Title *string       `json:"title"`
		Track *trackPayload `json:"track"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		validationError(w, auth.NewValidationError("title", "track"))
		return
	}

	switch {
	case req.Title != nil:
		if err := playlist.Rename(*req.Title); err != nil {
			validationError(w, auth.NewValidationError("title"))
			return
		}
		if err := app.db.RenamePlaylist(playlist.ID, playlist.Title); err != nil {
			app.serverError(w, r, err)
			return
		}
		jsonResponse(w, http.StatusOK, playlist)
	case req.Track != nil:
		app.appendTrack(w, r, playlist, *req.Track)
	default:
		validationError(w, auth.NewValidationError("title", "track"))
	}
}

// DELETE /api/playlists/{id}/tracks/{key}
func (app *application) removePlaylistTrack(w http.ResponseWriter, r *http.Request) {
	playlist := app.loadOwnedPlaylist(w, r, auth.Write)
	if playlist == nil {
		return
	}

	key := r.PathValue("key")
	removed, err := app.db.RemoveTrack(playlist.ID, key)
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	if !removed {
		errorResponse(w, http.StatusNotFound, "track not found in playlist")
		return
	}
	playlist.RemoveTrack(key)

	jsonResponse(w, http.StatusOK, playlist)
}

// DELETE /api/playlists/{id}
func (app *application) deletePlaylist(w http.ResponseWriter, r *http.Request) {
	playlist := app.loadOwnedPlaylist(w, r, auth.Write)
	if playlist == nil {
		return
	}

	if err := app.db.DeletePlaylist(playlist.ID); err != nil {
		app.serverError(w, r, err)
		return
	}

	jsonResponse(w, http.StatusOK, map[string]any{
		"message":  "playlist deleted successfully",
		"playlist": playlist,
	})
}

// GET /api/tracks/search?track=...&fuzzy=true
func (app *application) searchTracks(w http.ResponseWriter, r *http.Request) {
	term := r.URL.Query().Get("track")
	if term == "" {
		validationError(w, auth.NewValidationError("track"))
		return
	}
	fuzzy := strings.EqualFold(r.URL.Query().Get("fuzzy"), "true")

	tracks, err := app.lastfm.SearchTracks(r.Context(), term, fuzzy)
	if err != nil {
		if errors.Is(err, lastfm.ErrProviderUnavailable) {
			errorResponse(w, http.StatusInternalServerError, "failed to search tracks")
			return
		}
		app.serverError(w, r, err)
		return
	}

	jsonResponse(w, http.StatusOK, map[string]any{"tracks": tracks})
}

// GET /api/tracks/{id} — id is either a provider mbid or a fallback key
func (app *application) trackDetail(w http.ResponseWriter, r *http.Request) {
	idOrKey := r.PathValue("id")

	detail, err := app.lastfm.ResolveDetail(r.Context(), idOrKey)
	if err != nil {
		switch {
		case errors.Is(err, lastfm.ErrTrackNotFound):
			errorResponse(w, http.StatusNotFound, "track not found")
		case errors.Is(err, lastfm.ErrProviderUnavailable):
			errorResponse(w, http.StatusInternalServerError, "failed to get track info")
		default:
			app.serverError(w, r, err)
		}
		return
	}

	jsonResponse(w, http.StatusOK, detail)
}
