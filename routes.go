package main

import (
	"net/http"

	"github.com/justinas/alice"
)

func (app *application) routes() http.Handler {
	mux := http.NewServeMux()

	dynamic := alice.New(app.authenticator.Authenticate)
	protected := dynamic.Append(app.authenticator.RequireAuth)

	mux.Handle("POST /api/register", dynamic.ThenFunc(app.register))
	mux.Handle("POST /api/login", dynamic.ThenFunc(app.login))
	mux.Handle("GET /api/users/{id}", protected.ThenFunc(app.userProfile))

	mux.Handle("GET /api/playlists", protected.ThenFunc(app.listPlaylists))
	mux.Handle("POST /api/playlists", protected.ThenFunc(app.createPlaylist))
	mux.Handle("GET /api/playlists/{id}", protected.ThenFunc(app.getPlaylist))
	mux.Handle("PUT /api/playlists/{id}", protected.ThenFunc(app.updatePlaylist))
	mux.Handle("DELETE /api/playlists/{id}", protected.ThenFunc(app.deletePlaylist))
	mux.Handle("POST /api/playlists/{id}/tracks", protected.ThenFunc(app.addPlaylistTrack))
	mux.Handle("DELETE /api/playlists/{id}/tracks/{key}", protected.ThenFunc(app.removePlaylistTrack))

	mux.Handle("GET /api/tracks/search", protected.ThenFunc(app.searchTracks))
	mux.Handle("GET /api/tracks/{id}", protected.ThenFunc(app.trackDetail))

	standard := alice.New(app.recoverPanic, app.logRequest, commonHeaders)

	return standard.Then(mux)
}
