package session

import (
	"context"
	"net/http"
	"strings"

	"github.com/hum-fm/crate/models"
)

type contextKey int

const userKey contextKey = iota

func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// UserFromContext returns the authenticated user placed by Authenticate.
func UserFromContext(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(userKey).(*models.User)
	return user, ok && user != nil
}

// UserFinder is the slice of the store the guard needs.
type UserFinder interface {
	GetUserByID(id int64) (*models.User, error)
}

// Authenticator resolves bearer tokens into identities before any handler
// runs. It never mutates state: a bad or absent token just leaves the
// request anonymous, and RequireAuth decides whether that is fatal.
type Authenticator struct {
	tokens *TokenService
	users  UserFinder
}

func NewAuthenticator(tokens *TokenService, users UserFinder) *Authenticator {
	return &Authenticator{tokens: tokens, users: users}
}

// Authenticate verifies the Authorization header and, on success, threads
// the user through the request context. A token that verifies but points at
// a user who no longer exists counts as unauthenticated.
func (a *Authenticator) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := extractBearerToken(r)
		if raw == "" {
			next.ServeHTTP(w, r)
			return
		}

		userID, err := a.tokens.Verify(raw)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		user, err := a.users.GetUserByID(userID)
		if err != nil || user == nil {
			next.ServeHTTP(w, r)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
	})
}

// RequireAuth rejects requests that did not resolve to an identity.
func (a *Authenticator) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := UserFromContext(r.Context()); !ok {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error": "authentication required"}`))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func extractBearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	if token, found := strings.CutPrefix(header, "Bearer "); found {
		return strings.TrimSpace(token)
	}
	// a bare token without the Bearer scheme is accepted too
	return strings.TrimSpace(header)
}
