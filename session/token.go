package session

import (
	"fmt"
	"strconv"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"

	"github.com/hum-fm/crate/auth"
)

// TokenService issues and verifies signed bearer tokens. The signing key is
// injected at construction so the process owns exactly one key for its
// lifetime and tests can run with throwaway keys. Rotating the key
// invalidates all outstanding tokens; that is the accepted tradeoff.
type TokenService struct {
	key []byte
	ttl time.Duration
}

// NewTokenService builds a service signing with HS256. A zero ttl issues
// tokens without an expiration claim; verification still checks the
// signature.
func NewTokenService(signingKey []byte, ttl time.Duration) *TokenService {
	return &TokenService{key: signingKey, ttl: ttl}
}

// Issue creates a signed token whose subject is the user id.
func (s *TokenService) Issue(userID int64) (string, error) {
	now := time.Now().UTC()

	builder := jwt.NewBuilder().
		Subject(strconv.FormatInt(userID, 10)).
		IssuedAt(now)
	if s.ttl > 0 {
		builder = builder.Expiration(now.Add(s.ttl))
	}

	token, err := builder.Build()
	if err != nil {
		return "", fmt.Errorf("error building token: %w", err)
	}

	signed, err := jwt.Sign(token, jwt.WithKey(jwa.HS256, s.key))
	if err != nil {
		return "", fmt.Errorf("error signing token: %w", err)
	}

	return string(signed), nil
}

// Verify checks the signature and, when present, the expiry, and returns the
// subject user id. Verification is pure: no state is touched. Every failure
// mode of a client-supplied token collapses into ErrMalformedToken.
func (s *TokenService) Verify(raw string) (int64, error) {
	token, err := jwt.Parse([]byte(raw), jwt.WithKey(jwa.HS256, s.key), jwt.WithValidate(true))
	if err != nil {
		return 0, auth.ErrMalformedToken
	}

	userID, err := strconv.ParseInt(token.Subject(), 10, 64)
	if err != nil {
		return 0, auth.ErrMalformedToken
	}

	return userID, nil
}
