package auth

import (
	"errors"
	"fmt"
	"strings"
)

// Failure taxonomy for the auth layer. Handlers translate these into status
// codes at the HTTP boundary: 401 for ErrUnauthenticated, 403 for
// ErrForbidden. Token-shape problems collapse into ErrMalformedToken so the
// caller never sees parser internals.
var (
	ErrUnauthenticated = errors.New("authentication required")
	ErrForbidden       = errors.New("forbidden")
	ErrMalformedToken  = errors.New("malformed token")

	// ErrInvalidCredentials is the single login failure signal. Unknown
	// username and wrong password both map here so usernames cannot be
	// enumerated through the login endpoint.
	ErrInvalidCredentials = errors.New("invalid username or password")
)

// ValidationError reports exactly which request fields were missing or
// invalid.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("missing or invalid fields: %s", strings.Join(e.Fields, ", "))
}

func NewValidationError(fields ...string) *ValidationError {
	return &ValidationError{Fields: fields}
}
