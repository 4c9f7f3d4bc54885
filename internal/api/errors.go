package api

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors classifying GraphQL error messages from the service.
// Callers match with errors.Is; anything that does not classify stays a
// plain wrapped transport error.
var (
	// ErrUnauthorized covers missing/expired sessions and bad credentials.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden means the caller is authenticated but lacks the role.
	ErrForbidden = errors.New("not permitted")
	// ErrNotFound means the targeted record no longer exists remotely.
	ErrNotFound = errors.New("not found")
	// ErrValidation covers rejected input, client- or server-side.
	ErrValidation = errors.New("invalid input")
	// ErrConflict means a uniqueness constraint was hit (username taken).
	ErrConflict = errors.New("conflict")
)

// classify maps a GraphQL error message onto a sentinel. The service
// reports failures as plain message strings, so matching is by
// substring on the known messages.
func classify(message string) error {
	m := strings.ToLower(message)
	switch {
	case strings.Contains(m, "not found"):
		return fmt.Errorf("%w: %s", ErrNotFound, message)
	case strings.Contains(m, "already exists"):
		return fmt.Errorf("%w: %s", ErrConflict, message)
	case strings.Contains(m, "not permitted"):
		return fmt.Errorf("%w: %s", ErrForbidden, message)
	case strings.Contains(m, "authentication required"),
		strings.Contains(m, "valid credentials"),
		strings.Contains(m, "signature has expired"):
		return fmt.Errorf("%w: %s", ErrUnauthorized, message)
	case strings.Contains(m, "invalid"), strings.Contains(m, "empty"):
		return fmt.Errorf("%w: %s", ErrValidation, message)
	default:
		return errors.New(message)
	}
}
