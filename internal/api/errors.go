// Package api provides error types for SivaCoR API responses.
package api

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates the requested resource does not exist on the backend.
// Submission recovery uses this to fall back to the latest submission.
var ErrNotFound = errors.New("resource not found")

// ErrUnauthorized indicates the bearer token was missing, expired, or invalid.
var ErrUnauthorized = errors.New("unauthorized")

// IsNotFound checks if an error indicates a missing resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// statusError converts a non-success HTTP status into a typed error.
func statusError(op string, code int, body string) error {
	switch code {
	case 404:
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	case 401, 403:
		return fmt.Errorf("%s: %w: %s", op, ErrUnauthorized, body)
	default:
		return fmt.Errorf("%s failed: status %d: %s", op, code, body)
	}
}
