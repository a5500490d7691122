package client

import (
	"errors"
	"fmt"
	"strings"
)

// FieldError is one entry of the API's validation error envelope.
type FieldError struct {
	Path    []string `json:"path"`
	Message string   `json:"message"`
}

// APIError represents a non-2xx response from the API.
type APIError struct {
	StatusCode int
	Message    string
	Fields     []FieldError
}

func (e *APIError) Error() string {
	if len(e.Fields) == 0 {
		return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
	}
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, strings.Join(f.Path, ".")+": "+f.Message)
	}
	return fmt.Sprintf("HTTP %d: %s (%s)", e.StatusCode, e.Message, strings.Join(parts, "; "))
}

// IsStatus returns true if err (or any wrapped error) is an APIError
// with the given status code.
func IsStatus(err error, code int) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == code
	}
	return false
}

// UserMessage extracts the server's message from err when it is an
// APIError, falling back to the given generic text. Coordinators use
// it so every surfaced failure reads like the API intended.
func UserMessage(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}

// ErrSessionExpired is returned for the original request when a 401
// could not be recovered by a token refresh.
var ErrSessionExpired = errors.New("session expired")
