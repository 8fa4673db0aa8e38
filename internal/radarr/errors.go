package radarr

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthorized indicates the API key was rejected.
	ErrUnauthorized = errors.New("radarr: unauthorized")
	// ErrNotFound indicates the requested resource does not exist.
	ErrNotFound = errors.New("radarr: not found")
)

// StatusError reports an unexpected HTTP status from the Radarr API.
type StatusError struct {
	Op   string
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("radarr %s returned %d: %s", e.Op, e.Code, e.Body)
	}
	return fmt.Sprintf("radarr %s returned %d", e.Op, e.Code)
}

// ConnectionError wraps transport-level failures so callers can distinguish
// an unreachable service from an API-level rejection.
type ConnectionError struct {
	Op  string
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("radarr %s: %v", e.Op, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }
