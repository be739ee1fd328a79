package session

import "errors"

var (
	// ErrNotFound indicates the referenced session does not exist or has
	// been reclaimed.
	ErrNotFound = errors.New("session not found")

	// ErrInvalidState indicates the requested operation is not valid for
	// the session's current status. The session is left unchanged.
	ErrInvalidState = errors.New("invalid session state")
)
