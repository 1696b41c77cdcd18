package engine

import "errors"

// Failure taxonomy for the two player-facing operations. Handlers map
// these to HTTP statuses with errors.Is; anything unwrapped is internal.
var (
	// ErrInvalidArgument means a required input was missing or empty.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrNotFound means the referenced session does not exist.
	ErrNotFound = errors.New("session not found")

	// ErrPermissionDenied means the caller does not own a non-anonymous
	// session.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrConflict means a concurrent turn on the same session committed
	// first; the losing turn is not applied.
	ErrConflict = errors.New("concurrent turn conflict")
)
