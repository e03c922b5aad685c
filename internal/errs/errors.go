package errs

import "errors"

var (
	// ErrNotFound is returned when a session or activity does not exist.
	ErrNotFound = errors.New("not found")
	// ErrInvalidTransition is returned for an illegal session state change.
	ErrInvalidTransition = errors.New("invalid transition")
	// ErrNoActiveSession is returned when an actor operation needs a live
	// session and none has been started.
	ErrNoActiveSession = errors.New("no active session")
	// ErrForbidden is returned when a caller touches another user's data.
	ErrForbidden = errors.New("forbidden")
	// ErrStorageUnavailable is returned when the backing KV store fails.
	// The core never retries; the adapter owns retry policy.
	ErrStorageUnavailable = errors.New("storage unavailable")
	// ErrValidation is returned for missing or malformed request fields.
	ErrValidation = errors.New("validation error")
)
