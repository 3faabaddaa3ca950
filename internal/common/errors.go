package common

import "errors"

var (
	// Client-side terminal states.
	ErrLocalValidation = errors.New("local validation error")
	ErrTransport       = errors.New("transport error")
	ErrTimedOut        = errors.New("timed out")
	ErrServerRejected  = errors.New("server rejected")

	// Server-side failures.
	ErrServerIO        = errors.New("server io error")
	ErrMissingFilename = errors.New("missing filename")
	ErrInvalidFilename = errors.New("invalid filename")
	ErrTooLarge        = errors.New("request too large")
	ErrIncompleteBody  = errors.New("incomplete request body")
)
