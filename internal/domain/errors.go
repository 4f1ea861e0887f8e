package domain

import "errors"

// ErrNotFound is returned by repo and service functions when the requested
// resource (session, trip state, trip record) does not exist.
// Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned when input fails validation before any
// processing starts (e.g. missing user id or empty message).
// Handlers should map this to HTTP 422 Unprocessable Entity.
var ErrValidation = errors.New("validation error")
