package models

import "errors"

// Domain specific errors shared across services and handlers.
var (
	ErrNotFound            = errors.New("requested item not found")
	ErrConflict            = errors.New("item already exists or conflict")
	ErrForbidden           = errors.New("action forbidden")
	ErrValidation          = errors.New("validation failed")
	ErrUpstreamUnavailable = errors.New("upstream provider unavailable")
)
