package usecases

import "errors"

var (
	ErrSessionNotFound   = errors.New("session not found")
	ErrInvalidBounds     = errors.New("invalid bounds")
	ErrInvalidViewport   = errors.New("invalid viewport size")
	ErrInvalidCamera     = errors.New("invalid camera")
	ErrInvalidProjection = errors.New("invalid projection")
	ErrUnknownSource     = errors.New("unknown grid source")
)
