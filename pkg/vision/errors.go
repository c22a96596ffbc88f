package vision

import "errors"

// Errors
var (
	// ErrModelNotFound is returned when a model file does not exist.
	ErrModelNotFound = errors.New("vision: model file not found")

	// ErrEmptyImage is returned for empty or undecodable images.
	ErrEmptyImage = errors.New("vision: empty image")
)
