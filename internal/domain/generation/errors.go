package generation

import "errors"

// Domain errors for the generation package
var (
	ErrEmptyPrompt        = errors.New("prompt cannot be empty")
	ErrNoImages           = errors.New("generation must have at least one image")
	ErrInvalidAspectRatio = errors.New("invalid aspect ratio")
	ErrInvalidOrderBy     = errors.New("invalid order column")
	ErrNotFound           = errors.New("generation not found")
)
