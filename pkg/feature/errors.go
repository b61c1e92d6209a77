package feature

import "errors"

// Predefined errors for the feature package.
var (
	// ErrInvalidDimensionKey indicates a custom dimension key collides with a built-in key.
	ErrInvalidDimensionKey = errors.New("dimension key conflicts with built-in dimension key")
)
