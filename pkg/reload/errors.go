package reload

import "errors"

var (
	// ErrInvalidSettings indicates a non-positive reload interval or load timeout.
	ErrInvalidSettings = errors.New("reload: invalid settings")

	// ErrLoadTimeout is reported when a load attempt does not finish within the load timeout.
	ErrLoadTimeout = errors.New("reload: resource load timed out")

	// ErrNilLoader indicates a reloader was constructed without a loader.
	ErrNilLoader = errors.New("reload: nil loader")
)
