package flagconfig

import "errors"

var (
	ErrParse      = errors.New("flagconfig: parse failed")
	ErrNotMapping = errors.New("flagconfig: document root is not a mapping")
)
