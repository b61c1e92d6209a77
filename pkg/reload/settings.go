package reload

import (
	"errors"
	"fmt"
	"time"
)

const (
	DefaultReloadInterval = time.Minute
	DefaultLoadTimeout    = 30 * time.Second
)

// Settings control how often a resource is reloaded and how long a single
// load attempt may take. The env tags let callers load them with pkg/config.
type Settings struct {
	ReloadInterval time.Duration `env:"RELOAD_INTERVAL" envDefault:"60s"`
	LoadTimeout    time.Duration `env:"RELOAD_TIMEOUT" envDefault:"30s"`
}

// DefaultSettings reloads once per minute and allows 30 seconds per attempt.
func DefaultSettings() Settings {
	return Settings{
		ReloadInterval: DefaultReloadInterval,
		LoadTimeout:    DefaultLoadTimeout,
	}
}

// Validate reports ErrInvalidSettings unless both durations are positive.
func (s Settings) Validate() error {
	if s.ReloadInterval <= 0 {
		return errors.Join(ErrInvalidSettings, fmt.Errorf("reload interval must be positive, got %s", s.ReloadInterval))
	}
	if s.LoadTimeout <= 0 {
		return errors.Join(ErrInvalidSettings, fmt.Errorf("load timeout must be positive, got %s", s.LoadTimeout))
	}
	return nil
}
