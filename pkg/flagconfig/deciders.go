package flagconfig

import (
	"log/slog"

	"github.com/dmitrymomot/featurekit/pkg/feature"
	"github.com/dmitrymomot/featurekit/pkg/logger"
)

// DefaultRoot is the key under which per-feature settings live.
const DefaultRoot = "features"

// Config keys read for every feature.
const (
	KeyEnabledUserIDs     = "enabledUserIds"
	KeyWhitelistedUserIDs = "whitelistedUserIds"
	KeyEnabledProportion  = "enabledProportion"
	KeyEnabled            = "enabled"
)

// Option configures Deciders.
type Option func(*Deciders)

// WithRoot changes the root key, for example to share a file with other settings.
func WithRoot(root string) Option {
	return func(d *Deciders) {
		if root != "" {
			d.root = root
		}
	}
}

// WithLogger sets the logger used to report config values of the wrong shape.
func WithLogger(l *slog.Logger) Option {
	return func(d *Deciders) {
		if l != nil {
			d.logger = l
		}
	}
}

// Deciders builds feature deciders that read their settings from a Config at
// "<root>.<featureID>.<key>". Feature ids containing dots address nested
// mappings, so "checkout.v2" reads "features.checkout.v2.enabled".
type Deciders struct {
	root   string
	logger *slog.Logger
}

// NewDeciders returns a factory rooted at DefaultRoot.
func NewDeciders(opts ...Option) *Deciders {
	d := &Deciders{
		root:   DefaultRoot,
		logger: logger.Discard(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Path returns the config path of key for featureID.
func (d *Deciders) Path(featureID, key string) string {
	return d.root + "." + featureID + "." + key
}

// EnabledUsers enables the users listed under enabledUserIds.
func (d *Deciders) EnabledUsers() feature.Decider[*Config] {
	return feature.EnabledUsers(d.stringList(KeyEnabledUserIDs))
}

// WhitelistedUsers enables the users listed under whitelistedUserIds.
//
// Deprecated: rename the key to enabledUserIds and use EnabledUsers.
func (d *Deciders) WhitelistedUsers() feature.Decider[*Config] {
	return feature.WhitelistedUsers(d.stringList(KeyWhitelistedUserIDs))
}

// ProportionOfUsers rolls a feature out to the share of users set under
// enabledProportion.
func (d *Deciders) ProportionOfUsers() feature.Decider[*Config] {
	return feature.ProportionOfUsers(func(cfg *Config, featureID string) (float64, bool) {
		path := d.Path(featureID, KeyEnabledProportion)
		p, ok := cfg.Float(path)
		if !ok {
			d.reportShape(cfg, path, "number")
		}
		return p, ok
	})
}

// FeatureEnabled turns a feature on for everyone when enabled is true.
func (d *Deciders) FeatureEnabled() feature.Decider[*Config] {
	return feature.FeatureEnabled(func(cfg *Config, featureID string) (bool, bool) {
		path := d.Path(featureID, KeyEnabled)
		v, ok := cfg.Bool(path)
		if !ok {
			d.reportShape(cfg, path, "bool")
		}
		return v, ok
	})
}

// EnabledCustomStringDimension enables a feature when the string dimension
// dimensionKey holds one of the values listed under configKey.
func (d *Deciders) EnabledCustomStringDimension(dimensionKey, configKey string) feature.Decider[*Config] {
	return feature.EnabledCustomDimension(dimensionKey, d.stringList(configKey), feature.WithDeciderLogger(d.logger))
}

// EnabledCustomDimension is EnabledCustomStringDimension for dimensions of
// type V. Config entries are read as strings and converted with conv; entries
// conv rejects are skipped and logged.
func EnabledCustomDimension[V comparable](
	d *Deciders,
	dimensionKey, configKey string,
	conv func(string) (V, error),
) feature.Decider[*Config] {
	raw := d.stringList(configKey)
	values := func(cfg *Config, featureID string) []V {
		strs := raw(cfg, featureID)
		out := make([]V, 0, len(strs))
		for _, s := range strs {
			v, err := conv(s)
			if err != nil {
				d.logger.Warn("skipping unconvertible config value",
					logger.Component("flagconfig"),
					logger.Feature(featureID),
					slog.String("key", configKey),
					slog.String("value", s),
					logger.Error(err),
				)
				continue
			}
			out = append(out, v)
		}
		return out
	}
	return feature.EnabledCustomDimension(dimensionKey, values, feature.WithDeciderLogger(d.logger))
}

func (d *Deciders) stringList(key string) func(*Config, string) []string {
	return func(cfg *Config, featureID string) []string {
		path := d.Path(featureID, key)
		list, ok := cfg.StringList(path)
		if !ok {
			d.reportShape(cfg, path, "list of scalars")
			return nil
		}
		return list
	}
}

// reportShape logs a present value that could not be read as want.
func (d *Deciders) reportShape(cfg *Config, path, want string) {
	if !cfg.Has(path) {
		return
	}
	d.logger.Warn("config value has unexpected shape, treating as absent",
		logger.Component("flagconfig"),
		slog.String("path", path),
		slog.String("want", want),
	)
}
