package feature

// Checker answers whether a feature is enabled for a check context.
type Checker interface {
	IsFeatureEnabled(featureID string, in CheckContext) bool
}

// Supplier returns the current config snapshot. It must not block.
type Supplier[C any] func() C

// Static returns a supplier that always yields cfg.
func Static[C any](cfg C) Supplier[C] {
	return func() C { return cfg }
}

// ValueSource is anything publishing a current value, such as *reload.Reloader.
type ValueSource[C any] interface {
	Value() C
}

// ConfigChecker evaluates a decider against the config currently returned by
// its supplier. It does no caching of its own; freshness is owned by the
// supplier.
type ConfigChecker[C any] struct {
	config  Supplier[C]
	decider Decider[C]
}

var _ Checker = (*ConfigChecker[struct{}])(nil)

// ForSupplier creates a checker reading config from an arbitrary supplier.
func ForSupplier[C any](config Supplier[C], decider Decider[C]) *ConfigChecker[C] {
	return &ConfigChecker[C]{config: config, decider: decider}
}

// ForReloader creates a checker reading the last value published by src.
func ForReloader[C any](src ValueSource[C], decider Decider[C]) *ConfigChecker[C] {
	return ForSupplier(src.Value, decider)
}

// IsFeatureEnabled builds a DecisionRequest from the current config snapshot
// and applies the decider. A panicking decider propagates to the caller.
func (c *ConfigChecker[C]) IsFeatureEnabled(featureID string, in CheckContext) bool {
	return c.decider(DecisionRequest[C]{
		Config:    c.config(),
		FeatureID: featureID,
		Context:   in,
	})
}
