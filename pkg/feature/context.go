package feature

import (
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"reflect"
	"slices"
	"time"
)

// Built-in dimension keys. Custom dimensions must not use them.
const (
	DimensionUserID   = "USER_ID"
	DimensionDateTime = "DATE_TIME"
)

// IsReservedDimension reports whether key is one of the built-in dimension keys.
func IsReservedDimension(key string) bool {
	return key == DimensionUserID || key == DimensionDateTime
}

// CheckContext is the immutable set of dimensions a single feature check is
// evaluated against. The zero value is an empty context.
type CheckContext struct {
	dims map[string]any
}

// ForUser returns a context for userID stamped with the current time.
func ForUser(userID string) CheckContext {
	return ForUserAtTime(userID, time.Now())
}

// ForUserAtTime returns a context for userID stamped with t.
func ForUserAtTime(userID string, t time.Time) CheckContext {
	return NewBuilder().UserID(userID).DateTime(t).MustBuild()
}

// UserID returns the USER_ID dimension.
func (c CheckContext) UserID() (string, bool) {
	id, ok := c.dims[DimensionUserID].(string)
	return id, ok
}

// DateTime returns the DATE_TIME dimension.
func (c CheckContext) DateTime() (time.Time, bool) {
	t, ok := c.dims[DimensionDateTime].(time.Time)
	return t, ok
}

// Dimension returns the value stored under key. A missing key is reported
// through ok and never panics.
func (c CheckContext) Dimension(key string) (any, bool) {
	v, ok := c.dims[key]
	return v, ok
}

// Keys returns the dimension keys in sorted order.
func (c CheckContext) Keys() []string {
	return slices.Sorted(maps.Keys(c.dims))
}

// Builder returns a builder pre-populated with this context's dimensions.
// Built-in dimensions land in the builder's UserID and DateTime slots, so they
// can be replaced or cleared.
func (c CheckContext) Builder() *Builder {
	b := NewBuilder()
	for k, v := range c.dims {
		switch k {
		case DimensionUserID:
			b.userID, _ = v.(string)
		case DimensionDateTime:
			b.dateTime, _ = v.(time.Time)
		default:
			b.dims[k] = v
		}
	}
	return b
}

// WithAdditionalDimensions returns a new context with additional layered over
// the receiver. On key collision the additional value wins.
func (c CheckContext) WithAdditionalDimensions(additional map[string]any) (CheckContext, error) {
	return c.Builder().Dimensions(additional).Build()
}

// Equal reports whether both contexts hold the same dimensions.
func (c CheckContext) Equal(other CheckContext) bool {
	if len(c.dims) != len(other.dims) {
		return false
	}
	for k, v := range c.dims {
		ov, ok := other.dims[k]
		if !ok || !reflect.DeepEqual(v, ov) {
			return false
		}
	}
	return true
}

// LogValue implements slog.LogValuer.
func (c CheckContext) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(c.dims))
	for _, k := range c.Keys() {
		attrs = append(attrs, slog.Any(k, c.dims[k]))
	}
	return slog.GroupValue(attrs...)
}

func (c CheckContext) String() string {
	return fmt.Sprintf("CheckContext%v", c.dims)
}

// Builder assembles a CheckContext. It is not safe for concurrent use;
// the built context is.
type Builder struct {
	dims     map[string]any
	userID   string
	dateTime time.Time
	errs     []error
}

// NewBuilder returns an empty builder.
func NewBuilder() *Builder {
	return &Builder{dims: make(map[string]any)}
}

// UserID sets the USER_ID dimension. An empty id leaves it unset.
func (b *Builder) UserID(id string) *Builder {
	b.userID = id
	return b
}

// DateTime sets the DATE_TIME dimension. A zero time leaves it unset.
func (b *Builder) DateTime(t time.Time) *Builder {
	b.dateTime = t
	return b
}

// Dimension sets a custom dimension. Using a built-in key is recorded as an
// error and reported by Build.
func (b *Builder) Dimension(key string, value any) *Builder {
	if IsReservedDimension(key) {
		b.errs = append(b.errs, fmt.Errorf("%w: %q", ErrInvalidDimensionKey, key))
		return b
	}
	b.dims[key] = value
	return b
}

// Dimensions merges every entry of dims as a custom dimension.
func (b *Builder) Dimensions(dims map[string]any) *Builder {
	for _, k := range slices.Sorted(maps.Keys(dims)) {
		b.Dimension(k, dims[k])
	}
	return b
}

// Build finalizes the context. It fails with ErrInvalidDimensionKey when a
// custom dimension used a built-in key.
func (b *Builder) Build() (CheckContext, error) {
	if len(b.errs) > 0 {
		return CheckContext{}, errors.Join(b.errs...)
	}

	dims := maps.Clone(b.dims)
	if b.userID != "" {
		dims[DimensionUserID] = b.userID
	}
	if !b.dateTime.IsZero() {
		dims[DimensionDateTime] = b.dateTime
	}
	return CheckContext{dims: dims}, nil
}

// MustBuild is Build that panics on error.
func (b *Builder) MustBuild() CheckContext {
	c, err := b.Build()
	if err != nil {
		panic(err)
	}
	return c
}
