package feature

import (
	"fmt"
	"log/slog"
	"math"
	"slices"

	"github.com/cespare/xxhash/v2"

	"github.com/dmitrymomot/featurekit/pkg/logger"
)

// EnabledValues builds a membership decider. values extracts the allowed
// values for a feature from the config, and check feeds the context value
// under test to a membership predicate. A missing config entry is an empty
// collection and therefore disabled.
func EnabledValues[C any, V comparable](
	values func(cfg C, featureID string) []V,
	check func(in CheckContext, member func(V) bool) bool,
) Decider[C] {
	return func(req DecisionRequest[C]) bool {
		return check(req.Context, func(v V) bool {
			return slices.Contains(values(req.Config, req.FeatureID), v)
		})
	}
}

// EnabledUsers enables a feature for the user ids listed for it in the config.
// A context without a user id is disabled.
func EnabledUsers[C any](users func(cfg C, featureID string) []string) Decider[C] {
	return EnabledValues(users, UserIDCheck)
}

// WhitelistedUsers has the same semantics as EnabledUsers.
//
// Deprecated: use EnabledUsers.
func WhitelistedUsers[C any](users func(cfg C, featureID string) []string) Decider[C] {
	return EnabledUsers(users)
}

// ProportionOfUsers enables a feature for a stable proportion of users.
//
// proportion returns the target share in [0, 1] for a feature, or false when
// none is configured, in which case every user is disabled. Values outside
// the range are clamped. A user is enabled when UserBucket(userID, featureID)
// is below the proportion, so raising the proportion only ever adds users.
func ProportionOfUsers[C any](proportion func(cfg C, featureID string) (float64, bool)) Decider[C] {
	return func(req DecisionRequest[C]) bool {
		return UserIDCheck(req.Context, func(userID string) bool {
			p, ok := proportion(req.Config, req.FeatureID)
			if !ok {
				return false
			}
			return UserBucket(userID, req.FeatureID) < clampProportion(p)
		})
	}
}

// UserBucket maps a user and feature to one of 100 buckets expressed as a
// fraction in [0, 0.99]. It is xxHash64 (seed 0) of the UTF-8 bytes of
// userID+featureID, modulo 100, divided by 100.
//
// The function is part of the rollout contract: changing it reshuffles which
// users see a partially rolled out feature.
func UserBucket(userID, featureID string) float64 {
	return float64(xxhash.Sum64String(userID+featureID)%100) / 100.0
}

func clampProportion(p float64) float64 {
	switch {
	case math.IsNaN(p), p < 0:
		return 0
	case p > 1:
		return 1
	default:
		return p
	}
}

// FeatureEnabled enables a feature when the config holds an explicit true for it.
func FeatureEnabled[C any](enabled func(cfg C, featureID string) (bool, bool)) Decider[C] {
	return func(req DecisionRequest[C]) bool {
		v, ok := enabled(req.Config, req.FeatureID)
		return ok && v
	}
}

// DeciderOption configures deciders that report problems through logging.
type DeciderOption func(*deciderOptions)

type deciderOptions struct {
	logger *slog.Logger
}

// WithDeciderLogger sets the logger used to report mismatched dimension types.
func WithDeciderLogger(l *slog.Logger) DeciderOption {
	return func(o *deciderOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// EnabledCustomDimension enables a feature when the named custom dimension
// holds one of the values configured for the feature.
//
// A dimension value whose runtime type is not V does not match; it is logged
// at warn level rather than failing the check.
func EnabledCustomDimension[C any, V comparable](
	dimensionKey string,
	values func(cfg C, featureID string) []V,
	opts ...DeciderOption,
) Decider[C] {
	o := &deciderOptions{logger: logger.Discard()}
	for _, opt := range opts {
		opt(o)
	}

	check := func(in CheckContext, member func(V) bool) bool {
		return CustomDimensionCheck(in, dimensionKey, func(raw any) bool {
			v, ok := raw.(V)
			if !ok {
				var want V
				o.logger.Warn("mismatched dimension type",
					logger.Component("feature"),
					logger.Dimension(dimensionKey),
					slog.String("got", fmt.Sprintf("%T", raw)),
					slog.String("want", fmt.Sprintf("%T", want)),
				)
				return false
			}
			return member(v)
		})
	}

	return EnabledValues(values, check)
}
