package feature

import "reflect"

// DecisionRequest binds one config snapshot, the feature being checked, and the
// check context. It is created per check and never mutated.
type DecisionRequest[C any] struct {
	Config    C
	FeatureID string
	Context   CheckContext
}

// Equal compares two requests by value.
func (r DecisionRequest[C]) Equal(other DecisionRequest[C]) bool {
	return r.FeatureID == other.FeatureID &&
		r.Context.Equal(other.Context) &&
		reflect.DeepEqual(r.Config, other.Config)
}

// Decider decides whether a feature is enabled for a request. Deciders are
// pure: they hold no mutable state and are safe for concurrent use.
type Decider[C any] func(DecisionRequest[C]) bool

// Or returns a decider that is enabled when d or other is enabled.
// other is not evaluated when d already returns true.
func (d Decider[C]) Or(other Decider[C]) Decider[C] {
	return func(req DecisionRequest[C]) bool {
		return d(req) || other(req)
	}
}

// And returns a decider that is enabled when both d and other are enabled.
// other is not evaluated when d already returns false.
func (d Decider[C]) And(other Decider[C]) Decider[C] {
	return func(req DecisionRequest[C]) bool {
		return d(req) && other(req)
	}
}

// Not returns the negation of d.
func (d Decider[C]) Not() Decider[C] {
	return func(req DecisionRequest[C]) bool {
		return !d(req)
	}
}

// AnyOf combines deciders with OR, evaluated left to right.
// With no deciders the result is always false.
func AnyOf[C any](deciders ...Decider[C]) Decider[C] {
	return func(req DecisionRequest[C]) bool {
		for _, d := range deciders {
			if d(req) {
				return true
			}
		}
		return false
	}
}

// AllOf combines deciders with AND, evaluated left to right.
// With no deciders the result is always true.
func AllOf[C any](deciders ...Decider[C]) Decider[C] {
	return func(req DecisionRequest[C]) bool {
		for _, d := range deciders {
			if !d(req) {
				return false
			}
		}
		return true
	}
}

// Always returns a decider with a constant answer.
func Always[C any](enabled bool) Decider[C] {
	return func(DecisionRequest[C]) bool { return enabled }
}

// UserIDCheck applies check to the context's user id.
// A context without a user id is never enabled.
func UserIDCheck(in CheckContext, check func(string) bool) bool {
	id, ok := in.UserID()
	return ok && check(id)
}

// CustomDimensionCheck applies check to the value of the named dimension.
// A context without the dimension is never enabled.
func CustomDimensionCheck(in CheckContext, key string, check func(any) bool) bool {
	v, ok := in.Dimension(key)
	return ok && check(v)
}
