// Package feature decides whether a named feature is on for a given request.
//
// # Architecture
//
// A decision is made from three inputs bundled into a DecisionRequest:
//
//  1. Config - an opaque snapshot of the caller's feature configuration (type C)
//  2. FeatureID - the feature being checked
//  3. CheckContext - the dimensions of the request (user id, time, custom keys)
//
// A Decider is a plain function from DecisionRequest to bool. The package
// ships reusable deciders that close over small extraction functions, so they
// work with any config representation:
//
//   - EnabledUsers / WhitelistedUsers - user id listed for the feature
//   - ProportionOfUsers - stable percentage rollout keyed by user and feature
//   - FeatureEnabled - explicit boolean switch
//   - EnabledValues / EnabledCustomDimension - membership of any dimension
//
// Deciders compose with Or, And, AnyOf and AllOf. ConfigChecker ties a decider
// to a config Supplier, typically the Value method of a reload.Reloader.
//
// # Usage
//
//	users := func(cfg Flags, feature string) []string { return cfg[feature].Users }
//	share := func(cfg Flags, feature string) (float64, bool) {
//		f, ok := cfg[feature]
//		return f.Proportion, ok
//	}
//
//	checker := feature.ForReloader(reloader,
//		feature.EnabledUsers(users).Or(feature.ProportionOfUsers(share)),
//	)
//
//	if checker.IsFeatureEnabled("new-checkout", feature.ForUser(userID)) {
//		// new flow
//	}
//
// # Check contexts
//
// USER_ID and DATE_TIME are built in. Custom dimensions are free-form, but a
// custom key equal to a built-in one makes Builder.Build fail with
// ErrInvalidDimensionKey:
//
//	in, err := feature.NewBuilder().
//		UserID("alice").
//		Dimension("country", "NL").
//		Build()
//
// # Proportional rollout
//
// ProportionOfUsers places every user in one of 100 buckets with UserBucket
// (xxHash64 of userID+featureID). The same user always lands in the same
// bucket for a feature and raising the proportion only adds users. The hash is
// part of the rollout contract and must not change.
//
// # Error Handling
//
// Checks never fail: missing config, missing dimensions and mismatched
// dimension types all evaluate to false. The only error is
// ErrInvalidDimensionKey at context build time.
package feature
