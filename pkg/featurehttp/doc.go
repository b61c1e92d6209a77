// Package featurehttp exposes feature checks over HTTP.
//
// Handler serves GET /{feature} and answers with the decision for the
// caller's check context:
//
//	r := chi.NewRouter()
//	r.Mount("/features", featurehttp.Handler(checker))
//
//	// GET /features/checkout.v2?country=NL
//	// X-User-ID: alice
//	// => {"feature":"checkout.v2","enabled":true}
//
// Require gates a route on a feature:
//
//	r.With(featurehttp.Require(checker, "getshoelist.allowedIds")).Get("/shoes", listShoes)
//
// DefaultExtractor takes the user id from the X-User-ID header, falling back
// to the user_id query parameter, the check time from the "at" parameter and
// any other query parameter as a string dimension. Supply WithExtractor for
// other request layouts.
package featurehttp
