package featurehttp

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/dmitrymomot/featurekit/pkg/feature"
)

const (
	// HeaderUserID carries the user id of the caller.
	HeaderUserID = "X-User-ID"
	// QueryUserID is the query parameter read when HeaderUserID is absent.
	QueryUserID = "user_id"
	// QueryAt sets the check time as an RFC 3339 timestamp.
	QueryAt = "at"
)

// ErrInvalidContext is returned by extractors for requests that cannot be
// turned into a check context.
var ErrInvalidContext = errors.New("featurehttp: invalid check context")

// ContextExtractor builds the check context for a request.
type ContextExtractor func(r *http.Request) (feature.CheckContext, error)

// DefaultExtractor reads the user id from HeaderUserID or QueryUserID and the
// check time from QueryAt. Every other query parameter becomes a string
// dimension holding its first value.
func DefaultExtractor(r *http.Request) (feature.CheckContext, error) {
	b := feature.NewBuilder()

	userID := r.Header.Get(HeaderUserID)
	if userID == "" {
		userID = r.URL.Query().Get(QueryUserID)
	}
	b.UserID(userID)

	for key, values := range r.URL.Query() {
		if key == QueryUserID || len(values) == 0 {
			continue
		}
		if key == QueryAt {
			at, err := time.Parse(time.RFC3339, values[0])
			if err != nil {
				return feature.CheckContext{}, fmt.Errorf("%w: %s: %w", ErrInvalidContext, QueryAt, err)
			}
			b.DateTime(at)
			continue
		}
		b.Dimension(key, values[0])
	}

	in, err := b.Build()
	if err != nil {
		return feature.CheckContext{}, errors.Join(ErrInvalidContext, err)
	}
	return in, nil
}
