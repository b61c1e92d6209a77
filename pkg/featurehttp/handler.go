package featurehttp

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/featurekit/pkg/feature"
	"github.com/dmitrymomot/featurekit/pkg/logger"
)

// Decision is the body returned by Handler.
type Decision struct {
	Feature string `json:"feature"`
	Enabled bool   `json:"enabled"`
}

// ErrorDetail is the body returned for rejected requests.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error ErrorDetail `json:"error"`
}

// Option configures Handler and Require.
type Option func(*options)

type options struct {
	extractor ContextExtractor
	logger    *slog.Logger
	fallback  http.Handler
}

// WithExtractor replaces DefaultExtractor.
func WithExtractor(e ContextExtractor) Option {
	return func(o *options) {
		if e != nil {
			o.extractor = e
		}
	}
}

// WithLogger sets the logger for decisions and rejected requests.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithFallback sets the handler Require serves when the feature is off.
// The default responds 404.
func WithFallback(h http.Handler) Option {
	return func(o *options) { o.fallback = h }
}

func newOptions(opts []Option) *options {
	o := &options{
		extractor: DefaultExtractor,
		logger:    logger.Discard(),
		fallback:  http.NotFoundHandler(),
	}
	for _, opt := range opts {
		opt(o)
	}
	o.logger = o.logger.With(logger.Component("featurehttp"))
	return o
}

// Handler answers GET /{feature} with a JSON Decision for the request's
// check context. Mount it under a prefix with chi's Mount.
//
// Extractor errors wrapping ErrInvalidContext answer 400, any other
// extractor error answers 500.
func Handler(checker feature.Checker, opts ...Option) http.Handler {
	o := newOptions(opts)

	r := chi.NewRouter()
	r.Get("/{feature}", func(w http.ResponseWriter, r *http.Request) {
		featureID := chi.URLParam(r, "feature")

		in, err := o.extractor(r)
		if err != nil {
			o.logger.DebugContext(r.Context(), "rejected feature check",
				logger.Feature(featureID),
				logger.Error(err),
			)
			writeContextError(w, err)
			return
		}

		enabled := checker.IsFeatureEnabled(featureID, in)
		o.logger.DebugContext(r.Context(), "feature checked",
			logger.Feature(featureID),
			slog.Bool("enabled", enabled),
			slog.Any("context", in),
		)
		writeJSON(w, http.StatusOK, Decision{Feature: featureID, Enabled: enabled})
	})
	return r
}

// Require is middleware that serves next only when featureID is enabled for
// the request. Otherwise it serves the fallback handler.
func Require(checker feature.Checker, featureID string, opts ...Option) func(http.Handler) http.Handler {
	o := newOptions(opts)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			in, err := o.extractor(r)
			if err != nil {
				o.logger.DebugContext(r.Context(), "rejected feature check",
					logger.Feature(featureID),
					logger.Error(err),
				)
				writeContextError(w, err)
				return
			}

			if !checker.IsFeatureEnabled(featureID, in) {
				o.fallback.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeContextError(w http.ResponseWriter, err error) {
	if errors.Is(err, ErrInvalidContext) {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: ErrorDetail{
			Code:    "invalid_context",
			Message: err.Error(),
		}})
		return
	}
	writeJSON(w, http.StatusInternalServerError, errorResponse{Error: ErrorDetail{
		Code:    "internal_error",
		Message: http.StatusText(http.StatusInternalServerError),
	}})
}
