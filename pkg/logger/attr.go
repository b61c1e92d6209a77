package logger

import (
	"log/slog"
	"time"
)

// Error creates an attribute for a single error under the key "error".
// If err is nil, it returns an empty Attr.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// Component records the component name under the key "component".
func Component(name string) slog.Attr {
	return slog.String("component", name)
}

// Feature records the feature identifier under the key "feature".
func Feature(id string) slog.Attr {
	return slog.String("feature", id)
}

// Resource records the name of a reloadable resource under the key "resource".
func Resource(name string) slog.Attr {
	return slog.String("resource", name)
}

// Dimension records a check-context dimension key under the key "dimension".
func Dimension(key string) slog.Attr {
	return slog.String("dimension", key)
}

// UserID records the user identifier under the key "user_id".
// If id is empty, it returns an empty Attr.
func UserID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("user_id", id)
}

// Duration records a duration under the key "duration".
func Duration(d time.Duration) slog.Attr {
	return slog.Duration("duration", d)
}

// Attempt records a reload attempt sequence number under the key "attempt".
func Attempt(n uint64) slog.Attr {
	return slog.Uint64("attempt", n)
}
