package resource

import (
	"context"
	"fmt"
	"os"

	"github.com/dmitrymomot/featurekit/pkg/reload"
)

// File reads the whole file at path as a UTF-8 string on every call.
func File(path string) Supplier[string] {
	return func(ctx context.Context) (string, error) {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		b, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("%w: read %s: %w", ErrLoadFailed, path, err)
		}
		return string(b), nil
	}
}

// FileLoader is AsyncLoader(File(path)).
func FileLoader(path string) reload.Loader[string] {
	return AsyncLoader(File(path))
}
