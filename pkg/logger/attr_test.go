package logger_test

import (
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/featurekit/pkg/logger"
)

func TestAttrs(t *testing.T) {
	t.Parallel()

	assert.Equal(t, slog.Attr{}, logger.Error(nil))
	assert.Equal(t, "error", logger.Error(errors.New("x")).Key)

	assert.Equal(t, slog.Attr{}, logger.UserID(""))
	assert.Equal(t, "alice", logger.UserID("alice").Value.String())

	assert.Equal(t, "feature", logger.Feature("x").Key)
	assert.Equal(t, "resource", logger.Resource("flags").Key)
	assert.Equal(t, "component", logger.Component("reload").Key)
	assert.Equal(t, "dimension", logger.Dimension("country").Key)
	assert.Equal(t, time.Second, logger.Duration(time.Second).Value.Duration())
	assert.Equal(t, uint64(3), logger.Attempt(3).Value.Uint64())
}
