package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/featurekit/pkg/config"
)

type testSettings struct {
	Name     string        `env:"CFG_TEST_NAME" envDefault:"default_value"`
	Interval time.Duration `env:"CFG_TEST_INTERVAL" envDefault:"60s"`
	Users    []string      `env:"CFG_TEST_USERS" envSeparator:","`
}

type requiredSettings struct {
	Required string `env:"CFG_TEST_REQUIRED,required"`
}

func writeEnvFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		var cfg testSettings
		require.NoError(t, config.Load(&cfg))
		assert.Equal(t, "default_value", cfg.Name)
		assert.Equal(t, time.Minute, cfg.Interval)
		assert.Empty(t, cfg.Users)
	})

	t.Run("environment values", func(t *testing.T) {
		t.Setenv("CFG_TEST_NAME", "flags")
		t.Setenv("CFG_TEST_INTERVAL", "250ms")
		t.Setenv("CFG_TEST_USERS", "alice,bob")

		var cfg testSettings
		require.NoError(t, config.Load(&cfg))
		assert.Equal(t, "flags", cfg.Name)
		assert.Equal(t, 250*time.Millisecond, cfg.Interval)
		assert.Equal(t, []string{"alice", "bob"}, cfg.Users)
	})

	t.Run("missing required", func(t *testing.T) {
		var cfg requiredSettings
		err := config.Load(&cfg)
		require.ErrorIs(t, err, config.ErrParsingConfig)
	})

	t.Run("nil pointer", func(t *testing.T) {
		require.ErrorIs(t, config.Load[testSettings](nil), config.ErrNilPointer)
	})

	t.Run("must load panics", func(t *testing.T) {
		assert.Panics(t, func() {
			var cfg requiredSettings
			config.MustLoad(&cfg)
		})
	})
}

func TestLoadEnv(t *testing.T) {
	t.Run("first file wins", func(t *testing.T) {
		first := writeEnvFile(t, "CFG_TEST_REQUIRED=from_first\n")
		second := writeEnvFile(t, "CFG_TEST_REQUIRED=from_second\n")
		t.Cleanup(func() { os.Unsetenv("CFG_TEST_REQUIRED") })

		require.NoError(t, config.LoadEnv(first, second))

		var cfg requiredSettings
		require.NoError(t, config.Load(&cfg))
		assert.Equal(t, "from_first", cfg.Required)
	})

	t.Run("missing file", func(t *testing.T) {
		err := config.LoadEnv(filepath.Join(t.TempDir(), "nope.env"))
		require.ErrorIs(t, err, config.ErrLoadingEnvFile)
		assert.Panics(t, func() {
			config.MustLoadEnv(filepath.Join(t.TempDir(), "nope.env"))
		})
	})
}
