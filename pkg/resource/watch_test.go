package resource_test

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/featurekit/pkg/resource"
)

func TestWatchFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "flags.yaml")
	other := filepath.Join(dir, "other.yaml")
	require.NoError(t, os.WriteFile(path, []byte("v0"), 0o644))

	var fired atomic.Int64
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		errCh <- resource.WatchFile(ctx, path, func() { fired.Add(1) }, resource.WithDebounce(20*time.Millisecond))
	}()

	// the watcher may not be registered yet, so keep writing until it fires
	assert.Eventually(t, func() bool {
		_ = os.WriteFile(path, []byte("v1"), 0o644)
		return fired.Load() > 0
	}, 2*time.Second, 50*time.Millisecond)

	time.Sleep(50 * time.Millisecond)
	fired.Store(0)

	require.NoError(t, os.WriteFile(other, []byte("x"), 0o644))
	time.Sleep(100 * time.Millisecond)
	assert.Zero(t, fired.Load(), "changes to other files must be ignored")

	for range 5 {
		require.NoError(t, os.WriteFile(path, []byte("burst"), 0o644))
	}
	assert.Eventually(t, func() bool { return fired.Load() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, int64(1), fired.Load(), "a burst of writes fires once")

	cancel()
	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("WatchFile did not return after cancel")
	}
}

func TestWatchFileMissingDirectory(t *testing.T) {
	t.Parallel()

	err := resource.WatchFile(context.Background(), filepath.Join(t.TempDir(), "nope", "flags.yaml"), func() {})
	assert.Error(t, err)
}
