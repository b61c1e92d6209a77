package reload_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/featurekit/pkg/async"
	"github.com/dmitrymomot/featurekit/pkg/logger"
	"github.com/dmitrymomot/featurekit/pkg/reload"
)

// syncBuffer is written by the reload goroutine and read by the test.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func fastSettings() reload.Settings {
	return reload.Settings{ReloadInterval: 10 * time.Millisecond, LoadTimeout: time.Second}
}

func counterLoader(calls *atomic.Int64) reload.Loader[int64] {
	return func(ctx context.Context) *async.Future[int64] {
		return async.Completed(calls.Add(1))
	}
}

func TestNewValidation(t *testing.T) {
	t.Parallel()

	t.Run("nil loader", func(t *testing.T) {
		t.Parallel()
		_, err := reload.NewManual[int](nil, 0, reload.DefaultSettings())
		assert.ErrorIs(t, err, reload.ErrNilLoader)
		assert.Panics(t, func() { reload.New[int](nil, 0) })
	})

	t.Run("invalid settings", func(t *testing.T) {
		t.Parallel()
		loader := func(ctx context.Context) *async.Future[int] { return async.Completed(1) }

		for _, s := range []reload.Settings{
			{ReloadInterval: 0, LoadTimeout: time.Second},
			{ReloadInterval: time.Second, LoadTimeout: 0},
			{ReloadInterval: -time.Second, LoadTimeout: time.Second},
		} {
			_, err := reload.NewWithSettings(loader, 0, s)
			assert.ErrorIs(t, err, reload.ErrInvalidSettings, "%+v", s)
		}
	})
}

func TestReloaderInitialValue(t *testing.T) {
	t.Parallel()

	var calls atomic.Int64
	r, err := reload.NewManual(counterLoader(&calls), -1, fastSettings())
	require.NoError(t, err)

	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, int64(-1), r.Value())
	assert.Zero(t, calls.Load(), "loader must not run before Init")

	_, ok := r.LastSuccess()
	assert.False(t, ok)
	r.Shutdown()
}

func TestReloaderPublishes(t *testing.T) {
	t.Parallel()

	var calls atomic.Int64
	r, err := reload.NewWithSettings(counterLoader(&calls), 0, fastSettings())
	require.NoError(t, err)
	t.Cleanup(r.Shutdown)

	assert.Eventually(t, func() bool { return r.Value() >= 3 }, time.Second, 5*time.Millisecond)

	at, ok := r.LastSuccess()
	assert.True(t, ok)
	assert.WithinDuration(t, time.Now(), at, time.Second)
}

func TestReloaderKeepsValueOnFailure(t *testing.T) {
	t.Parallel()

	var calls atomic.Int64
	out := &syncBuffer{}
	log := logger.New(logger.WithOutput(out), logger.WithLevel(slog.LevelDebug))

	loader := func(ctx context.Context) *async.Future[string] {
		calls.Add(1)
		return async.Failed[string](errors.New("bucket unavailable"))
	}
	r, err := reload.NewWithSettings(loader, "initial", fastSettings(),
		reload.WithLogger(log), reload.WithName("flags"))
	require.NoError(t, err)
	t.Cleanup(r.Shutdown)

	assert.Eventually(t, func() bool { return calls.Load() >= 3 }, time.Second, 5*time.Millisecond,
		"failed attempts must reschedule")
	assert.Equal(t, "initial", r.Value())

	logs := out.String()
	assert.Contains(t, logs, "reload failed")
	assert.Contains(t, logs, "bucket unavailable")
	assert.Contains(t, logs, `"resource":"flags"`)
}

func TestReloaderTimeout(t *testing.T) {
	t.Parallel()

	var calls atomic.Int64
	out := &syncBuffer{}
	log := logger.New(logger.WithOutput(out))

	block := make(chan struct{})
	t.Cleanup(func() { close(block) })

	// ignores ctx and only returns once the test is over
	loader := func(ctx context.Context) *async.Future[string] {
		calls.Add(1)
		return async.Go(context.Background(), func(context.Context) (string, error) {
			<-block
			return "too late", nil
		})
	}
	r, err := reload.NewWithSettings(loader, "initial", reload.Settings{
		ReloadInterval: 5 * time.Millisecond,
		LoadTimeout:    10 * time.Millisecond,
	}, reload.WithLogger(log))
	require.NoError(t, err)
	t.Cleanup(r.Shutdown)

	assert.Eventually(t, func() bool { return calls.Load() >= 2 }, time.Second, 5*time.Millisecond,
		"timed out attempts must reschedule")
	assert.Equal(t, "initial", r.Value())
	assert.Contains(t, out.String(), reload.ErrLoadTimeout.Error())
}

func TestReloaderLoaderPanic(t *testing.T) {
	t.Parallel()

	var calls atomic.Int64
	loader := func(ctx context.Context) *async.Future[int64] {
		if calls.Add(1) == 1 {
			panic("boom")
		}
		return async.Completed(calls.Load())
	}
	r, err := reload.NewWithSettings(loader, 0, fastSettings())
	require.NoError(t, err)
	t.Cleanup(r.Shutdown)

	assert.Eventually(t, func() bool { return r.Value() >= 2 }, time.Second, 5*time.Millisecond)
}

func TestReloaderSequence(t *testing.T) {
	t.Parallel()

	results := []struct {
		v   string
		err error
	}{
		{err: errors.New("first load fails")},
		{v: "v1"},
		{v: "v2"},
	}

	var calls atomic.Int64
	loader := func(ctx context.Context) *async.Future[string] {
		i := min(int(calls.Add(1))-1, len(results)-1)
		if results[i].err != nil {
			return async.Failed[string](results[i].err)
		}
		return async.Completed(results[i].v)
	}

	r, err := reload.NewManual(loader, "v0", reload.Settings{
		ReloadInterval: 100 * time.Millisecond,
		LoadTimeout:    50 * time.Millisecond,
	})
	require.NoError(t, err)
	r.Init()
	t.Cleanup(r.Shutdown)

	var seen []string
	for range 4 {
		time.Sleep(50 * time.Millisecond)
		seen = append(seen, r.Value())
		time.Sleep(50 * time.Millisecond)
	}

	assert.Equal(t, []string{"v0", "v0", "v1", "v2"}, seen)
}

func TestReloaderSingleFlight(t *testing.T) {
	t.Parallel()

	type span struct{ start, end time.Time }
	var (
		mu    sync.Mutex
		spans []span
	)

	loader := func(ctx context.Context) *async.Future[int] {
		return async.Go(ctx, func(ctx context.Context) (int, error) {
			s := span{start: time.Now()}
			time.Sleep(15 * time.Millisecond)
			s.end = time.Now()

			mu.Lock()
			spans = append(spans, s)
			n := len(spans)
			mu.Unlock()
			return n, nil
		})
	}

	r, err := reload.NewWithSettings(loader, 0, reload.Settings{
		ReloadInterval: time.Millisecond,
		LoadTimeout:    time.Second,
	})
	require.NoError(t, err)

	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-stop:
				return
			default:
				r.Trigger()
				time.Sleep(100 * time.Microsecond)
			}
		}
	}()

	time.Sleep(200 * time.Millisecond)
	close(stop)
	wg.Wait()
	r.Shutdown()

	mu.Lock()
	defer mu.Unlock()
	require.GreaterOrEqual(t, len(spans), 2)
	for i := 1; i < len(spans); i++ {
		assert.False(t, spans[i].start.Before(spans[i-1].end),
			"attempt %d started before attempt %d finished", i, i-1)
	}
}

func TestReloaderTrigger(t *testing.T) {
	t.Parallel()

	var calls atomic.Int64
	r := reload.New(counterLoader(&calls), 0)
	t.Cleanup(r.Shutdown)

	r.Trigger()
	assert.Eventually(t, func() bool { return r.Value() == 1 }, time.Second, 5*time.Millisecond)

	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int64(1), calls.Load(), "the next attempt waits a full interval")
}

func TestReloaderTriggerDuringAttempt(t *testing.T) {
	t.Parallel()

	var calls atomic.Int64
	inFlight := make(chan struct{}, 1)
	loader := func(ctx context.Context) *async.Future[int64] {
		n := calls.Add(1)
		return async.Go(ctx, func(context.Context) (int64, error) {
			select {
			case inFlight <- struct{}{}:
			default:
			}
			time.Sleep(50 * time.Millisecond)
			return n, nil
		})
	}
	r, err := reload.NewWithSettings(loader, 0, reload.Settings{ReloadInterval: time.Hour, LoadTimeout: time.Second})
	require.NoError(t, err)
	t.Cleanup(r.Shutdown)

	r.Trigger()
	<-inFlight
	r.Trigger()

	assert.Eventually(t, func() bool { return r.Value() == 2 }, time.Second, 5*time.Millisecond,
		"a trigger received mid-flight runs once the attempt resolves")
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int64(2), calls.Load(), "pending triggers collapse into one attempt")
}

func TestReloaderAsyncPanic(t *testing.T) {
	t.Parallel()

	var calls atomic.Int64
	loader := func(ctx context.Context) *async.Future[int64] {
		n := calls.Add(1)
		return async.Go(ctx, func(context.Context) (int64, error) {
			if n == 1 {
				var m map[string]int64
				m["n"] = n
			}
			return n, nil
		})
	}
	out := &syncBuffer{}
	r, err := reload.NewWithSettings(loader, 0, fastSettings(),
		reload.WithLogger(logger.New(logger.WithOutput(out))))
	require.NoError(t, err)
	t.Cleanup(r.Shutdown)

	assert.Eventually(t, func() bool { return r.Value() >= 2 }, time.Second, 5*time.Millisecond)
	assert.Contains(t, out.String(), "async: function panicked")
}

func TestReloaderShutdown(t *testing.T) {
	t.Parallel()

	t.Run("in-flight result is discarded", func(t *testing.T) {
		t.Parallel()

		started := make(chan struct{})
		release := make(chan struct{})
		var once sync.Once
		loader := func(ctx context.Context) *async.Future[string] {
			return async.Go(context.Background(), func(context.Context) (string, error) {
				once.Do(func() { close(started) })
				<-release
				return "late", nil
			})
		}

		r, err := reload.NewWithSettings(loader, "initial", reload.Settings{
			ReloadInterval: time.Millisecond,
			LoadTimeout:    time.Minute,
		})
		require.NoError(t, err)

		<-started
		shutdown := make(chan struct{})
		go func() {
			r.Shutdown()
			close(shutdown)
		}()

		select {
		case <-shutdown:
		case <-time.After(time.Second):
			t.Fatal("Shutdown blocked on an in-flight load")
		}

		close(release)
		time.Sleep(20 * time.Millisecond)
		assert.Equal(t, "initial", r.Value())
	})

	t.Run("idempotent", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int64
		r, err := reload.NewWithSettings(counterLoader(&calls), 0, fastSettings())
		require.NoError(t, err)

		r.Shutdown()
		r.Shutdown()
		require.NoError(t, r.Close())

		select {
		case <-r.Done():
		default:
			t.Fatal("Done must be closed after Shutdown")
		}

		n := calls.Load()
		r.Init()
		time.Sleep(30 * time.Millisecond)
		assert.Equal(t, n, calls.Load(), "Init after Shutdown must not restart the loop")
	})

	t.Run("never started", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int64
		r, err := reload.NewManual(counterLoader(&calls), 0, fastSettings())
		require.NoError(t, err)

		r.Shutdown()
		<-r.Done()
		assert.Zero(t, calls.Load())
	})

	t.Run("double init runs one loop", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int64
		loader := func(ctx context.Context) *async.Future[int64] {
			return async.Go(ctx, func(context.Context) (int64, error) {
				time.Sleep(5 * time.Millisecond)
				return calls.Add(1), nil
			})
		}
		r, err := reload.NewManual(loader, 0, reload.Settings{
			ReloadInterval: 20 * time.Millisecond,
			LoadTimeout:    time.Second,
		})
		require.NoError(t, err)
		r.Init()
		r.Init()

		time.Sleep(110 * time.Millisecond)
		r.Shutdown()
		// one loop runs at most one attempt per 25ms
		assert.LessOrEqual(t, calls.Load(), int64(5))
	})
}
