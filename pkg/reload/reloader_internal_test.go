package reload

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/featurekit/pkg/async"
)

func TestReloaderStopsWhenValueReplaced(t *testing.T) {
	t.Parallel()

	var r *Reloader[string]
	intruder := "intruder"
	loader := func(ctx context.Context) *async.Future[string] {
		r.value.Store(&intruder)
		return async.Completed("loaded")
	}

	var err error
	r, err = NewManual(loader, "initial", Settings{
		ReloadInterval: 5 * time.Millisecond,
		LoadTimeout:    time.Second,
	})
	require.NoError(t, err)
	r.Init()
	t.Cleanup(r.Shutdown)

	select {
	case <-r.Done():
	case <-time.After(time.Second):
		t.Fatal("loop kept running after the published value was replaced")
	}
	assert.Equal(t, "intruder", r.Value())
	_, ok := r.LastSuccess()
	assert.False(t, ok)
}

func TestMetrics(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	m, err := NewMetrics(reg, "featurekit")
	require.NoError(t, err)

	_, err = NewMetrics(reg, "featurekit")
	assert.Error(t, err, "registering twice must fail")

	calls := 0
	loader := func(ctx context.Context) *async.Future[int] {
		calls++
		if calls%2 == 1 {
			return async.Failed[int](errors.New("flaky"))
		}
		return async.Completed(calls)
	}

	r, err := NewWithSettings(loader, 0, Settings{
		ReloadInterval: 5 * time.Millisecond,
		LoadTimeout:    time.Second,
	}, WithMetrics(m), WithName("flags"))
	require.NoError(t, err)

	assert.Eventually(t, func() bool { return r.Value() >= 4 }, time.Second, 5*time.Millisecond)
	r.Shutdown()

	success := testutil.ToFloat64(m.attempts.WithLabelValues("flags", resultSuccess))
	failure := testutil.ToFloat64(m.attempts.WithLabelValues("flags", resultFailure))
	assert.GreaterOrEqual(t, success, 2.0)
	assert.GreaterOrEqual(t, failure, 2.0)
	assert.Zero(t, testutil.ToFloat64(m.attempts.WithLabelValues("flags", resultTimeout)))
	assert.Positive(t, testutil.ToFloat64(m.lastSuccess.WithLabelValues("flags")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.duration))
}

func TestMetricsNilSafe(t *testing.T) {
	t.Parallel()

	var m *Metrics
	assert.NotPanics(t, func() { m.observe("flags", resultSuccess, time.Millisecond, time.Now()) })

	m, err := NewMetrics(nil, "")
	require.NoError(t, err)
	m.observe("flags", resultTimeout, time.Millisecond, time.Now())
	assert.Equal(t, 1.0, testutil.ToFloat64(m.attempts.WithLabelValues("flags", resultTimeout)))
}
