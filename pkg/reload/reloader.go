package reload

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dmitrymomot/featurekit/pkg/async"
	"github.com/dmitrymomot/featurekit/pkg/logger"
)

// Loader starts one attempt to load the resource and returns its future.
// The context is cancelled when the attempt times out or the reloader shuts
// down; loaders should honour it but are not required to.
type Loader[R any] func(ctx context.Context) *async.Future[R]

// Option configures a Reloader.
type Option func(*options)

type options struct {
	logger  *slog.Logger
	name    string
	metrics *Metrics
}

// WithLogger sets the logger used to report failed and timed out loads.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithName sets the resource name used in logs and metric labels.
func WithName(name string) Option {
	return func(o *options) {
		if name != "" {
			o.name = name
		}
	}
}

// WithMetrics records every attempt in m.
func WithMetrics(m *Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// Reloader keeps a single value fresh by periodically calling a Loader on a
// dedicated goroutine and publishing each successfully loaded value.
//
// At most one load attempt is in flight at any time: the next attempt is
// scheduled one ReloadInterval after the previous one resolved, whether it
// succeeded, failed or timed out. Readers never block and always see either
// the value before or after a completed reload.
type Reloader[R any] struct {
	loader   Loader[R]
	settings Settings
	opts     options
	log      *slog.Logger

	value       atomic.Pointer[R]
	lastSuccess atomic.Int64
	attempts    atomic.Uint64

	trigger chan struct{}
	done    chan struct{}

	mu      sync.Mutex
	started bool
	stopped bool
	cancel  context.CancelFunc
}

// New returns a reloader with DefaultSettings whose loop is already running.
// The caller owns its lifecycle and must call Shutdown when done.
// It panics when loader is nil.
func New[R any](loader Loader[R], initial R, opts ...Option) *Reloader[R] {
	r, err := NewWithSettings(loader, initial, DefaultSettings(), opts...)
	if err != nil {
		panic(err)
	}
	return r
}

// NewWithSettings is New with caller-chosen settings.
func NewWithSettings[R any](loader Loader[R], initial R, settings Settings, opts ...Option) (*Reloader[R], error) {
	r, err := NewManual(loader, initial, settings, opts...)
	if err != nil {
		return nil, err
	}
	r.Init()
	return r, nil
}

// NewManual returns a reloader that does nothing until Init is called.
// Use it where the host application drives start and stop itself.
func NewManual[R any](loader Loader[R], initial R, settings Settings, opts ...Option) (*Reloader[R], error) {
	if loader == nil {
		return nil, ErrNilLoader
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	o := options{
		logger: logger.Discard(),
		name:   "resource",
	}
	for _, opt := range opts {
		opt(&o)
	}

	r := &Reloader[R]{
		loader:   loader,
		settings: settings,
		opts:     o,
		log:      o.logger.With(logger.Component("reload"), logger.Resource(o.name)),
		trigger:  make(chan struct{}, 1),
		done:     make(chan struct{}),
	}
	r.value.Store(&initial)
	return r, nil
}

// Value returns the most recently published value, or the initial value
// before the first successful load. It never blocks.
func (r *Reloader[R]) Value() R {
	return *r.value.Load()
}

// LastSuccess returns when a value was last published by a load.
func (r *Reloader[R]) LastSuccess() (time.Time, bool) {
	ns := r.lastSuccess.Load()
	if ns == 0 {
		return time.Time{}, false
	}
	return time.Unix(0, ns), true
}

// Settings returns the settings the reloader was created with.
func (r *Reloader[R]) Settings() Settings {
	return r.settings
}

// Init starts the reload loop. The first attempt runs one ReloadInterval
// later. Calling Init again, or after Shutdown, does nothing.
func (r *Reloader[R]) Init() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.started || r.stopped {
		return
	}
	r.started = true

	ctx, cancel := context.WithCancel(context.Background())
	r.cancel = cancel
	go r.run(ctx)

	r.log.Debug("reload loop started",
		slog.Duration("interval", r.settings.ReloadInterval),
		slog.Duration("timeout", r.settings.LoadTimeout),
	)
}

// Shutdown stops scheduling reloads and waits for the loop to exit. An attempt
// in flight is abandoned; its result is never published. Safe to call more
// than once.
func (r *Reloader[R]) Shutdown() {
	r.mu.Lock()
	if r.stopped {
		r.mu.Unlock()
		<-r.done
		return
	}
	r.stopped = true
	if !r.started {
		close(r.done)
		r.mu.Unlock()
		return
	}
	cancel := r.cancel
	r.mu.Unlock()

	cancel()
	<-r.done
	r.log.Debug("reload loop stopped")
}

// Close calls Shutdown. It implements io.Closer.
func (r *Reloader[R]) Close() error {
	r.Shutdown()
	return nil
}

// Done is closed once the reload loop has exited.
func (r *Reloader[R]) Done() <-chan struct{} {
	return r.done
}

// Trigger asks the loop to run the next attempt now rather than at the end of
// the current interval. A request made while an attempt is in flight runs
// right after that attempt resolves; several pending requests count as one.
func (r *Reloader[R]) Trigger() {
	select {
	case r.trigger <- struct{}{}:
	default:
	}
}

func (r *Reloader[R]) run(ctx context.Context) {
	defer close(r.done)

	timer := time.NewTimer(r.settings.ReloadInterval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		case <-r.trigger:
			timer.Stop()
		}

		if !r.reload(ctx) {
			return
		}

		// a trigger that arrived mid-flight stays pending and wakes the next pass
		timer.Reset(r.settings.ReloadInterval)
	}
}

// reload performs one attempt and reports whether the loop should schedule
// the next one.
func (r *Reloader[R]) reload(ctx context.Context) bool {
	n := r.attempts.Add(1)
	prev := r.value.Load()
	start := time.Now()

	attemptCtx, cancel := context.WithTimeout(ctx, r.settings.LoadTimeout)
	defer cancel()

	v, err := r.await(attemptCtx)
	elapsed := time.Since(start)

	switch {
	case ctx.Err() != nil:
		r.log.Debug("reload abandoned", logger.Attempt(n))
		return false

	case err != nil && errors.Is(attemptCtx.Err(), context.DeadlineExceeded):
		r.opts.metrics.observe(r.opts.name, resultTimeout, elapsed, start)
		r.log.Warn("reload timed out, keeping previous value",
			logger.Attempt(n),
			logger.Duration(elapsed),
			logger.Error(ErrLoadTimeout),
		)
		return true

	case err != nil:
		r.opts.metrics.observe(r.opts.name, resultFailure, elapsed, start)
		r.log.Error("reload failed, keeping previous value",
			logger.Attempt(n),
			logger.Duration(elapsed),
			logger.Error(err),
		)
		return true
	}

	// The loop is the only writer, so a failed swap means the cell was
	// replaced behind its back; stop instead of scheduling a second chain.
	if !r.value.CompareAndSwap(prev, &v) {
		r.log.Error("published value changed during reload, stopping reload loop", logger.Attempt(n))
		return false
	}

	now := time.Now()
	r.lastSuccess.Store(now.UnixNano())
	r.opts.metrics.observe(r.opts.name, resultSuccess, elapsed, now)
	r.log.Debug("reloaded", logger.Attempt(n), logger.Duration(elapsed))
	return true
}

// await invokes the loader and waits for its future within ctx. A panicking
// loader or a nil future counts as a failed attempt.
func (r *Reloader[R]) await(ctx context.Context) (v R, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("reload: loader panicked: %v", p)
		}
	}()

	f := r.loader(ctx)
	if f == nil {
		return v, errors.New("reload: loader returned nil future")
	}
	return f.AwaitContext(ctx)
}
