package resource

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/dmitrymomot/featurekit/pkg/logger"
)

// DefaultDebounce is how long WatchFile waits for events to settle.
const DefaultDebounce = 100 * time.Millisecond

// WatchOption configures WatchFile.
type WatchOption func(*watchOptions)

type watchOptions struct {
	debounce time.Duration
	logger   *slog.Logger
}

// WithDebounce sets the quiet period after the last event before onChange runs.
func WithDebounce(d time.Duration) WatchOption {
	return func(o *watchOptions) {
		if d > 0 {
			o.debounce = d
		}
	}
}

// WithWatchLogger sets the logger for watcher events and errors.
func WithWatchLogger(l *slog.Logger) WatchOption {
	return func(o *watchOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// WatchFile calls onChange after path is written, created or renamed, once
// events have been quiet for the debounce period. The parent directory is
// watched so that editors replacing the file atomically are noticed too.
//
// It blocks until ctx is cancelled and then returns nil.
func WatchFile(ctx context.Context, path string, onChange func(), opts ...WatchOption) error {
	o := watchOptions{
		debounce: DefaultDebounce,
		logger:   logger.Discard(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	log := o.logger.With(logger.Component("watch"), slog.String("path", path))

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create fsnotify watcher: %w", err)
	}
	defer w.Close()

	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", path, err)
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}

	d := newDebouncer(o.debounce, onChange)
	defer d.stop()

	log.Debug("watching file", slog.Duration("debounce", o.debounce))

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.Events:
			if !ok {
				return fmt.Errorf("fsnotify events channel closed")
			}
			if !relevant(event, abs) {
				continue
			}
			log.Debug("file event", slog.String("op", event.Op.String()))
			d.trigger()

		case err, ok := <-w.Errors:
			if !ok {
				return fmt.Errorf("fsnotify errors channel closed")
			}
			log.Warn("file watcher error", logger.Error(err))
		}
	}
}

func relevant(event fsnotify.Event, abs string) bool {
	if filepath.Clean(event.Name) != abs {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename)
}

// debouncer runs fn once per burst of triggers.
type debouncer struct {
	interval time.Duration
	fn       func()

	mu      sync.Mutex
	timer   *time.Timer
	stopped bool
}

func newDebouncer(interval time.Duration, fn func()) *debouncer {
	return &debouncer{interval: interval, fn: fn}
}

func (d *debouncer) trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.interval, d.fire)
}

func (d *debouncer) fire() {
	d.mu.Lock()
	stopped := d.stopped
	d.mu.Unlock()

	if !stopped {
		d.fn()
	}
}

func (d *debouncer) stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
	}
}
