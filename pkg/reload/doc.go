// Package reload keeps an in-memory copy of a remote resource fresh.
//
// A Reloader owns one background goroutine that calls a Loader every
// ReloadInterval and publishes each successfully loaded value through an
// atomic pointer. Readers call Value and never block; they observe either the
// value before a reload or the value after it, never a partial one.
//
// Attempts are strictly sequential. The next attempt is scheduled only after
// the previous one resolved, so a slow loader stretches the period instead of
// piling up requests. An attempt that fails, panics or exceeds LoadTimeout is
// logged and the previous value stays in place.
//
// # Usage
//
//	r, err := reload.NewWithSettings(loader, flagconfig.Empty(), reload.Settings{
//	    ReloadInterval: 30 * time.Second,
//	    LoadTimeout:    5 * time.Second,
//	}, reload.WithLogger(log), reload.WithName("flags"))
//	if err != nil {
//	    return err
//	}
//	defer r.Shutdown()
//
//	cfg := r.Value()
//
// # Lifecycle
//
// New and NewWithSettings start the loop immediately. NewManual returns an
// idle reloader for hosts that call Init and Shutdown themselves. In both
// cases the first load runs one interval after start; until then Value
// returns the initial value. Trigger requests an early attempt, which is
// useful when a file watcher notices a change.
package reload
