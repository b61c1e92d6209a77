// Package async provides a small generic Future type used to hand the result of
// a background computation to whoever is waiting for it.
//
// A Future is obtained from Go or Async, which start the supplied function in
// its own goroutine, or from Completed and Failed for values that are already
// known. Loaders plugged into the reload package return futures, which lets the
// reloader bound each attempt with AwaitContext while the loader itself keeps
// full control over how the work is scheduled.
//
// # Usage
//
//	future := async.Go(ctx, func(ctx context.Context) (string, error) {
//	    return fetchConfig(ctx)
//	})
//
//	cfg, err := async.Then(future, flagconfig.ParseYAML).AwaitWithTimeout(5 * time.Second)
//	if errors.Is(err, async.ErrTimeout) {
//	    // keep the previous config
//	}
//
// # Cancellation
//
// Go and Async check the context before starting the work: a context that is
// already cancelled completes the future with ctx.Err() without calling the
// function. AwaitContext and AwaitWithTimeout stop waiting early but never
// interrupt the running function; its result is simply not observed.
package async
