// Package async provides small generic helpers for running computations in
// goroutines and waiting for their completion.
//
// The package is centred around Future, the eventual result of an asynchronous
// operation. Async starts the supplied function in its own goroutine and returns
// a *Future immediately. The caller waits with Await, bounds the wait with
// AwaitContext, or polls with IsComplete. WaitAll joins a group of futures.
//
// Panics inside the supplied function never crash the process: they complete the
// future with an error wrapping ErrPanic. This lets worker loops treat a
// misbehaving callback exactly like one that returned an error.
//
// # Usage
//
//	f := async.Async(ctx, item, func(ctx context.Context, it Item) (struct{}, error) {
//	    return struct{}{}, upload(ctx, it)
//	})
//
//	// Give up waiting after the deadline; the goroutine keeps running.
//	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
//	defer cancel()
//	_, err := f.AwaitContext(ctx)
package async
