package queue

import "time"

// Clock supplies timestamps and deferred callbacks. Tests substitute a virtual
// clock to advance backoff delays deterministically.
type Clock interface {
	Now() time.Time
	// AfterFunc runs fn in its own goroutine once d has elapsed. The returned
	// stop function cancels the call and reports whether it was still pending.
	AfterFunc(d time.Duration, fn func()) (stop func() bool)
}

type systemClock struct{}

// SystemClock returns a Clock backed by the time package.
func SystemClock() Clock { return systemClock{} }

func (systemClock) Now() time.Time { return time.Now() }

func (systemClock) AfterFunc(d time.Duration, fn func()) func() bool {
	return time.AfterFunc(d, fn).Stop
}
