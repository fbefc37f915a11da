package driven

import "time"

// Clock abstracts time for the viewer's settle delays, debounce
// windows and retry backoff so tests can drive timers manually.
type Clock interface {
	// Now returns the current time.
	Now() time.Time

	// AfterFunc runs fn after d elapses and returns a handle to stop
	// the pending call.
	AfterFunc(d time.Duration, fn func()) Timer
}

// Timer is a pending AfterFunc call.
type Timer interface {
	// Stop cancels the call. It reports whether the call was still
	// pending.
	Stop() bool
}
