package reminder

import "time"

// Timer abstracts one-shot timer creation so tests can fire scheduled
// callbacks deterministically.
type Timer interface {
	AfterFunc(d time.Duration, fn func()) TimerHandle
}

// TimerHandle cancels a pending callback. Stop reports whether the
// callback had not yet run.
type TimerHandle interface {
	Stop() bool
}

// SimpleTimer is the production Timer backed by time.AfterFunc.
type SimpleTimer struct{}

// AfterFunc arms a standard library timer. *time.Timer satisfies
// TimerHandle directly.
func (SimpleTimer) AfterFunc(d time.Duration, fn func()) TimerHandle {
	return time.AfterFunc(d, fn)
}
