// Package loop provides the single-threaded cooperative scheduler every
// monitoring component runs on. All component state is mutated from loop
// callbacks only; blocking work is handed off with Go and its result is
// delivered back with Post.
package loop

import "time"

// Timer is a cancellable scheduled callback.
type Timer interface {
	// Stop cancels the timer. When called on the loop, the callback is
	// guaranteed not to run afterwards. Stop is idempotent.
	Stop()
}

// Loop schedules callbacks on a single logical thread.
type Loop interface {
	Now() time.Time
	// After runs fn once after d.
	After(d time.Duration, fn func()) Timer
	// Every runs fn every d until the returned timer is stopped.
	Every(d time.Duration, fn func()) Timer
	// Post enqueues fn to run on the loop. Safe from any goroutine.
	Post(fn func())
	// Go runs blocking work off the loop. work must deliver results via Post.
	Go(work func())
}

// noopTimer is returned for nil callbacks.
type noopTimer struct{}

func (noopTimer) Stop() {}
