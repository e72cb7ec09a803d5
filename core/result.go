package core

import "errors"

// Result taxonomy for the threads layer.
//
// Every operation reports its outcome through an ordinary Go return value:
// success is a nil error, the two distinguished non-success outcomes are the
// sentinel errors below (matchable with errors.Is), and everything else is a
// descriptive generic error. No operation panics on ordinary contention,
// timeout, or an invalid argument.
var (
	// ErrBusy indicates a bounded or non-blocking acquisition did not
	// succeed: a TryLock found the mutex held, a TimedLock or TimedWait
	// reached its deadline. It is not a hard failure.
	ErrBusy = errors.New("cthreads: busy")

	// ErrNoMem indicates an allocation failure during thread creation.
	// No thread is created and nothing is leaked when it is returned.
	ErrNoMem = errors.New("cthreads: out of memory")
)
