// Package cthreads provides a portable concurrency primitives layer in the
// shape of the C11 <threads.h> API: threads with integer results, mutexes of
// six semantic kinds, condition variables with absolute-deadline waits,
// thread-specific storage with destructors, and one-time initialization
// guards.
//
// The layer exists for code being ported from (or kept in step with) that
// API surface. Greenfield Go code should normally reach for goroutines,
// channels, and the sync package directly; this package is for when the
// calling code is structured around create/join threads and kind-tagged
// mutexes.
//
// # Quick Start
//
//	th, err := cthreads.Create(func(arg any) int {
//		fmt.Println("hello from", arg)
//		return 0
//	}, "a thread")
//	if err != nil {
//		log.Fatal(err)
//	}
//	result, err := th.Join()
//
// # Mutexes
//
// A mutex's kind fixes its semantics at creation: plain, timed, or try,
// each optionally recursive.
//
//	m, err := cthreads.NewMutex(cthreads.MutexTimed | cthreads.MutexRecursive)
//	deadline := cthreads.XtimeIn(100 * time.Millisecond)
//	switch err := m.TimedLock(&deadline); {
//	case err == nil:
//		defer m.Unlock()
//	case errors.Is(err, cthreads.ErrBusy):
//		// deadline passed while the mutex stayed held
//	}
//
// TimedLock's acquisition strategy is fixed at build time: the default build
// waits natively with a deadline, while the cthreads_emulate_timedlock build
// tag selects a TryLock-and-yield polling loop whose precision is truncated
// to whole seconds. The polling strategy's coarseness is inherited behavior,
// kept so ports stay predictable across platforms.
//
// # Result Codes
//
// Operations return nil on success, ErrBusy for timeouts and unavailable
// non-blocking acquisitions, ErrNoMem for allocation failure during thread
// creation, and descriptive errors for everything else. Contention and
// timeout are never panics.
//
// # Observability
//
// The layer reports lock waits, timed-lock timeouts, and thread lifecycle
// through a pluggable core.Metrics interface; see observability/prometheus
// for ready-made Prometheus collectors and examples/prometheus_metrics for
// wiring.
package cthreads
