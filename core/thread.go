package core

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"
)

// StartFunc is the entry point of a thread. Its integer result is published
// through the exit slot and observed by Join.
type StartFunc func(arg any) int

// panicResult is published when a start function panics instead of returning.
const panicResult = -1

// =============================================================================
// Thread: opaque handle for an execution context
// =============================================================================

// Thread is an opaque handle for an execution context created by Create (or
// implicitly registered by Current for goroutines the layer did not create).
//
// A handle is joined or detached at most once each, and never joined after a
// detach. Those misuses return errors; everything past them (for example the
// target's resources) follows the runtime's own rules.
type Thread struct {
	id   uint64
	done chan struct{}

	// exitCode is the word-sized exit slot the result transits. Results
	// wider than the native word are not supported.
	exitCode atomic.Int64

	joined   atomic.Bool
	detached atomic.Bool

	// foreign marks handles registered by Current for goroutines that were
	// not created through the trampoline; they cannot be joined or detached.
	foreign bool
}

// startPack carries the caller's start function and argument across the
// creation boundary. It is exclusively owned by the creating thread until the
// new context retrieves it, and released the moment the fields are copied
// out; nothing may observe it afterwards.
type startPack struct {
	fn  StartFunc
	arg any
}

var (
	threadSeq     atomic.Uint64
	activeThreads atomic.Int64

	registryMu sync.RWMutex
	registry   = make(map[int64]*Thread)

	// Failure seams, overridable in tests to force the out-of-memory and
	// creation-failure branches.
	allocStartPack = func(fn StartFunc, arg any) (*startPack, error) {
		return &startPack{fn: fn, arg: arg}, nil
	}
	spawnThread = func(entry func()) error {
		go entry()
		return nil
	}
)

// Create starts a new thread running fn(arg) and returns its handle.
//
// The start function and argument travel in a heap-owned package whose
// ownership passes to the new context; on any failure the package is
// released before Create returns, so nothing leaks. Allocation failure is
// reported as ErrNoMem with no thread created.
func Create(fn StartFunc, arg any) (*Thread, error) {
	if fn == nil {
		return nil, fmt.Errorf("cthreads: nil start function")
	}
	pack, err := allocStartPack(fn, arg)
	if err != nil {
		return nil, ErrNoMem
	}
	t := &Thread{
		id:   threadSeq.Add(1),
		done: make(chan struct{}),
	}
	if err := spawnThread(func() { trampoline(t, pack) }); err != nil {
		pack.fn, pack.arg = nil, nil
		logger.Warn("thread creation failed", F("thread", t.id), F("error", err))
		return nil, fmt.Errorf("cthreads: thread creation failed: %w", err)
	}
	return t, nil
}

// trampoline runs on the new execution context. It copies the start function
// and argument out of the package, releases the package, invokes the
// function, and publishes its result through the exit slot. The
// copy-then-release-then-call ordering bounds the package's lifetime to the
// shortest possible window.
func trampoline(t *Thread, pack *startPack) {
	gid := curGoroutineID()
	registryMu.Lock()
	registry[gid] = t
	registryMu.Unlock()

	metrics.RecordActiveThreads(int(activeThreads.Add(1)))
	started := time.Now()

	defer func() {
		if rec := recover(); rec != nil {
			panicHandler.HandlePanic(t.id, rec, debug.Stack())
			t.exitCode.Store(panicResult)
		}
		runTSSDestructors(gid)
		registryMu.Lock()
		delete(registry, gid)
		registryMu.Unlock()
		metrics.RecordActiveThreads(int(activeThreads.Add(-1)))
		metrics.RecordThreadLifetime(time.Since(started))
		close(t.done)
	}()

	fn, arg := pack.fn, pack.arg
	pack.fn, pack.arg = nil, nil

	t.exitCode.Store(int64(fn(arg)))
}

// Exit terminates the calling thread, publishing code as if the start
// function had returned it. It never returns: deferred calls run, TLS
// destructors fire, and Join observes code. On a goroutine not created by
// this layer it simply ends the goroutine.
func Exit(code int) {
	if t := Current(); t != nil && !t.foreign {
		t.exitCode.Store(int64(code))
	}
	runtime.Goexit()
}

// Join blocks until the thread terminates, then returns its published
// result, narrowed from the word-sized exit slot. Joining is single-use:
// a second Join, or a Join after Detach, returns an error rather than
// blocking.
func (t *Thread) Join() (int, error) {
	if t == nil {
		return 0, fmt.Errorf("cthreads: nil thread handle")
	}
	if t.foreign {
		return 0, fmt.Errorf("cthreads: thread is not joinable")
	}
	if t.detached.Load() {
		return 0, fmt.Errorf("cthreads: join of detached thread")
	}
	if !t.joined.CompareAndSwap(false, true) {
		return 0, fmt.Errorf("cthreads: thread already joined")
	}
	<-t.done
	return int(t.exitCode.Load()), nil
}

// Detach releases the caller's obligation to join; the thread's resources
// are reclaimed on termination. Detaching is single-use and fails after a
// Join.
func (t *Thread) Detach() error {
	if t == nil {
		return fmt.Errorf("cthreads: nil thread handle")
	}
	if t.foreign {
		return fmt.Errorf("cthreads: thread is not detachable")
	}
	if t.joined.Load() {
		return fmt.Errorf("cthreads: detach of joined thread")
	}
	if !t.detached.CompareAndSwap(false, true) {
		return fmt.Errorf("cthreads: thread already detached")
	}
	return nil
}

// Equal reports whether two handles name the same thread. Nil handles are
// equal only to each other.
func (t *Thread) Equal(o *Thread) bool {
	if t == nil || o == nil {
		return t == o
	}
	return t.id == o.id
}

// ID returns the trampoline-assigned thread id.
func (t *Thread) ID() uint64 {
	if t == nil {
		return 0
	}
	return t.id
}

// Current returns the handle of the calling thread. Goroutines that were not
// created through Create get an implicit handle on first use; such handles
// compare Equal across calls but cannot be joined or detached. Implicit
// handles stay registered for the life of the goroutine's id.
func Current() *Thread {
	gid := curGoroutineID()
	registryMu.RLock()
	t := registry[gid]
	registryMu.RUnlock()
	if t != nil {
		return t
	}
	t = &Thread{
		id:      threadSeq.Add(1),
		foreign: true,
	}
	registryMu.Lock()
	if existing := registry[gid]; existing != nil {
		t = existing
	} else {
		registry[gid] = t
	}
	registryMu.Unlock()
	return t
}

// Yield relinquishes the processor to other runnable threads.
func Yield() {
	runtime.Gosched()
}

// Sleep suspends the calling thread for the span held in xt. Despite the
// absolute-looking Xtime type, the value is consumed as a relative duration;
// a nil xt is a no-op.
func Sleep(xt *Xtime) {
	if xt == nil {
		return
	}
	time.Sleep(xt.Duration())
}

// ActiveThreads returns the number of live trampoline threads. Exposed for
// observability pollers.
func ActiveThreads() int {
	return int(activeThreads.Load())
}
