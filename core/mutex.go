package core

import (
	"fmt"
	"sync/atomic"
	"time"
)

// =============================================================================
// MutexKind: lock semantics, fixed at creation
// =============================================================================

// MutexKind selects the lock semantics of a mutex at creation time.
// Plain, timed, and try are mutually exclusive base kinds; the recursive bit
// may be combined with any of them, for six valid values in total.
type MutexKind int

const (
	// MutexPlain is a basic non-recursive mutex.
	MutexPlain MutexKind = 0

	// MutexTimed supports deadline-bounded acquisition via TimedLock.
	MutexTimed MutexKind = 1 << 0

	// MutexTry supports non-blocking acquisition via TryLock.
	MutexTry MutexKind = 1 << 1

	// MutexRecursive lets the holding thread re-lock without deadlocking.
	// Combinable with any of the base kinds.
	MutexRecursive MutexKind = 1 << 2
)

// String returns a label for the kind, e.g. "timed|recursive".
func (k MutexKind) String() string {
	var base string
	switch k &^ MutexRecursive {
	case MutexPlain:
		base = "plain"
	case MutexTimed:
		base = "timed"
	case MutexTry:
		base = "try"
	default:
		return fmt.Sprintf("invalid(%#x)", int(k))
	}
	if k&MutexRecursive != 0 {
		return base + "|recursive"
	}
	return base
}

// noOwner marks a recursive mutex with no holding thread. It must not
// collide with any goroutine id, including the 0 returned when the id
// cannot be parsed.
const noOwner int64 = -1

// =============================================================================
// Mutex
// =============================================================================

// Mutex is a lock handle whose semantics are fixed by its kind at creation.
//
// The lock state is a capacity-1 channel: a pending send is an acquisition,
// a receive is a release. The channel form is what lets one primitive serve
// plain, try, and deadline-bounded acquisition alike. Recursive kinds
// additionally track the owning goroutine and a hold depth.
//
// The caller owns the handle: destroying it while other threads hold or wait
// on it, or using it after Destroy, has no defined behavior.
type Mutex struct {
	kind MutexKind
	sem  chan struct{}

	// Recursive bookkeeping. owner is read by contending threads, so it is
	// atomic; depth is only ever touched by the holder.
	owner atomic.Int64
	depth int
}

var (
	errNilMutex    = fmt.Errorf("cthreads: nil mutex")
	errNilDeadline = fmt.Errorf("cthreads: nil deadline")
)

// NewMutex creates a mutex of the given kind.
// Any kind outside the six valid combinations fails with an error before any
// resource is allocated.
func NewMutex(kind MutexKind) (*Mutex, error) {
	switch kind {
	case MutexPlain, MutexTimed, MutexTry,
		MutexPlain | MutexRecursive,
		MutexTimed | MutexRecursive,
		MutexTry | MutexRecursive:
	default:
		return nil, fmt.Errorf("cthreads: invalid mutex kind %#x", int(kind))
	}
	m := &Mutex{
		kind: kind,
		sem:  make(chan struct{}, 1),
	}
	m.owner.Store(noOwner)
	return m, nil
}

// Kind returns the kind the mutex was created with.
func (m *Mutex) Kind() MutexKind {
	return m.kind
}

// Recursive reports whether the recursive bit is set.
func (m *Mutex) Recursive() bool {
	return m.kind&MutexRecursive != 0
}

// Lock blocks the calling thread until the mutex is acquired. On a recursive
// mutex already held by the caller it increments the hold depth instead.
// It fails only on a nil handle, never on ordinary contention.
func (m *Mutex) Lock() error {
	if m == nil {
		return errNilMutex
	}
	var gid int64
	if m.Recursive() {
		gid = curGoroutineID()
		if m.owner.Load() == gid {
			m.depth++
			return nil
		}
	}
	if !m.tryAcquire() {
		start := time.Now()
		m.sem <- struct{}{}
		metrics.RecordLockWait(m.kind, time.Since(start))
	}
	if m.Recursive() {
		m.owner.Store(gid)
		m.depth = 1
	}
	return nil
}

// TryLock attempts acquisition without blocking. It returns false instead of
// blocking when the mutex is held by another thread; contention is never an
// error.
func (m *Mutex) TryLock() bool {
	if m == nil {
		return false
	}
	var gid int64
	if m.Recursive() {
		gid = curGoroutineID()
		if m.owner.Load() == gid {
			m.depth++
			return true
		}
	}
	if !m.tryAcquire() {
		return false
	}
	if m.Recursive() {
		m.owner.Store(gid)
		m.depth = 1
	}
	return true
}

// TimedLock blocks until the mutex is acquired or the wall-clock deadline xt
// passes, returning ErrBusy on timeout. The acquisition strategy is fixed at
// build time: the default build waits natively on the lock channel with a
// deadline, while the cthreads_emulate_timedlock build tag selects a
// TryLock-and-yield polling loop with whole-second precision (see
// timedlock_emulated.go for its limitations).
func (m *Mutex) TimedLock(xt *Xtime) error {
	if m == nil {
		return errNilMutex
	}
	if xt == nil {
		return errNilDeadline
	}
	if m.Recursive() {
		gid := curGoroutineID()
		if m.owner.Load() == gid {
			m.depth++
			return nil
		}
		if err := m.timedAcquire(xt); err != nil {
			return err
		}
		m.owner.Store(gid)
		m.depth = 1
		return nil
	}
	return m.timedAcquire(xt)
}

// Unlock releases one hold. For recursive mutexes the lock is released only
// when the depth reaches zero. Unlocking a mutex the caller does not hold is
// an error.
func (m *Mutex) Unlock() error {
	if m == nil {
		return errNilMutex
	}
	if m.Recursive() {
		if m.owner.Load() != curGoroutineID() {
			return fmt.Errorf("cthreads: unlock of recursive mutex not held by caller")
		}
		m.depth--
		if m.depth > 0 {
			return nil
		}
		m.owner.Store(noOwner)
	}
	select {
	case <-m.sem:
		return nil
	default:
		return fmt.Errorf("cthreads: unlock of unlocked mutex")
	}
}

// Destroy releases the handle. Sequencing Destroy after all holders and
// waiters are done is the caller's responsibility; the layer does not detect
// misuse at this boundary, and any use after Destroy is undefined.
func (m *Mutex) Destroy() {
	if m == nil {
		return
	}
	m.sem = nil
}

// tryAcquire is the non-blocking channel acquisition shared by every lock
// path. It does no recursive bookkeeping.
func (m *Mutex) tryAcquire() bool {
	select {
	case m.sem <- struct{}{}:
		return true
	default:
		return false
	}
}
