package cthreads_test

import (
	"errors"
	"testing"
	"time"

	cthreads "github.com/Swind/go-cthreads"
)

// TestPublicSurface_ThreadRoundTrip tests the re-exported thread API
// Given: the root package's Create and Join wrappers
// When: a thread returning 11 is created and joined
// Then: the result round-trips through the public surface
func TestPublicSurface_ThreadRoundTrip(t *testing.T) {
	th, err := cthreads.Create(func(arg any) int {
		return arg.(int)
	}, 11)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	got, err := th.Join()
	if err != nil {
		t.Fatalf("Join failed: %v", err)
	}
	if got != 11 {
		t.Errorf("result: got = %d, want 11", got)
	}
}

// TestPublicSurface_MutexAndCond tests the re-exported mutex/cond API
// Given: a timed recursive mutex and a condition variable from the root package
// When: the canonical guarded-flag handshake runs between two threads
// Then: the waiter observes the flag and all calls succeed
func TestPublicSurface_MutexAndCond(t *testing.T) {
	m, err := cthreads.NewMutex(cthreads.MutexTimed | cthreads.MutexRecursive)
	if err != nil {
		t.Fatalf("NewMutex failed: %v", err)
	}
	c := cthreads.NewCond()

	done := false
	waiting := make(chan struct{})
	th, err := cthreads.Create(func(any) int {
		if err := m.Lock(); err != nil {
			return 1
		}
		close(waiting)
		for !done {
			if err := c.Wait(m); err != nil {
				return 2
			}
		}
		if err := m.Unlock(); err != nil {
			return 3
		}
		return 0
	}, nil)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	<-waiting

	if err := m.Lock(); err != nil {
		t.Fatalf("Lock failed: %v", err)
	}
	done = true
	if err := m.Unlock(); err != nil {
		t.Fatalf("Unlock failed: %v", err)
	}
	if err := c.Signal(); err != nil {
		t.Fatalf("Signal failed: %v", err)
	}

	if res, err := th.Join(); err != nil || res != 0 {
		t.Errorf("waiter: result = %d, err = %v", res, err)
	}
}

// TestPublicSurface_TimedLockBusy tests ErrBusy through the root package
// Given: a held timed mutex and an expired deadline
// When: TimedLock is called
// Then: the sentinel cthreads.ErrBusy is observable with errors.Is
func TestPublicSurface_TimedLockBusy(t *testing.T) {
	m, err := cthreads.NewMutex(cthreads.MutexTimed)
	if err != nil {
		t.Fatalf("NewMutex failed: %v", err)
	}
	if err := m.Lock(); err != nil {
		t.Fatalf("Lock failed: %v", err)
	}
	defer func() { _ = m.Unlock() }()

	result := make(chan error, 1)
	go func() {
		deadline := cthreads.XtimeIn(-time.Second)
		result <- m.TimedLock(&deadline)
	}()

	if err := <-result; !errors.Is(err, cthreads.ErrBusy) {
		t.Errorf("TimedLock: got = %v, want ErrBusy", err)
	}
}

// TestPublicSurface_OnceAndTSS tests the remaining pass-throughs
// Given: an OnceFlag and a TSS key from the root package
// When: CallOnce runs twice and a thread stores a TSS value
// Then: the once body runs once and the TSS value stays thread-local
func TestPublicSurface_OnceAndTSS(t *testing.T) {
	var flag cthreads.OnceFlag
	runs := 0
	cthreads.CallOnce(&flag, func() { runs++ })
	cthreads.CallOnce(&flag, func() { runs++ })
	if runs != 1 {
		t.Errorf("once runs: got = %d, want 1", runs)
	}

	key, err := cthreads.TSSCreate(nil)
	if err != nil {
		t.Fatalf("TSSCreate failed: %v", err)
	}
	defer key.Delete()

	th, err := cthreads.Create(func(any) int {
		if err := key.Set("mine"); err != nil {
			return 1
		}
		if key.Get() != "mine" {
			return 2
		}
		return 0
	}, nil)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if res, err := th.Join(); err != nil || res != 0 {
		t.Errorf("tss thread: result = %d, err = %v", res, err)
	}
	if key.Get() != nil {
		t.Error("TSS value leaked across threads")
	}
}
