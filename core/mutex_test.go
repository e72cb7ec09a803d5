package core

import (
	"sync"
	"testing"
	"time"
)

// =============================================================================
// Creation Tests
// =============================================================================

// TestNewMutex_ValidKinds tests creation for every valid kind
// Given: each of the six valid mutex kinds
// When: NewMutex is called and the mutex is locked and unlocked once
// Then: creation succeeds and Lock/Unlock work without error
func TestNewMutex_ValidKinds(t *testing.T) {
	kinds := []MutexKind{
		MutexPlain,
		MutexTimed,
		MutexTry,
		MutexPlain | MutexRecursive,
		MutexTimed | MutexRecursive,
		MutexTry | MutexRecursive,
	}

	for _, kind := range kinds {
		t.Run(kind.String(), func(t *testing.T) {
			m, err := NewMutex(kind)
			if err != nil {
				t.Fatalf("NewMutex(%v) failed: %v", kind, err)
			}
			if m.Kind() != kind {
				t.Errorf("kind: got = %v, want %v", m.Kind(), kind)
			}

			if err := m.Lock(); err != nil {
				t.Fatalf("Lock failed: %v", err)
			}
			if err := m.Unlock(); err != nil {
				t.Fatalf("Unlock failed: %v", err)
			}
		})
	}
}

// TestNewMutex_InvalidKinds tests rejection of invalid kind values
// Given: kind values outside the six valid combinations
// When: NewMutex is called
// Then: an error is returned and no mutex is allocated
func TestNewMutex_InvalidKinds(t *testing.T) {
	invalid := []MutexKind{
		MutexTimed | MutexTry,
		MutexTimed | MutexTry | MutexRecursive,
		MutexKind(1 << 3),
		MutexKind(-1),
		MutexKind(42),
	}

	for _, kind := range invalid {
		m, err := NewMutex(kind)
		if err == nil {
			t.Errorf("NewMutex(%#x): got = nil error, want error", int(kind))
		}
		if m != nil {
			t.Errorf("NewMutex(%#x): got = non-nil mutex, want nil", int(kind))
		}
	}
}

// =============================================================================
// TryLock Tests
// =============================================================================

// TestMutex_TryLock tests non-blocking acquisition
// Given: an unlocked try mutex
// When: TryLock is called twice without unlocking
// Then: the first attempt succeeds and the second reports busy
func TestMutex_TryLock(t *testing.T) {
	m, err := NewMutex(MutexTry)
	if err != nil {
		t.Fatalf("NewMutex failed: %v", err)
	}

	if !m.TryLock() {
		t.Fatal("first TryLock: got = false, want true")
	}

	// Second attempt from another goroutine must see the mutex held.
	got := make(chan bool, 1)
	go func() { got <- m.TryLock() }()
	if <-got {
		t.Error("contended TryLock: got = true, want false")
	}

	if err := m.Unlock(); err != nil {
		t.Fatalf("Unlock failed: %v", err)
	}
}

// TestMutex_TryLockNil tests TryLock on a nil handle
// Given: a nil mutex
// When: TryLock is called
// Then: it returns false instead of panicking
func TestMutex_TryLockNil(t *testing.T) {
	var m *Mutex
	if m.TryLock() {
		t.Error("TryLock on nil mutex: got = true, want false")
	}
}

// =============================================================================
// Recursive Tests
// =============================================================================

// TestMutex_RecursiveRelock tests nested locking by the holder
// Given: a recursive mutex
// When: the same thread locks it twice and unlocks it twice
// Then: no deadlock occurs and the mutex is free only after both unlocks
func TestMutex_RecursiveRelock(t *testing.T) {
	m, err := NewMutex(MutexPlain | MutexRecursive)
	if err != nil {
		t.Fatalf("NewMutex failed: %v", err)
	}

	if err := m.Lock(); err != nil {
		t.Fatalf("first Lock failed: %v", err)
	}
	if err := m.Lock(); err != nil {
		t.Fatalf("nested Lock failed: %v", err)
	}

	// After one unlock the mutex must still be held.
	if err := m.Unlock(); err != nil {
		t.Fatalf("first Unlock failed: %v", err)
	}
	contended := make(chan bool, 1)
	go func() { contended <- m.TryLock() }()
	if <-contended {
		t.Fatal("mutex acquired by another thread after one of two unlocks")
	}

	// After the matching unlock another thread can acquire it.
	if err := m.Unlock(); err != nil {
		t.Fatalf("second Unlock failed: %v", err)
	}
	free := make(chan bool, 1)
	go func() {
		ok := m.TryLock()
		if ok {
			_ = m.Unlock()
		}
		free <- ok
	}()
	if !<-free {
		t.Error("mutex still held after matching unlocks")
	}
}

// TestMutex_RecursiveTryLockDepth tests TryLock on a held recursive mutex
// Given: a recursive try mutex held once by the caller
// When: the holder calls TryLock
// Then: it succeeds by incrementing the hold depth
func TestMutex_RecursiveTryLockDepth(t *testing.T) {
	m, err := NewMutex(MutexTry | MutexRecursive)
	if err != nil {
		t.Fatalf("NewMutex failed: %v", err)
	}

	if !m.TryLock() {
		t.Fatal("first TryLock: got = false, want true")
	}
	if !m.TryLock() {
		t.Fatal("holder TryLock: got = false, want true")
	}
	if err := m.Unlock(); err != nil {
		t.Fatalf("Unlock failed: %v", err)
	}
	if err := m.Unlock(); err != nil {
		t.Fatalf("Unlock failed: %v", err)
	}
}

// =============================================================================
// Unlock Misuse Tests
// =============================================================================

// TestMutex_UnlockUnlocked tests unlocking an unheld mutex
// Given: an unlocked plain mutex
// When: Unlock is called
// Then: an error is returned
func TestMutex_UnlockUnlocked(t *testing.T) {
	m, err := NewMutex(MutexPlain)
	if err != nil {
		t.Fatalf("NewMutex failed: %v", err)
	}
	if err := m.Unlock(); err == nil {
		t.Error("Unlock of unlocked mutex: got = nil, want error")
	}
}

// TestMutex_RecursiveUnlockByNonOwner tests unlock from the wrong thread
// Given: a recursive mutex held by another goroutine
// When: a non-owner calls Unlock
// Then: an error is returned and the lock stays held
func TestMutex_RecursiveUnlockByNonOwner(t *testing.T) {
	m, err := NewMutex(MutexPlain | MutexRecursive)
	if err != nil {
		t.Fatalf("NewMutex failed: %v", err)
	}

	locked := make(chan struct{})
	release := make(chan struct{})
	go func() {
		_ = m.Lock()
		close(locked)
		<-release
		_ = m.Unlock()
	}()
	<-locked

	if err := m.Unlock(); err == nil {
		t.Error("Unlock by non-owner: got = nil, want error")
	}
	close(release)
}

// TestMutex_NilLock tests operations on a nil handle
// Given: a nil mutex
// When: Lock and Unlock are called
// Then: both return errors synchronously
func TestMutex_NilLock(t *testing.T) {
	var m *Mutex
	if err := m.Lock(); err == nil {
		t.Error("Lock on nil mutex: got = nil, want error")
	}
	if err := m.Unlock(); err == nil {
		t.Error("Unlock on nil mutex: got = nil, want error")
	}
}

// =============================================================================
// Contention Tests
// =============================================================================

// TestMutex_ContendedCounter tests exclusion under heavy contention
// Given: a plain mutex guarding a counter and 8 goroutines
// When: each goroutine performs 1000 TryLock-or-Lock increments
// Then: the counter equals exactly 8000 after all goroutines finish
func TestMutex_ContendedCounter(t *testing.T) {
	const (
		goroutines = 8
		iterations = 1000
	)

	m, err := NewMutex(MutexPlain)
	if err != nil {
		t.Fatalf("NewMutex failed: %v", err)
	}

	counter := 0
	var wg sync.WaitGroup
	wg.Add(goroutines)
	for g := 0; g < goroutines; g++ {
		go func() {
			defer wg.Done()
			for i := 0; i < iterations; i++ {
				if !m.TryLock() {
					if err := m.Lock(); err != nil {
						t.Errorf("Lock failed: %v", err)
						return
					}
				}
				counter++
				if err := m.Unlock(); err != nil {
					t.Errorf("Unlock failed: %v", err)
					return
				}
			}
		}()
	}
	wg.Wait()

	want := goroutines * iterations
	if counter != want {
		t.Errorf("counter: got = %d, want %d", counter, want)
	}
}

// TestMutex_LockBlocksUntilRelease tests that Lock waits for the holder
// Given: a plain mutex held by the main goroutine
// When: another goroutine calls Lock and the holder releases after 50ms
// Then: the second goroutine acquires the mutex only after the release
func TestMutex_LockBlocksUntilRelease(t *testing.T) {
	m, err := NewMutex(MutexPlain)
	if err != nil {
		t.Fatalf("NewMutex failed: %v", err)
	}
	if err := m.Lock(); err != nil {
		t.Fatalf("Lock failed: %v", err)
	}

	acquired := make(chan time.Time, 1)
	go func() {
		_ = m.Lock()
		acquired <- time.Now()
		_ = m.Unlock()
	}()

	releaseAt := time.Now().Add(50 * time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	if err := m.Unlock(); err != nil {
		t.Fatalf("Unlock failed: %v", err)
	}

	if got := <-acquired; got.Before(releaseAt) {
		t.Errorf("Lock returned before the holder released: got = %v, release at %v", got, releaseAt)
	}
}
