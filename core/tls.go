package core

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// TSSDtorIterations bounds the destructor re-scan rounds at thread exit.
// A destructor may store fresh values; each round clears and destroys them
// again, up to this many times.
const TSSDtorIterations = 4

// TSS is a thread-specific storage key. Every thread sees its own value for
// the key, nil until first Set. The optional destructor runs against the
// thread's remaining non-nil value when a trampoline thread exits; foreign
// goroutines can Get and Set but never trigger destructors.
type TSS struct {
	id      uint64
	dtor    func(any)
	deleted atomic.Bool
}

var (
	tssSeq uint64

	tssMu     sync.RWMutex
	tssValues = make(map[int64]map[*TSS]any)
)

// TSSCreate creates a storage key with an optional destructor.
func TSSCreate(dtor func(any)) (*TSS, error) {
	tssMu.Lock()
	tssSeq++
	id := tssSeq
	tssMu.Unlock()
	return &TSS{id: id, dtor: dtor}, nil
}

// Delete invalidates the key and drops every thread's value for it without
// running destructors. Using the key afterwards yields nil values and Set
// errors.
func (k *TSS) Delete() {
	if k == nil {
		return
	}
	k.deleted.Store(true)
	tssMu.Lock()
	for gid, slots := range tssValues {
		delete(slots, k)
		if len(slots) == 0 {
			delete(tssValues, gid)
		}
	}
	tssMu.Unlock()
}

// Get returns the calling thread's value for the key, or nil.
func (k *TSS) Get() any {
	if k == nil || k.deleted.Load() {
		return nil
	}
	gid := curGoroutineID()
	tssMu.RLock()
	defer tssMu.RUnlock()
	slots := tssValues[gid]
	if slots == nil {
		return nil
	}
	return slots[k]
}

// Set stores the calling thread's value for the key. Setting nil clears the
// slot, so its destructor will not run at thread exit.
func (k *TSS) Set(v any) error {
	if k == nil {
		return fmt.Errorf("cthreads: nil tss key")
	}
	if k.deleted.Load() {
		return fmt.Errorf("cthreads: tss key deleted")
	}
	gid := curGoroutineID()
	tssMu.Lock()
	defer tssMu.Unlock()
	slots := tssValues[gid]
	if v == nil {
		if slots != nil {
			delete(slots, k)
			if len(slots) == 0 {
				delete(tssValues, gid)
			}
		}
		return nil
	}
	if slots == nil {
		slots = make(map[*TSS]any)
		tssValues[gid] = slots
	}
	slots[k] = v
	return nil
}

// runTSSDestructors runs the exiting thread's destructors. Each round clears
// the thread's slots first, then invokes destructors on the snapshot, so a
// destructor storing a fresh value is picked up by the next round.
func runTSSDestructors(gid int64) {
	type slot struct {
		key *TSS
		val any
	}
	for i := 0; i < TSSDtorIterations; i++ {
		tssMu.Lock()
		slots := tssValues[gid]
		if len(slots) == 0 {
			delete(tssValues, gid)
			tssMu.Unlock()
			return
		}
		pending := make([]slot, 0, len(slots))
		for k, v := range slots {
			if v != nil && k.dtor != nil && !k.deleted.Load() {
				pending = append(pending, slot{key: k, val: v})
			}
			delete(slots, k)
		}
		delete(tssValues, gid)
		tssMu.Unlock()

		if len(pending) == 0 {
			return
		}
		for _, s := range pending {
			s.key.dtor(s.val)
		}
	}
	tssMu.Lock()
	delete(tssValues, gid)
	tssMu.Unlock()
}
