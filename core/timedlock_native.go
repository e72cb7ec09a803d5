//go:build !cthreads_emulate_timedlock

package core

import "time"

// Native timed-lock strategy (default build): a single deadline-bounded wait
// on the lock channel. Selected for the whole binary at build time; the
// alternative polling strategy lives in timedlock_emulated.go behind the
// cthreads_emulate_timedlock tag.

const timedLockStrategy = "native"

func (m *Mutex) timedAcquire(xt *Xtime) error {
	if m.tryAcquire() {
		return nil
	}
	d := time.Until(xt.Time())
	if d <= 0 {
		metrics.RecordTimedLockTimeout(timedLockStrategy)
		return ErrBusy
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case m.sem <- struct{}{}:
		return nil
	case <-timer.C:
		metrics.RecordTimedLockTimeout(timedLockStrategy)
		return ErrBusy
	}
}
