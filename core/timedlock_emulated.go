//go:build cthreads_emulate_timedlock

package core

import (
	"runtime"
	"time"
)

// Emulated timed-lock strategy: TryLock in a yield loop bounded by a
// wall-clock expiry. Selected for the whole binary by the
// cthreads_emulate_timedlock build tag.
//
// Known, accepted limitations, preserved for cross-port predictability:
//   - the expiry is computed from xt.Sec relative to call entry and
//     truncated to whole seconds, so sub-second precision is unavailable and
//     xt.Nsec is ignored;
//   - the loop is an active poll, not a blocking wait, so it consumes
//     scheduler time for as long as the mutex stays contended.

const timedLockStrategy = "emulated"

func (m *Mutex) timedAcquire(xt *Xtime) error {
	expire := time.Now().Unix() + xt.Sec
	for !m.tryAcquire() {
		if time.Now().Unix() > expire {
			metrics.RecordTimedLockTimeout(timedLockStrategy)
			return ErrBusy
		}
		runtime.Gosched()
	}
	return nil
}
