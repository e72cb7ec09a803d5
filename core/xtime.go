package core

import "time"

// TimeUTC is the only supported time base for XtimeGet.
const TimeUTC = 1

// Xtime is a wall-clock time point: seconds and nanoseconds since the Unix
// epoch. It is an absolute deadline, not a duration, and there is no
// monotonic-clock variant.
type Xtime struct {
	Sec  int64
	Nsec int64
}

// XtimeGet stores the current wall-clock time into xt and returns base.
// Only TimeUTC is supported; any other base (or a nil xt) returns 0 and
// leaves xt untouched. The snapshot has whole-second precision: Nsec is
// always set to zero.
func XtimeGet(xt *Xtime, base int) int {
	if xt == nil {
		return 0
	}
	if base != TimeUTC {
		return 0
	}
	xt.Sec = time.Now().Unix()
	xt.Nsec = 0
	return base
}

// XtimeIn returns the wall-clock point d from now, at full nanosecond
// precision. Convenience for building TimedLock / TimedWait deadlines.
func XtimeIn(d time.Duration) Xtime {
	t := time.Now().Add(d)
	return Xtime{Sec: t.Unix(), Nsec: int64(t.Nanosecond())}
}

// FromTime converts a time.Time into an Xtime.
func FromTime(t time.Time) Xtime {
	return Xtime{Sec: t.Unix(), Nsec: int64(t.Nanosecond())}
}

// Time converts the time point back into a time.Time.
func (xt Xtime) Time() time.Time {
	return time.Unix(xt.Sec, xt.Nsec)
}

// Duration reads the pair as a span of time rather than a point in time.
// Used by Sleep, which consumes its parameter as a relative duration.
func (xt Xtime) Duration() time.Duration {
	return time.Duration(xt.Sec)*time.Second + time.Duration(xt.Nsec)
}
