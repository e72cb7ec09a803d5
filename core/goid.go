package core

import "runtime"

// Goroutine identity. The layer needs to know which goroutine is calling in
// two places: recursive mutex ownership and thread-specific storage. The id
// is extracted by parsing the first line of the goroutine's stack trace,
// which is stable for the life of the goroutine on every Go version.
// Cost is roughly a microsecond per call, so the lock paths only pay it for
// recursive kinds.

// curGoroutineID returns the runtime id of the calling goroutine, or 0 if
// the stack header cannot be parsed.
func curGoroutineID() int64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	return parseGID(buf[:n])
}

// parseGID extracts the numeric id from a "goroutine 123 [running]:" header.
func parseGID(buf []byte) int64 {
	const prefix = "goroutine "
	if len(buf) < len(prefix) || string(buf[:len(prefix)]) != prefix {
		return 0
	}
	var gid int64
	for i := len(prefix); i < len(buf); i++ {
		c := buf[i]
		if c < '0' || c > '9' {
			break
		}
		gid = gid*10 + int64(c-'0')
	}
	return gid
}
