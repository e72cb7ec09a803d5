package core

import "sync"

// OnceFlag guards one-time initialization. The zero value is ready to use,
// and a flag must not be copied after first use.
type OnceFlag struct {
	once sync.Once
}

// CallOnce runs fn exactly once per flag, no matter how many threads call it
// concurrently. Callers racing the first invocation block until it returns.
// A nil flag or fn is a no-op.
func CallOnce(flag *OnceFlag, fn func()) {
	if flag == nil || fn == nil {
		return
	}
	flag.once.Do(fn)
}
