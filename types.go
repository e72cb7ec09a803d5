package cthreads

import "github.com/Swind/go-cthreads/core"

// Re-export commonly used types from core package for convenience.
// This allows users to import only the cthreads package for most use cases.

// Mutex is a lock handle whose semantics are fixed by its kind at creation
type Mutex = core.Mutex

// MutexKind selects the lock semantics of a mutex at creation time
type MutexKind = core.MutexKind

// Cond is a condition variable with absolute-deadline timed waits
type Cond = core.Cond

// Thread is an opaque handle for an execution context
type Thread = core.Thread

// StartFunc is the entry point of a thread
type StartFunc = core.StartFunc

// Xtime is a wall-clock time point (seconds, nanoseconds)
type Xtime = core.Xtime

// TSS is a thread-specific storage key
type TSS = core.TSS

// OnceFlag guards one-time initialization
type OnceFlag = core.OnceFlag

// Logger is the structured logging interface of the layer
type Logger = core.Logger

// Field is a structured logging key-value pair
type Field = core.Field

// Config holds the layer's injectable collaborators
type Config = core.Config

// Mutex kind constants
const (
	MutexPlain     MutexKind = core.MutexPlain
	MutexTimed     MutexKind = core.MutexTimed
	MutexTry       MutexKind = core.MutexTry
	MutexRecursive MutexKind = core.MutexRecursive
)

// TimeUTC is the time base accepted by XtimeGet
const TimeUTC = core.TimeUTC

// TSSDtorIterations bounds destructor re-scan rounds at thread exit
const TSSDtorIterations = core.TSSDtorIterations

// Result sentinels
var (
	ErrBusy  = core.ErrBusy
	ErrNoMem = core.ErrNoMem
)

// NewMutex creates a mutex of the given kind; invalid kinds are rejected
// before any resource is allocated.
func NewMutex(kind MutexKind) (*Mutex, error) {
	return core.NewMutex(kind)
}

// NewCond creates a condition variable.
func NewCond() *Cond {
	return core.NewCond()
}

// Create starts a new thread running fn(arg) and returns its handle.
func Create(fn StartFunc, arg any) (*Thread, error) {
	return core.Create(fn, arg)
}

// TSSCreate creates a thread-specific storage key with an optional destructor.
func TSSCreate(dtor func(any)) (*TSS, error) {
	return core.TSSCreate(dtor)
}

// Thread and time pass-throughs
var (
	Current   = core.Current
	Exit      = core.Exit
	Yield     = core.Yield
	Sleep     = core.Sleep
	CallOnce  = core.CallOnce
	XtimeGet  = core.XtimeGet
	XtimeIn   = core.XtimeIn
	FromTime  = core.FromTime
	Configure = core.Configure

	// ActiveThreads reports live trampoline threads, for observability pollers
	ActiveThreads = core.ActiveThreads
)
