package core

import "time"

// =============================================================================
// Metrics: Interface for observability and monitoring
// =============================================================================

// Metrics defines the interface for collecting primitive-level metrics.
// Implementations can send metrics to monitoring systems (Prometheus, StatsD, etc.).
//
// Methods should be non-blocking and fast; they sit on the contended paths of
// Lock and TimedLock and on every thread start/exit.
type Metrics interface {
	// RecordLockWait records how long a contended Lock call waited for the
	// mutex. Uncontended acquisitions are not recorded.
	RecordLockWait(kind MutexKind, wait time.Duration)

	// RecordTimedLockTimeout records a TimedLock that gave up at its
	// deadline. The strategy label is "native" or "emulated" depending on
	// how the binary was built.
	RecordTimedLockTimeout(strategy string)

	// RecordThreadLifetime records the wall time between a thread's start
	// and its termination.
	RecordThreadLifetime(lifetime time.Duration)

	// RecordActiveThreads records the number of live trampoline threads
	// after a thread starts or exits.
	RecordActiveThreads(count int)
}

// NilMetrics provides a no-op metrics implementation that does nothing.
// This is the default when no metrics interface is configured.
type NilMetrics struct{}

// RecordLockWait is a no-op.
func (m *NilMetrics) RecordLockWait(kind MutexKind, wait time.Duration) {}

// RecordTimedLockTimeout is a no-op.
func (m *NilMetrics) RecordTimedLockTimeout(strategy string) {}

// RecordThreadLifetime is a no-op.
func (m *NilMetrics) RecordThreadLifetime(lifetime time.Duration) {}

// RecordActiveThreads is a no-op.
func (m *NilMetrics) RecordActiveThreads(count int) {}

// =============================================================================
// PanicHandler: Interface for handling start-function panics
// =============================================================================

// PanicHandler is called when a thread's start function panics.
// The trampoline recovers the panic, hands it here, and publishes -1 as the
// thread's result so Join still completes.
//
// Implementations should be thread-safe as they may be called concurrently.
type PanicHandler interface {
	// HandlePanic is called on the panicking thread, after recovery.
	//
	// Parameters:
	// - threadID: the trampoline-assigned id of the panicking thread
	// - panicInfo: the recovered panic value
	// - stackTrace: the stack trace at the time of panic
	HandlePanic(threadID uint64, panicInfo any, stackTrace []byte)
}

// DefaultPanicHandler logs panics through the configured Logger.
type DefaultPanicHandler struct{}

// HandlePanic logs the panic with its stack trace.
func (h *DefaultPanicHandler) HandlePanic(threadID uint64, panicInfo any, stackTrace []byte) {
	logger.Error("thread panicked",
		F("thread", threadID),
		F("panic", panicInfo),
		F("stack", string(stackTrace)))
}

// =============================================================================
// Config: package configuration
// =============================================================================

// Config holds the injectable collaborators of the layer.
// All fields are optional; zero fields keep their defaults.
type Config struct {
	// Logger receives lifecycle and failure logs. Defaults to DefaultLogger.
	Logger Logger

	// Metrics receives primitive-level metrics. Defaults to NilMetrics.
	Metrics Metrics

	// PanicHandler is called when a start function panics. Defaults to
	// DefaultPanicHandler.
	PanicHandler PanicHandler
}

// DefaultConfig returns a config with default collaborators.
func DefaultConfig() *Config {
	return &Config{
		Logger:       NewDefaultLogger(),
		Metrics:      &NilMetrics{},
		PanicHandler: &DefaultPanicHandler{},
	}
}

var (
	logger       Logger       = NewDefaultLogger()
	metrics      Metrics      = &NilMetrics{}
	panicHandler PanicHandler = &DefaultPanicHandler{}
)

// Configure installs cfg's collaborators, filling nil fields with defaults.
// Call it once at startup, before threads or mutexes are in use; it is not
// synchronized against concurrent operations.
func Configure(cfg *Config) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.Logger != nil {
		logger = cfg.Logger
	} else {
		logger = NewDefaultLogger()
	}
	if cfg.Metrics != nil {
		metrics = cfg.Metrics
	} else {
		metrics = &NilMetrics{}
	}
	if cfg.PanicHandler != nil {
		panicHandler = cfg.PanicHandler
	} else {
		panicHandler = &DefaultPanicHandler{}
	}
}
