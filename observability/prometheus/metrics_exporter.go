package prometheus

import (
	"errors"
	"fmt"
	"time"

	"github.com/Swind/go-cthreads/core"
	prom "github.com/prometheus/client_golang/prometheus"
)

// ExporterOptions controls collector configuration.
type ExporterOptions struct {
	WaitBuckets     []float64
	LifetimeBuckets []float64
}

// MetricsExporter adapts core.Metrics to Prometheus collectors.
type MetricsExporter struct {
	lockWaitSeconds       *prom.HistogramVec
	timedLockTimeoutTotal *prom.CounterVec
	threadLifetimeSeconds prom.Histogram
	activeThreads         prom.Gauge
}

var _ core.Metrics = (*MetricsExporter)(nil)

// NewMetricsExporter creates and registers Prometheus collectors for core.Metrics.
func NewMetricsExporter(namespace string, reg prom.Registerer, opts ExporterOptions) (*MetricsExporter, error) {
	if namespace == "" {
		namespace = "cthreads"
	}
	if reg == nil {
		reg = prom.DefaultRegisterer
	}
	waitBuckets := opts.WaitBuckets
	if len(waitBuckets) == 0 {
		waitBuckets = prom.DefBuckets
	}
	lifetimeBuckets := opts.LifetimeBuckets
	if len(lifetimeBuckets) == 0 {
		lifetimeBuckets = prom.ExponentialBuckets(0.001, 4, 10)
	}

	waitVec := prom.NewHistogramVec(prom.HistogramOpts{
		Namespace: namespace,
		Name:      "lock_wait_seconds",
		Help:      "Time contended Lock calls spent waiting for a mutex.",
		Buckets:   waitBuckets,
	}, []string{"kind"})
	timeoutVec := prom.NewCounterVec(prom.CounterOpts{
		Namespace: namespace,
		Name:      "timedlock_timeout_total",
		Help:      "Total number of TimedLock calls that gave up at their deadline.",
	}, []string{"strategy"})
	lifetimeHist := prom.NewHistogram(prom.HistogramOpts{
		Namespace: namespace,
		Name:      "thread_lifetime_seconds",
		Help:      "Wall time between thread start and termination.",
		Buckets:   lifetimeBuckets,
	})
	activeGauge := prom.NewGauge(prom.GaugeOpts{
		Namespace: namespace,
		Name:      "active_threads",
		Help:      "Number of live trampoline threads.",
	})

	var err error
	if waitVec, err = registerCollector(reg, waitVec); err != nil {
		return nil, err
	}
	if timeoutVec, err = registerCollector(reg, timeoutVec); err != nil {
		return nil, err
	}
	if lifetimeHist, err = registerCollector(reg, lifetimeHist); err != nil {
		return nil, err
	}
	if activeGauge, err = registerCollector(reg, activeGauge); err != nil {
		return nil, err
	}

	return &MetricsExporter{
		lockWaitSeconds:       waitVec,
		timedLockTimeoutTotal: timeoutVec,
		threadLifetimeSeconds: lifetimeHist,
		activeThreads:         activeGauge,
	}, nil
}

// RecordLockWait records contended lock wait time.
func (m *MetricsExporter) RecordLockWait(kind core.MutexKind, wait time.Duration) {
	if m == nil {
		return
	}
	m.lockWaitSeconds.WithLabelValues(kind.String()).Observe(wait.Seconds())
}

// RecordTimedLockTimeout records TimedLock deadline expiries.
func (m *MetricsExporter) RecordTimedLockTimeout(strategy string) {
	if m == nil {
		return
	}
	m.timedLockTimeoutTotal.WithLabelValues(normalizeLabel(strategy, "unknown")).Inc()
}

// RecordThreadLifetime records thread wall time.
func (m *MetricsExporter) RecordThreadLifetime(lifetime time.Duration) {
	if m == nil {
		return
	}
	m.threadLifetimeSeconds.Observe(lifetime.Seconds())
}

// RecordActiveThreads records the live thread count.
func (m *MetricsExporter) RecordActiveThreads(count int) {
	if m == nil {
		return
	}
	m.activeThreads.Set(float64(count))
}

func normalizeLabel(v string, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

func registerCollector[T prom.Collector](reg prom.Registerer, collector T) (T, error) {
	err := reg.Register(collector)
	if err == nil {
		return collector, nil
	}

	var alreadyRegisteredErr prom.AlreadyRegisteredError
	if errors.As(err, &alreadyRegisteredErr) {
		existing, ok := alreadyRegisteredErr.ExistingCollector.(T)
		if !ok {
			return collector, fmt.Errorf("collector type mismatch for %T", collector)
		}
		return existing, nil
	}

	return collector, err
}
