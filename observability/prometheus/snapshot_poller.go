package prometheus

import (
	"context"
	"sync"
	"time"

	"github.com/Swind/go-cthreads/core"
	prom "github.com/prometheus/client_golang/prometheus"
)

// PoolSnapshotProvider provides current pool state snapshots.
// pool.Pool implements it.
type PoolSnapshotProvider interface {
	QueueLen() int
	Workers() int
	Running() bool
}

// SnapshotPoller periodically exports thread and pool state into Prometheus
// gauges. The thread source defaults to core.ActiveThreads.
type SnapshotPoller struct {
	interval time.Duration

	threadSource func() int

	poolsMu sync.RWMutex
	pools   map[string]PoolSnapshotProvider

	liveThreads prom.Gauge
	poolQueued  *prom.GaugeVec
	poolWorkers *prom.GaugeVec
	poolRunning *prom.GaugeVec

	stateMu sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewSnapshotPoller creates a snapshot poller and registers its collectors.
func NewSnapshotPoller(reg prom.Registerer, interval time.Duration) (*SnapshotPoller, error) {
	if reg == nil {
		reg = prom.DefaultRegisterer
	}
	if interval <= 0 {
		interval = time.Second
	}

	liveThreads := prom.NewGauge(prom.GaugeOpts{
		Namespace: "cthreads",
		Name:      "live_threads",
		Help:      "Live trampoline thread count snapshot.",
	})
	poolQueued := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: "cthreads",
		Name:      "pool_queued",
		Help:      "Queued tasks per pool.",
	}, []string{"pool"})
	poolWorkers := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: "cthreads",
		Name:      "pool_workers",
		Help:      "Worker thread count per pool.",
	}, []string{"pool"})
	poolRunning := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: "cthreads",
		Name:      "pool_running",
		Help:      "Pool running state (1=accepting tasks, 0=shut down).",
	}, []string{"pool"})

	var err error
	if liveThreads, err = registerCollector(reg, liveThreads); err != nil {
		return nil, err
	}
	if poolQueued, err = registerCollector(reg, poolQueued); err != nil {
		return nil, err
	}
	if poolWorkers, err = registerCollector(reg, poolWorkers); err != nil {
		return nil, err
	}
	if poolRunning, err = registerCollector(reg, poolRunning); err != nil {
		return nil, err
	}

	return &SnapshotPoller{
		interval:     interval,
		threadSource: core.ActiveThreads,
		pools:        make(map[string]PoolSnapshotProvider),
		liveThreads:  liveThreads,
		poolQueued:   poolQueued,
		poolWorkers:  poolWorkers,
		poolRunning:  poolRunning,
	}, nil
}

// SetThreadSource replaces the live-thread count source.
func (p *SnapshotPoller) SetThreadSource(source func() int) {
	if p == nil || source == nil {
		return
	}
	p.threadSource = source
}

// AddPool adds or replaces a pool snapshot provider by name.
func (p *SnapshotPoller) AddPool(name string, provider PoolSnapshotProvider) {
	if p == nil || provider == nil {
		return
	}
	name = normalizeLabel(name, "pool")
	p.poolsMu.Lock()
	p.pools[name] = provider
	p.poolsMu.Unlock()
}

// Start begins periodic polling; repeated calls are no-ops.
func (p *SnapshotPoller) Start(ctx context.Context) {
	if p == nil {
		return
	}

	p.stateMu.Lock()
	if p.running {
		p.stateMu.Unlock()
		return
	}
	pollCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.done = make(chan struct{})
	p.running = true
	p.stateMu.Unlock()

	go p.loop(pollCtx)
}

// Stop stops periodic polling; repeated calls are safe.
func (p *SnapshotPoller) Stop() {
	if p == nil {
		return
	}

	p.stateMu.Lock()
	if !p.running {
		p.stateMu.Unlock()
		return
	}
	cancel := p.cancel
	done := p.done
	p.stateMu.Unlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}

	p.stateMu.Lock()
	p.running = false
	p.cancel = nil
	p.done = nil
	p.stateMu.Unlock()
}

func (p *SnapshotPoller) loop(ctx context.Context) {
	defer close(p.done)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.collectOnce()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.collectOnce()
		}
	}
}

func (p *SnapshotPoller) collectOnce() {
	p.liveThreads.Set(float64(p.threadSource()))

	p.poolsMu.RLock()
	for name, provider := range p.pools {
		p.poolQueued.WithLabelValues(name).Set(float64(provider.QueueLen()))
		p.poolWorkers.WithLabelValues(name).Set(float64(provider.Workers()))
		if provider.Running() {
			p.poolRunning.WithLabelValues(name).Set(1)
		} else {
			p.poolRunning.WithLabelValues(name).Set(0)
		}
	}
	p.poolsMu.RUnlock()
}
