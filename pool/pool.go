// Package pool provides a fixed-size worker pool built entirely on the
// primitives in core: workers are trampoline threads, and the task queue is
// guarded by a core.Mutex / core.Cond pair rather than channels. Besides
// being useful on its own, it doubles as an end-to-end exercise of the layer.
package pool

import (
	"fmt"

	"github.com/Swind/go-cthreads/core"
)

// Task is a unit of work executed by a pool worker.
type Task func()

// Pool dispatches submitted tasks to a fixed set of worker threads.
// Workers block on a condition variable while the queue is empty and drain
// remaining tasks during shutdown.
type Pool struct {
	mu   *core.Mutex
	cond *core.Cond

	// Guarded by mu.
	queue   []Task
	closing bool

	workers      []*core.Thread
	shutdownOnce core.OnceFlag
	total        int
}

// New creates a pool and starts its worker threads.
func New(workers int) (*Pool, error) {
	if workers <= 0 {
		return nil, fmt.Errorf("pool: worker count must be positive, got %d", workers)
	}
	mu, err := core.NewMutex(core.MutexPlain)
	if err != nil {
		return nil, err
	}
	p := &Pool{
		mu:   mu,
		cond: core.NewCond(),
	}
	for i := 0; i < workers; i++ {
		th, err := core.Create(p.workerLoop, i)
		if err != nil {
			p.Shutdown()
			return nil, fmt.Errorf("pool: starting worker %d: %w", i, err)
		}
		p.workers = append(p.workers, th)
	}
	return p, nil
}

// workerLoop pulls tasks until the pool is closing and the queue is drained.
// Its result is the number of tasks this worker executed.
func (p *Pool) workerLoop(arg any) int {
	executed := 0
	for {
		_ = p.mu.Lock()
		for len(p.queue) == 0 && !p.closing {
			_ = p.cond.Wait(p.mu)
		}
		if len(p.queue) == 0 {
			_ = p.mu.Unlock()
			return executed
		}
		task := p.queue[0]
		p.queue = p.queue[1:]
		_ = p.mu.Unlock()

		task()
		executed++
	}
}

// Submit queues a task for execution. It fails once shutdown has begun.
func (p *Pool) Submit(task Task) error {
	if task == nil {
		return fmt.Errorf("pool: nil task")
	}
	_ = p.mu.Lock()
	if p.closing {
		_ = p.mu.Unlock()
		return fmt.Errorf("pool: shut down")
	}
	p.queue = append(p.queue, task)
	_ = p.mu.Unlock()
	return p.cond.Signal()
}

// QueueLen returns the number of tasks waiting for a worker.
func (p *Pool) QueueLen() int {
	_ = p.mu.Lock()
	n := len(p.queue)
	_ = p.mu.Unlock()
	return n
}

// Workers returns the worker thread count.
func (p *Pool) Workers() int {
	return len(p.workers)
}

// Running reports whether the pool still accepts tasks.
func (p *Pool) Running() bool {
	_ = p.mu.Lock()
	running := !p.closing
	_ = p.mu.Unlock()
	return running
}

// Shutdown stops accepting tasks, lets the workers drain the queue, and
// joins them. It returns the total number of tasks executed across all
// workers; repeated calls return the same total.
func (p *Pool) Shutdown() int {
	core.CallOnce(&p.shutdownOnce, func() {
		_ = p.mu.Lock()
		p.closing = true
		_ = p.mu.Unlock()
		_ = p.cond.Broadcast()

		total := 0
		for _, w := range p.workers {
			if n, err := w.Join(); err == nil {
				total += n
			}
		}
		p.total = total
	})
	return p.total
}
