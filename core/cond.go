package core

import (
	"fmt"
	"sync"
	"time"
)

// Cond is a condition variable paired at wait time with exactly one mutex,
// which the calling thread must already hold. Unlike sync.Cond it supports an
// absolute-deadline timed wait.
//
// Each waiter parks on its own channel; Signal hands the front waiter its
// wakeup by closing the channel, Broadcast closes them all. Wake order
// follows queue order, but no fairness beyond that is guaranteed.
//
// Holding the paired mutex is a precondition the layer does not verify, and
// destroying a Cond with threads still waiting on it is undefined, exactly
// as with Mutex.
type Cond struct {
	mu      sync.Mutex
	waiters []chan struct{}
}

var errNilCond = fmt.Errorf("cthreads: nil condition variable")

// NewCond creates a condition variable.
func NewCond() *Cond {
	return &Cond{}
}

// Signal wakes one waiting thread, if any.
func (c *Cond) Signal() error {
	if c == nil {
		return errNilCond
	}
	c.mu.Lock()
	if len(c.waiters) > 0 {
		ch := c.waiters[0]
		c.waiters = c.waiters[1:]
		close(ch)
	}
	c.mu.Unlock()
	return nil
}

// Broadcast wakes every waiting thread.
func (c *Cond) Broadcast() error {
	if c == nil {
		return errNilCond
	}
	c.mu.Lock()
	for _, ch := range c.waiters {
		close(ch)
	}
	c.waiters = nil
	c.mu.Unlock()
	return nil
}

// Wait atomically releases m, blocks until woken by Signal or Broadcast, and
// re-acquires m before returning.
func (c *Cond) Wait(m *Mutex) error {
	if c == nil {
		return errNilCond
	}
	if m == nil {
		return errNilMutex
	}
	ch := c.enqueue()
	if err := m.Unlock(); err != nil {
		c.remove(ch)
		return err
	}
	<-ch
	return m.Lock()
}

// TimedWait is Wait bounded by the wall-clock deadline xt. On timeout it
// re-acquires m and returns ErrBusy. A wakeup that races the deadline counts
// as a wakeup: once a Signal has picked this waiter, TimedWait reports
// success even if the deadline passed while it was being delivered.
func (c *Cond) TimedWait(m *Mutex, xt *Xtime) error {
	if c == nil {
		return errNilCond
	}
	if m == nil {
		return errNilMutex
	}
	if xt == nil {
		return errNilDeadline
	}

	ch := c.enqueue()
	if err := m.Unlock(); err != nil {
		c.remove(ch)
		return err
	}

	timedOut := false
	if d := time.Until(xt.Time()); d <= 0 {
		// Deadline already passed: consume a wakeup only if one is pending.
		select {
		case <-ch:
		default:
			timedOut = true
		}
	} else {
		timer := time.NewTimer(d)
		select {
		case <-ch:
		case <-timer.C:
			timedOut = true
		}
		timer.Stop()
	}

	if timedOut && !c.remove(ch) {
		// Signal dequeued us between the timer firing and now.
		timedOut = false
	}

	if err := m.Lock(); err != nil {
		return err
	}
	if timedOut {
		return ErrBusy
	}
	return nil
}

// Destroy releases the handle. The caller must sequence it after all waiters
// have been woken.
func (c *Cond) Destroy() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.waiters = nil
	c.mu.Unlock()
}

func (c *Cond) enqueue() chan struct{} {
	ch := make(chan struct{})
	c.mu.Lock()
	c.waiters = append(c.waiters, ch)
	c.mu.Unlock()
	return ch
}

// remove takes ch off the wait queue, reporting whether it was still queued.
func (c *Cond) remove(ch chan struct{}) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, w := range c.waiters {
		if w == ch {
			c.waiters = append(c.waiters[:i], c.waiters[i+1:]...)
			return true
		}
	}
	return false
}
