// Package workerpool bounds how many goroutines run a batch of tasks at
// once.
//
// The media prune pass is the main consumer: candidate deletes are fanned
// out with SubmitWait so at most pool-size object-store calls are in
// flight, however large the orphan list is.
//
//	pool := workerpool.New(8)
//	defer pool.Shutdown()
//
//	for _, key := range orphans {
//	    key := key
//	    _ = pool.SubmitWait(func() { store.Delete(key) })
//	}
//
// Submit is the non-blocking variant: it returns ErrPoolFull instead of
// waiting, for callers that would rather reject than queue.
package workerpool

import (
	"errors"
	"sync"

	"github.com/shashiranjanraj/stockroom/pkg/logger"
)

// ErrPoolFull is returned by Submit when every worker is busy and the task
// queue is at capacity.
var ErrPoolFull = errors.New("workerpool: pool is full")

// ErrPoolClosed is returned by Submit and SubmitWait after Shutdown.
var ErrPoolClosed = errors.New("workerpool: pool is closed")

// Pool runs submitted tasks on a fixed set of worker goroutines.
type Pool struct {
	tasks   chan func()
	wg      sync.WaitGroup
	once    sync.Once
	closeCh chan struct{}
}

// New starts a pool of size workers. Sizes below one are raised to one.
func New(size int) *Pool {
	if size < 1 {
		size = 1
	}

	p := &Pool{
		// One queued task per worker keeps SubmitWait loops moving while
		// holding the backlog small.
		tasks:   make(chan func(), size),
		closeCh: make(chan struct{}),
	}

	for i := 0; i < size; i++ {
		p.wg.Add(1)
		go p.worker()
	}

	return p
}

// Submit enqueues task without blocking. It returns ErrPoolFull when the
// queue is at capacity and ErrPoolClosed after Shutdown.
func (p *Pool) Submit(task func()) error {
	select {
	case <-p.closeCh:
		return ErrPoolClosed
	default:
	}

	select {
	case p.tasks <- task:
		return nil
	default:
		return ErrPoolFull
	}
}

// SubmitWait enqueues task, blocking until a queue slot frees up. It
// returns ErrPoolClosed when the pool shuts down while waiting.
func (p *Pool) SubmitWait(task func()) error {
	select {
	case <-p.closeCh:
		return ErrPoolClosed
	case p.tasks <- task:
		return nil
	}
}

// Shutdown stops accepting tasks, runs whatever is already queued, and
// waits for the workers to exit. Safe to call more than once.
func (p *Pool) Shutdown() {
	p.once.Do(func() {
		close(p.closeCh)
		close(p.tasks)
		p.wg.Wait()
	})
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for task := range p.tasks {
		safeRun(task)
	}
}

// safeRun keeps one panicking task from killing its worker.
func safeRun(task func()) {
	defer func() {
		if v := recover(); v != nil {
			logger.Error("workerpool: task panicked", "panic", v)
		}
	}()
	task()
}
