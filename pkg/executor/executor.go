// Package executor implements a fixed-size worker pool for fire-and-forget
// jobs.
//
// The pool exists to keep blocking I/O off the polling goroutine: callers
// enqueue closures and the workers run them. There is no result plumbing
// here — a job that can fail reports through its own completion channel.
//
// Queue semantics:
//   - The queue is unbounded and FIFO, guarded by a mutex and condition
//     variable, so Execute never blocks the caller beyond lock contention
//     and jobs from a single caller are dequeued in submission order.
//   - There is no ordering guarantee between jobs picked up by different
//     workers.
//
// Shutdown drains the queue: already-submitted jobs run to completion and
// every worker is joined before Shutdown returns. No job is silently
// dropped mid-flight.
package executor

import (
	"errors"
	"runtime"
	"sync"
	"time"

	"github.com/marmos91/notefs/internal/logger"
)

// ErrShutDown is returned by Execute after Shutdown has been called.
var ErrShutDown = errors.New("executor: shut down")

// Metrics receives executor instrumentation. Implementations must be safe
// for concurrent use. A nil Metrics disables instrumentation.
type Metrics interface {
	// JobEnqueued is called under the queue lock with the new queue depth.
	JobEnqueued(queueDepth int)

	// JobCompleted is called after a job returns, with its run duration.
	JobCompleted(duration time.Duration)
}

// Pool is a fixed set of workers consuming a shared FIFO job queue.
type Pool struct {
	mu       sync.Mutex
	cond     *sync.Cond
	queue    []func()
	shutdown bool

	workers sync.WaitGroup
	metrics Metrics
}

// New spawns a pool with the given number of workers. A non-positive count
// falls back to the number of CPUs.
func New(workers int, metrics Metrics) *Pool {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	p := &Pool{metrics: metrics}
	p.cond = sync.NewCond(&p.mu)

	p.workers.Add(workers)
	for i := 0; i < workers; i++ {
		go p.workerLoop(i)
	}

	logger.Debug("executor: started %d workers", workers)
	return p
}

// Execute enqueues a job. It never blocks beyond queue contention.
//
// Returns ErrShutDown if the pool has been shut down; jobs are never
// silently dropped.
func (p *Pool) Execute(job func()) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.shutdown {
		return ErrShutDown
	}

	p.queue = append(p.queue, job)
	if p.metrics != nil {
		p.metrics.JobEnqueued(len(p.queue))
	}
	p.cond.Signal()
	return nil
}

// Shutdown closes the queue and joins all workers.
//
// Jobs still in the queue are drained and run to completion first. After
// Shutdown returns, no worker goroutine is left running. Shutdown is
// idempotent.
func (p *Pool) Shutdown() {
	p.mu.Lock()
	if p.shutdown {
		p.mu.Unlock()
		p.workers.Wait()
		return
	}
	p.shutdown = true
	p.cond.Broadcast()
	p.mu.Unlock()

	p.workers.Wait()
	logger.Debug("executor: all workers joined")
}

// workerLoop blocks on the shared queue until it is closed and drained.
func (p *Pool) workerLoop(id int) {
	defer p.workers.Done()

	for {
		p.mu.Lock()
		for len(p.queue) == 0 && !p.shutdown {
			p.cond.Wait()
		}
		if len(p.queue) == 0 {
			// Shut down and nothing left to drain.
			p.mu.Unlock()
			return
		}
		job := p.queue[0]
		p.queue = p.queue[1:]
		p.mu.Unlock()

		p.runJob(id, job)
	}
}

// runJob runs a single job, recovering from panics so a faulty job cannot
// kill the worker.
func (p *Pool) runJob(id int, job func()) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			logger.Error("executor: worker %d: job panic: %v", id, r)
		}
		if p.metrics != nil {
			p.metrics.JobCompleted(time.Since(start))
		}
	}()

	job()
}
